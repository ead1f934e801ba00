package models

import (
	"strings"
	"time"
)

// Track describes one caption track offered for a video.
type Track struct {
	Language       string `json:"language"`
	LanguageCode   string `json:"language_code"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`
}

// Segment is one timed caption unit. Start and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is a fetched track as handed back by a provider.
type Transcript struct {
	VideoID  string
	Track    Track
	Segments []Segment
}

// TranscriptResult is the response body of a successful transcript lookup.
type TranscriptResult struct {
	VideoID        string    `json:"video_id"`
	Language       string    `json:"language"`
	LanguageCode   string    `json:"language_code"`
	IsGenerated    bool      `json:"is_generated"`
	IsTranslatable bool      `json:"is_translatable"`
	FullText       string    `json:"full_text"`
	Snippets       []Segment `json:"snippets"`
	TotalDuration  float64   `json:"total_duration"`
}

// NewTranscriptResult shapes a fetched transcript into a response.
func NewTranscriptResult(videoID string, t *Transcript) *TranscriptResult {
	snippets := make([]Segment, len(t.Segments))
	copy(snippets, t.Segments)

	return &TranscriptResult{
		VideoID:        videoID,
		Language:       t.Track.Language,
		LanguageCode:   t.Track.LanguageCode,
		IsGenerated:    t.Track.IsGenerated,
		IsTranslatable: t.Track.IsTranslatable,
		FullText:       FullText(snippets),
		Snippets:       snippets,
		TotalDuration:  TotalDuration(snippets),
	}
}

// FullText joins segment texts with a single space, in order.
func FullText(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

// TotalDuration is the end time of the last segment, 0 for none. Segments
// are expected in provider order; overlapping earlier segments do not count.
func TotalDuration(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	last := segments[len(segments)-1]
	return last.Start + last.Duration
}

// LanguageList is the response body of a language listing.
type LanguageList struct {
	VideoID   string  `json:"video_id"`
	Languages []Track `json:"languages"`
}

// TranscriptRequest is the body accepted by the transcript routes.
type TranscriptRequest struct {
	VideoID      string `json:"video_id" validate:"required_without=URL"`
	URL          string `json:"url" validate:"required_without=VideoID"`
	LanguageCode string `json:"language_code"`
}

// VideoInput returns the identifier source, preferring video_id over url.
func (r TranscriptRequest) VideoInput() string {
	if r.VideoID != "" {
		return r.VideoID
	}
	return r.URL
}

// Lookup is one journal entry describing how a transcript request was served.
type Lookup struct {
	ID                int64     `json:"id"`
	VideoID           string    `json:"video_id"`
	RequestedLanguage string    `json:"requested_language"`
	LanguageCode      string    `json:"language_code,omitempty"`
	Outcome           string    `json:"outcome"`
	SegmentCount      int       `json:"segment_count"`
	CreatedAt         time.Time `json:"created_at"`
}
