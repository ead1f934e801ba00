package youtube

import (
	"strings"

	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"
)

// TranslationLanguage is a language YouTube can machine-translate a track into.
type TranslationLanguage struct {
	Language     string
	LanguageCode string
}

// Track is one caption track listed for a video. Fetch its segments with
// Client.FetchTrack.
type Track struct {
	VideoID              string
	Language             string
	LanguageCode         string
	IsGenerated          bool
	TranslationLanguages []TranslationLanguage

	url string
}

func (t *Track) IsTranslatable() bool {
	return len(t.TranslationLanguages) > 0
}

func (t *Track) Model() models.Track {
	return models.Track{
		Language:       t.Language,
		LanguageCode:   t.LanguageCode,
		IsGenerated:    t.IsGenerated,
		IsTranslatable: t.IsTranslatable(),
	}
}

// TranscriptList holds the tracks of one video. Manually created tracks are
// listed before generated ones; within each group YouTube's order is kept.
type TranscriptList struct {
	VideoID   string
	manual    []*Track
	generated []*Track
}

func newTranscriptList(videoID string, r *captionsRenderer) *TranscriptList {
	translations := make([]TranslationLanguage, 0, len(r.TranslationLanguages))
	for _, tl := range r.TranslationLanguages {
		translations = append(translations, TranslationLanguage{
			Language:     tl.LanguageName.String(),
			LanguageCode: tl.LanguageCode,
		})
	}

	list := &TranscriptList{VideoID: videoID}
	for _, ct := range r.CaptionTracks {
		track := &Track{
			VideoID:      videoID,
			Language:     ct.Name.String(),
			LanguageCode: ct.LanguageCode,
			IsGenerated:  ct.Kind == "asr",
			url:          strings.Replace(ct.BaseURL, "&fmt=srv3", "", 1),
		}
		if ct.IsTranslatable {
			track.TranslationLanguages = translations
		}

		if track.IsGenerated {
			list.generated = upsert(list.generated, track)
		} else {
			list.manual = upsert(list.manual, track)
		}
	}
	return list
}

// upsert replaces a track with the same language code in place, keeping the
// position of the first occurrence.
func upsert(tracks []*Track, t *Track) []*Track {
	for i, existing := range tracks {
		if existing.LanguageCode == t.LanguageCode {
			tracks[i] = t
			return tracks
		}
	}
	return append(tracks, t)
}

// All returns every track, manually created first.
func (l *TranscriptList) All() []*Track {
	all := make([]*Track, 0, len(l.manual)+len(l.generated))
	all = append(all, l.manual...)
	return append(all, l.generated...)
}

// Find returns the first track matching the language codes in priority order,
// preferring manually created tracks for each code.
func (l *TranscriptList) Find(languageCodes ...string) (*Track, error) {
	for _, code := range languageCodes {
		for _, group := range [][]*Track{l.manual, l.generated} {
			for _, t := range group {
				if t.LanguageCode == code {
					return t, nil
				}
			}
		}
	}
	return nil, errors.Wrapf(ErrNoTranscriptFound, "video %s: requested %v, available %v",
		l.VideoID, languageCodes, l.codes())
}

func (l *TranscriptList) codes() []string {
	all := l.All()
	codes := make([]string, len(all))
	for i, t := range all {
		codes[i] = t.LanguageCode
	}
	return codes
}
