package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTranscriptResult(t *testing.T) {
	transcript := &Transcript{
		VideoID: "dQw4w9WgXcQ",
		Track:   Track{Language: "English", LanguageCode: "en", IsGenerated: true, IsTranslatable: true},
		Segments: []Segment{
			{Text: "a", Start: 0, Duration: 2},
			{Text: "b", Start: 2, Duration: 3},
		},
	}

	result := NewTranscriptResult("dQw4w9WgXcQ", transcript)

	assert.Equal(t, "a b", result.FullText)
	assert.Equal(t, 5.0, result.TotalDuration)
	assert.Equal(t, "en", result.LanguageCode)
	assert.True(t, result.IsGenerated)
	assert.True(t, result.IsTranslatable)
	assert.Equal(t, transcript.Segments, result.Snippets)
}

func TestTotalDuration(t *testing.T) {
	assert.Equal(t, 0.0, TotalDuration(nil))

	overlapping := []Segment{
		{Text: "long", Start: 0, Duration: 10},
		{Text: "short", Start: 2, Duration: 1},
	}
	assert.Equal(t, 3.0, TotalDuration(overlapping))
}

func TestFullTextKeepsOrderAndEmptyTexts(t *testing.T) {
	segments := []Segment{{Text: "one"}, {Text: ""}, {Text: "three"}}
	assert.Equal(t, "one  three", FullText(segments))
	assert.Equal(t, "", FullText(nil))
}

func TestTranscriptRequestVideoInput(t *testing.T) {
	assert.Equal(t, "abc", TranscriptRequest{VideoID: "abc", URL: "https://youtu.be/xyz"}.VideoInput())
	assert.Equal(t, "https://youtu.be/xyz", TranscriptRequest{URL: "https://youtu.be/xyz"}.VideoInput())
}
