package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/nijaru/yt-transcript/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndReadLookups(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordLookup(ctx, models.Lookup{
		VideoID:           "dQw4w9WgXcQ",
		RequestedLanguage: "fr",
		LanguageCode:      "en",
		Outcome:           "success",
		SegmentCount:      42,
		CreatedAt:         created,
	}))
	require.NoError(t, j.RecordLookup(ctx, models.Lookup{
		VideoID:           "abcdefghijk",
		RequestedLanguage: "en",
		Outcome:           "transcripts_disabled",
	}))

	lookups, err := j.RecentLookups(ctx, 0)
	require.NoError(t, err)
	require.Len(t, lookups, 2)

	assert.Equal(t, "abcdefghijk", lookups[0].VideoID, "newest first")
	assert.Equal(t, "transcripts_disabled", lookups[0].Outcome)
	assert.Empty(t, lookups[0].LanguageCode)
	assert.False(t, lookups[0].CreatedAt.IsZero())

	assert.Equal(t, "dQw4w9WgXcQ", lookups[1].VideoID)
	assert.Equal(t, "fr", lookups[1].RequestedLanguage)
	assert.Equal(t, "en", lookups[1].LanguageCode)
	assert.Equal(t, 42, lookups[1].SegmentCount)
	assert.True(t, created.Equal(lookups[1].CreatedAt))
	assert.Greater(t, lookups[0].ID, lookups[1].ID)
}

func TestRecentLookupsLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < MaxLookupLimit+5; i++ {
		require.NoError(t, j.RecordLookup(ctx, models.Lookup{
			VideoID:           fmt.Sprintf("video%06d", i),
			RequestedLanguage: "en",
			Outcome:           "success",
		}))
	}

	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: DefaultLookupLimit},
		{limit: -3, want: DefaultLookupLimit},
		{limit: 5, want: 5},
		{limit: 1000, want: MaxLookupLimit},
	}
	for _, tt := range tests {
		lookups, err := j.RecentLookups(ctx, tt.limit)
		require.NoError(t, err)
		assert.Len(t, lookups, tt.want, "limit %d", tt.limit)
	}
}

func TestRecentLookupsEmpty(t *testing.T) {
	j := openTestJournal(t)

	lookups, err := j.RecentLookups(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, lookups)
	assert.Empty(t, lookups)
}

func TestOpenError(t *testing.T) {
	_, err := Open("/dev/null/journal.db")
	assert.Error(t, err)
}
