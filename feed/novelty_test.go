package feed_test

import (
	"testing"

	"github.com/pavelpuchok/releasecourier/feed"
	"github.com/stretchr/testify/assert"
)

func items(ids ...string) []feed.Item {
	out := make([]feed.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, feed.Item{ID: id, Title: "entry " + id})
	}
	return out
}

func TestSince(t *testing.T) {
	tests := []struct {
		name       string
		items      []feed.Item
		lastID     string
		maxBacklog int
		expected   []string
	}{
		{
			name:       "marker in the middle returns newer prefix",
			items:      items("a", "b", "c"),
			lastID:     "b",
			maxBacklog: 1,
			expected:   []string{"a"},
		},
		{
			name:       "marker on newest returns nothing",
			items:      items("a", "b", "c"),
			lastID:     "a",
			maxBacklog: 1,
			expected:   []string{},
		},
		{
			name:       "no marker returns only the newest",
			items:      items("a", "b", "c"),
			lastID:     "",
			maxBacklog: 1,
			expected:   []string{"a"},
		},
		{
			name:       "no marker with larger backlog",
			items:      items("a", "b", "c"),
			lastID:     "",
			maxBacklog: 2,
			expected:   []string{"a", "b"},
		},
		{
			name:       "marker rotated out of the feed falls back to backlog limit",
			items:      items("a", "b", "c"),
			lastID:     "z",
			maxBacklog: 1,
			expected:   []string{"a"},
		},
		{
			name:       "backlog larger than feed returns everything",
			items:      items("a", "b"),
			lastID:     "",
			maxBacklog: 10,
			expected:   []string{"a", "b"},
		},
		{
			name:       "empty feed",
			items:      nil,
			lastID:     "a",
			maxBacklog: 1,
			expected:   []string{},
		},
		{
			name:       "zero backlog suppresses first run",
			items:      items("a", "b"),
			lastID:     "",
			maxBacklog: 0,
			expected:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feed.Since(tt.items, tt.lastID, tt.maxBacklog)

			ids := make([]string, 0, len(got))
			for _, it := range got {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestSinceComparesByIDNotTime(t *testing.T) {
	// the marker entry keeps its ID even when the source rewrites its date
	feedItems := items("a", "b", "c")

	got := feed.Since(feedItems, "c", 1)

	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}
