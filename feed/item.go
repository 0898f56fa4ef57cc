package feed

import "time"

// Item is one feed entry. ID is the feed-provided GUID, falling back to the
// entry link when the feed omits GUIDs.
type Item struct {
	ID        string
	Source    string
	Title     string
	Summary   string
	Link      string
	Published time.Time
}
