package feed

// Since returns the items published after the item identified by lastID,
// preserving the input's most-recent-first order. Identity is compared by
// item ID, never by timestamp, since sources reorder and reuse dates.
//
// When lastID is empty or no longer present in the feed, at most maxBacklog
// of the newest items are returned so a first run (or a rotated-out marker)
// does not replay the whole feed history.
func Since(items []Item, lastID string, maxBacklog int) []Item {
	if lastID != "" {
		for i, it := range items {
			if it.ID == lastID {
				return items[:i]
			}
		}
	}

	if maxBacklog < 0 {
		maxBacklog = 0
	}
	if len(items) > maxBacklog {
		return items[:maxBacklog]
	}
	return items
}
