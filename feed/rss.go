package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

type RSS struct {
	url    string
	parser *gofeed.Parser
}

func NewRSS(url string) *RSS {
	return &RSS{
		url:    url,
		parser: gofeed.NewParser(),
	}
}

// Fetch returns the feed's items in the order the source serves them,
// most recent first.
func (rss *RSS) Fetch(ctx context.Context) ([]Item, error) {
	f, err := rss.parser.ParseURLWithContext(rss.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch RSS feed from %s. %w", rss.url, err)
	}

	result := make([]Item, 0, len(f.Items))

	for _, it := range f.Items {
		result = append(result, Item{
			ID:        getID(it),
			Source:    rss.url,
			Title:     it.Title,
			Summary:   getSummary(it),
			Link:      it.Link,
			Published: getTime(it),
		})
	}

	return result, nil
}

func getID(it *gofeed.Item) string {
	if it.GUID != "" {
		return it.GUID
	}
	return it.Link
}

func getSummary(it *gofeed.Item) string {
	if it.Description != "" {
		return it.Description
	}
	return it.Content
}

func getTime(it *gofeed.Item) time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}

	if it.UpdatedParsed != nil {
		return *it.UpdatedParsed
	}

	return time.Now()
}
