package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pavelpuchok/releasecourier/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>GitLab Security Releases</title>
    <link>https://about.gitlab.com/</link>
    <item>
      <title>GitLab Security Release: 17.9.1</title>
      <link>https://about.gitlab.com/releases/2025/02/25/patch-release-gitlab-17-9-1-released/</link>
      <guid>sec-17-9-1</guid>
      <pubDate>Tue, 25 Feb 2025 00:00:00 +0000</pubDate>
      <description>&lt;p&gt;Patch release&lt;/p&gt;</description>
    </item>
    <item>
      <title>GitLab Security Release: 17.8.5</title>
      <link>https://about.gitlab.com/releases/2025/01/20/patch-release-gitlab-17-8-5-released/</link>
      <pubDate>Mon, 20 Jan 2025 00:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	rss := feed.NewRSS(srv.URL)
	items, err := rss.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "sec-17-9-1", first.ID)
	assert.Equal(t, "GitLab Security Release: 17.9.1", first.Title)
	assert.Equal(t, "<p>Patch release</p>", first.Summary)
	assert.Equal(t, time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC), first.Published.UTC())

	// no guid means the link is the identifier
	second := items[1]
	assert.Equal(t, second.Link, second.ID)
}

func TestRSSFetchBadDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	rss := feed.NewRSS(srv.URL)
	_, err := rss.Fetch(context.Background())
	assert.Error(t, err)
}

func TestRSSFetchServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	rss := feed.NewRSS(srv.URL)
	_, err := rss.Fetch(context.Background())
	assert.Error(t, err)
}
