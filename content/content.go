package content

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability/v2"
)

const defaultFetchTimeout = 30 * time.Second

// Extractor fetches an entry's page and reduces it to readable text for the
// mail body, for feeds whose summaries are too thin to be useful.
type Extractor struct {
	client *http.Client
}

func NewExtractor() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: defaultFetchTimeout},
	}
}

// Extract returns an HTML fragment with the readable text of the page at
// link. Failures are the caller's cue to fall back to the feed summary.
func (e *Extractor) Extract(link string) (string, error) {
	u, err := url.ParseRequestURI(link)
	if err != nil {
		return "", fmt.Errorf("failed to parse link %s. %w", link, err)
	}

	req, err := http.NewRequest(http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s. %w", link, err)
	}
	req.Header.Set("User-Agent", "releasecourier/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get entry page %s. %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s for entry page %s", resp.Status, link)
	}

	p := readability.NewParser()
	article, err := p.Parse(resp.Body, u)
	if err != nil {
		return "", fmt.Errorf("readability failed to parse article %s. %w", link, err)
	}

	b := &strings.Builder{}
	err = article.RenderText(b)
	if err != nil {
		return "", fmt.Errorf("readability failed to render article text %s. %w", link, err)
	}

	return htmlFragment(b.String()), nil
}

// htmlFragment escapes plain article text and splits it into paragraphs.
func htmlFragment(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, "<p>"+html.EscapeString(p)+"</p>")
	}
	return strings.Join(out, "\n")
}
