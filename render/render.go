package render

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"text/template"
	"time"

	"github.com/pavelpuchok/releasecourier/feed"
)

const defaultTemplateText = `<html>
<body>
    <p><strong>New entry from {{.FeedName}}:</strong></p>
    <p><a href="{{.Link}}">{{.Title}}</a></p>
    <p>Published: {{.Published}}</p>
    <hr>
    <div>{{.Content}}</div>
    <p>Read more: <a href="{{.Link}}">{{.Link}}</a></p>
</body>
</html>
`

// Template renders an entry into an HTML mail body. Rendering is plain
// key-value substitution over a flat map; a placeholder the entry has no
// value for renders as an empty string instead of failing the entry.
type Template struct {
	tmpl *template.Template
}

func Default() *Template {
	return &Template{
		tmpl: template.Must(template.New("default").Option("missingkey=zero").Parse(defaultTemplateText)),
	}
}

func Parse(name, text string) (*Template, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template %s. %w", name, err)
	}
	return &Template{tmpl: t}, nil
}

func LoadFile(path string) (*Template, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read template file %s. %w", path, err)
	}
	return Parse(path, string(text))
}

// Render fills the template with the entry's fields. content overrides the
// entry's own summary when non-empty. Content is feed-provided HTML and is
// substituted verbatim; the scalar fields are escaped.
func (t *Template) Render(feedName string, it feed.Item, content string) (string, error) {
	if content == "" {
		content = it.Summary
	}

	data := map[string]string{
		"FeedName":  html.EscapeString(feedName),
		"Title":     html.EscapeString(it.Title),
		"Link":      html.EscapeString(it.Link),
		"Published": it.Published.Format(time.RFC1123),
		"Content":   content,
	}

	buf := &bytes.Buffer{}
	err := t.tmpl.Execute(buf, data)
	if err != nil {
		return "", fmt.Errorf("unable to render template. %w", err)
	}

	return buf.String(), nil
}
