package dashboard

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// The converter configuration never changes and goldmark instances are safe
// for concurrent Convert calls, so one shared instance suffices.
var (
	markdownConv goldmark.Markdown
	markdownOnce sync.Once
)

func markdownConverter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownConv = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownConv
}

// renderMarkdown converts message markdown to HTML for the detail page.
// Raw HTML in the source is dropped by goldmark's default renderer, so
// message bodies cannot inject script. Conversion failures fall back to
// escaped preformatted text.
func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdownConverter().Convert([]byte(source), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(source) + "</pre>")
	}
	return template.HTML(buf.String())
}
