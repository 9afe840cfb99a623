package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown converts the body text of one node into HTML.
// id names the node for error messages.
type Markdown interface {
	Convert(id, text string) (template.HTML, error)
}

// MarkdownFunc adapts a function to Markdown.
type MarkdownFunc func(id, text string) (template.HTML, error)

// Convert calls f.
func (f MarkdownFunc) Convert(id, text string) (template.HTML, error) { return f(id, text) }

// Goldmark is the default Markdown: CommonMark plus GitHub tables,
// strikethrough and autolinks. Raw HTML in cards passes through.
// Inline math written as $`...`$ survives as a code span between dollar
// signs, which client-side math renderers pick up.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark creates the default converter.
func NewGoldmark() *Goldmark {
	return &Goldmark{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
}

// Convert implements Markdown.
func (g *Goldmark) Convert(id, text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render: markdown %s: %w", id, err)
	}

	return template.HTML(buf.String()), nil
}

// PlainText escapes text and wraps each blank-line separated block in <p>.
// Useful when the markup must not be interpreted at all.
var PlainText = MarkdownFunc(func(_, text string) (template.HTML, error) {
	var sb strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(para))
		sb.WriteString("</p>\n")
	}

	return template.HTML(sb.String()), nil
})
