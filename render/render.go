// Package render writes compiled nodes as an HTML page or as JSON.
//
// The page is the template frame from Page with one block per node:
// authored cards between Before and AfterCards (placeholders are skipped,
// links to them are marked [WIP]), questions between AfterCards and After.
// Markdown conversion is delegated to a Markdown implementation.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/katalvlaran/cardbook/compile"
)

// Labels are the fixed words printed around card content.
type Labels struct {
	Notes  string // external link text
	Proof  string // <summary> of the proof block
	Forget string // question dismiss control
}

// DefaultLabels returns the English labels.
func DefaultLabels() Labels {
	return Labels{Notes: "Notes", Proof: "Proof", Forget: "Forget"}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMarkdown replaces the Markdown converter.
func WithMarkdown(md Markdown) Option {
	return func(r *Renderer) {
		if md != nil {
			r.md = md
		}
	}
}

// WithPage sets the template frame.
func WithPage(p Page) Option {
	return func(r *Renderer) { r.page = p }
}

// WithLabels overrides the fixed words.
func WithLabels(l Labels) Option {
	return func(r *Renderer) { r.labels = l }
}

// WithLogger sets the logger; the default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer turns compiled nodes into HTML.
type Renderer struct {
	md     Markdown
	page   Page
	labels Labels
	logger *zap.Logger
}

// New creates a Renderer with Goldmark, DefaultPage and DefaultLabels.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		md:     NewGoldmark(),
		page:   DefaultPage(),
		labels: DefaultLabels(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

type arrowRef struct {
	Arrow string
	Ref   compile.Ref
}

var blockTmpl = template.Must(template.New("block").Funcs(template.FuncMap{
	"arrow": func(a string, r compile.Ref) arrowRef { return arrowRef{Arrow: a, Ref: r} },
}).Parse(
	`<div class="entry">
<h1 id="{{.ID}}"><a class="{{.Class}}" href="#{{.ID}}">#</a>{{.Title}}{{if .Link}} <small>(<a target="_blank" href="{{.Link}}">{{.Labels.Notes}}</a>)</small>{{end}}</h1>
{{.Body}}
{{- if .Question}}
<a href="#" onclick="forget('{{.ID}}')" class="forget">{{.Labels.Forget}}</a>
{{- end}}
{{- if .Proof}}
<details>
<summary>{{.Labels.Proof}}</summary>
{{.Proof}}
</details>
{{- end}}
<hr/>
{{- range .References}}
{{template "ref" (arrow "←" .)}}
{{- end}}
{{- range .ReferencedBy}}
{{template "ref" (arrow "→" .)}}
{{- end}}
</div>
{{define "ref"}}{{if .Ref.Placeholder}}{{.Arrow}} {{.Ref.Title}} <code>[WIP]</code><br/>{{else}}<a class="more" href="#{{.Ref.ID}}">{{.Arrow}} {{.Ref.Title}}</a><br/>{{end}}{{end}}`,
))

// block is the data of one rendered node.
type block struct {
	ID, Title, Link, Class string
	Question               bool
	Body, Proof            template.HTML
	References             []compile.Ref
	ReferencedBy           []compile.Ref
	Labels                 Labels
}

// WriteHTML writes the full page for nodes to w.
func (r *Renderer) WriteHTML(w io.Writer, nodes []compile.Node) error {
	var cards, questions []compile.Node
	for _, n := range nodes {
		switch {
		case n.IsQuestion():
			questions = append(questions, n)
		case n.IsPlaceholder:
			r.logger.Debug("skipping placeholder", zap.String("id", n.ID))
		default:
			cards = append(cards, n)
		}
	}

	if _, err := io.WriteString(w, r.page.Before); err != nil {
		return err
	}
	if err := r.writeBlocks(w, cards); err != nil {
		return err
	}
	if _, err := io.WriteString(w, r.page.AfterCards); err != nil {
		return err
	}
	if err := r.writeBlocks(w, questions); err != nil {
		return err
	}
	_, err := io.WriteString(w, r.page.After)

	return err
}

func (r *Renderer) writeBlocks(w io.Writer, nodes []compile.Node) error {
	for _, n := range nodes {
		if err := r.WriteBlock(w, n); err != nil {
			return err
		}
	}

	return nil
}

// WriteBlock writes the <div class="entry"> block of one node.
func (r *Renderer) WriteBlock(w io.Writer, n compile.Node) error {
	b := block{
		ID:           n.ID,
		Title:        n.Title,
		Link:         n.ExternalLink,
		Class:        classes(n),
		Question:     n.IsQuestion(),
		References:   n.References,
		ReferencedBy: n.ReferencedBy,
		Labels:       r.labels,
	}
	var err error
	if b.Body, err = r.md.Convert(n.ID, n.BodyText); err != nil {
		return err
	}
	if n.SecondaryText != "" {
		if b.Proof, err = r.md.Convert(n.ID, n.SecondaryText); err != nil {
			return err
		}
	}
	if err = blockTmpl.Execute(w, b); err != nil {
		return fmt.Errorf("render: block %s: %w", n.ID, err)
	}

	return nil
}

func classes(n compile.Node) string {
	cs := []string{"tag", "more"}
	if n.Colloq {
		cs = append(cs, "colloq")
	}
	if n.IsQuestion() {
		cs = append(cs, "question")
	}

	return strings.Join(cs, " ")
}

// WriteJSON writes nodes as an indented JSON array.
func WriteJSON(w io.Writer, nodes []compile.Node) error {
	if nodes == nil {
		nodes = []compile.Node{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nodes); err != nil {
		return fmt.Errorf("render: json: %w", err)
	}

	return nil
}
