// Package compile runs the card pipeline on a loaded document:
// link tags into edges, linearize, bucket questions, validate colloquium
// numbering, and normalize text into render-ready nodes.
//
// Compile is the only place where the stages meet; every stage below it
// is a pure function of its inputs. Non-fatal findings are collected in
// Result.Diagnostics; a cycle aborts the run and no Result is produced.
package compile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/cardbook/colloq"
	"github.com/katalvlaran/cardbook/core"
	"github.com/katalvlaran/cardbook/dfs"
	"github.com/katalvlaran/cardbook/diag"
	"github.com/katalvlaran/cardbook/source"
	"github.com/katalvlaran/cardbook/textnorm"
)

var (
	// ErrNilDocument is returned when Compile receives no document or no store.
	ErrNilDocument = errors.New("compile: nil document")

	// ErrMissingTags is returned in strict mode when any tag is unresolved.
	ErrMissingTags = errors.New("compile: unresolved tags")
)

// Ref is a link from one node to another as the renderer needs it.
type Ref struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Placeholder bool   `json:"isPlaceholder"`
}

// Node is one render-ready block.
type Node struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Title         string `json:"title"`
	BodyText      string `json:"bodyText"`
	SecondaryText string `json:"secondaryText,omitempty"`
	ExternalLink  string `json:"externalLink,omitempty"`
	IsPlaceholder bool   `json:"isPlaceholder"`
	// Colloq marks cards that belong to at least one colloquium question.
	Colloq       bool  `json:"colloq,omitempty"`
	References   []Ref `json:"references"`
	ReferencedBy []Ref `json:"referencedBy"`
}

// IsQuestion reports whether n was synthesized from the question table.
func (n Node) IsQuestion() bool { return n.Kind == core.KindQuestion.String() }

// Result is the outcome of a successful Compile.
type Result struct {
	// Store is the linked collection.
	Store *core.Store
	// Order is the linearized entry sequence (placeholders included).
	Order []*core.Entry
	// Questions are in table order.
	Questions []*core.Question
	// Nodes are Order followed by Questions, text normalized.
	Nodes []Node
	// Missing lists unresolved tags in first-seen order.
	Missing []core.MissingTag
	// Diagnostics collects every non-fatal finding of the run.
	Diagnostics diag.List
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger; the default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrict makes unresolved tags fatal.
func WithStrict(strict bool) Option {
	return func(c *Compiler) { c.strict = strict }
}

// Compiler runs the pipeline. It is stateless between runs.
type Compiler struct {
	logger *zap.Logger
	strict bool
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile links and orders doc and builds the render model.
//
// Implementation:
//   - Stage 1: Link tags; unresolved tags become warnings.
//   - Stage 2: Topologically sort (fatal on cycle, honours ctx).
//   - Stage 3: Bucket questions and check colloquium numbering.
//   - Stage 4: Normalize text and emit nodes in output order.
//
// In strict mode a run with unresolved tags still returns its Result
// alongside an error wrapping ErrMissingTags.
func (c *Compiler) Compile(ctx context.Context, doc *source.Document) (*Result, error) {
	if doc == nil || doc.Store == nil {
		return nil, ErrNilDocument
	}
	res := &Result{Store: doc.Store}

	// 1) Link
	missing, err := doc.Store.Link()
	if err != nil {
		return nil, fmt.Errorf("compile: link: %w", err)
	}
	res.Missing = missing
	for _, m := range missing {
		res.Diagnostics.Warnf(diag.KindMissingTag, m.DeclaredBy[0], "Missing tag: %s", m.Tag)
	}

	// 2) Linearize
	order, err := dfs.TopologicalSort(doc.Store, dfs.WithCancelContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	res.Order = order

	// 3) Questions and numbering
	res.Questions = colloq.Questions(doc.Questions, doc.Store)

	// 4) Render model
	res.Nodes = make([]Node, 0, len(order)+len(res.Questions))
	for _, e := range order {
		res.Nodes = append(res.Nodes, res.node(e))
	}
	for _, q := range res.Questions {
		res.Nodes = append(res.Nodes, res.node(q))
	}
	res.Diagnostics.Add(colloq.Gaps(colloq.Numbers(doc.Store)).Diagnostics()...)

	c.logger.Info(fmt.Sprintf("Loaded %d cards and %d questions.", doc.Store.Len(), len(res.Questions)),
		zap.Int("cards", doc.Store.Len()),
		zap.Int("questions", len(res.Questions)),
		zap.Int("missing_tags", len(missing)),
		zap.Int("warnings", res.Diagnostics.Warnings()))

	if c.strict && len(missing) > 0 {
		return res, fmt.Errorf("%w: %d tag(s), first %q", ErrMissingTags, len(missing), missing[0].Tag)
	}

	return res, nil
}

// node converts n, normalizing its text and recording math findings.
func (r *Result) node(n core.Node) Node {
	out := Node{
		ID:            n.NodeID(),
		Kind:          n.Kind().String(),
		Title:         n.Label(),
		ExternalLink:  n.Link(),
		IsPlaceholder: n.IsPlaceholder(),
		References:    refs(n.Refs()),
		ReferencedBy:  refs(n.Backrefs()),
	}
	if e, ok := n.(*core.Entry); ok {
		out.Colloq = len(e.Colloq) > 0
	}
	if !out.IsPlaceholder {
		out.BodyText = r.clean(out.ID, n.Body())
		out.SecondaryText = r.clean(out.ID, n.Secondary())
	}

	return out
}

func (r *Result) clean(id, s string) string {
	if s == "" {
		return ""
	}
	text, ds := textnorm.Clean(id, s)
	r.Diagnostics.Add(ds...)

	return text
}

func refs(es []*core.Entry) []Ref {
	out := make([]Ref, len(es))
	for i, e := range es {
		out[i] = Ref{ID: e.ID, Title: e.Title, Placeholder: e.Placeholder}
	}

	return out
}
