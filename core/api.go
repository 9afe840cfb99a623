// SPDX-License-Identifier: MIT
//
// File: api.go
// Role: Node, the read-only view shared by cards and questions.
// Policy:
//   - No algorithms here; accessors only.
//   - Entry and Question are the only implementations (closed variant).

package core

import "strings"

// Kind tags the variant behind a Node.
type Kind uint8

const (
	// KindCard is an authored Entry.
	KindCard Kind = iota + 1
	// KindQuestion is a synthesized Question.
	KindQuestion
)

// String returns "card" or "question".
func (k Kind) String() string {
	switch k {
	case KindCard:
		return "card"
	case KindQuestion:
		return "question"
	default:
		return "unknown"
	}
}

// Node is the read-only accessor set shared by *Entry and *Question.
// Renderers switch on Kind() when they need variant-specific behavior.
type Node interface {
	// Kind reports the variant.
	Kind() Kind
	// NodeID is the stable anchor of the node.
	NodeID() string
	// Label is the display title.
	Label() string
	// Body is the main text (empty for placeholders).
	Body() string
	// Secondary is the optional secondary body (proofs); empty when absent.
	Secondary() string
	// Link is the optional external URL; empty when absent.
	Link() string
	// IsPlaceholder reports a node with no body of its own.
	IsPlaceholder() bool
	// Refs are the nodes this node points at.
	Refs() []*Entry
	// Backrefs are the nodes pointing at this node.
	Backrefs() []*Entry
}

var (
	_ Node = (*Entry)(nil)
	_ Node = (*Question)(nil)
)

// Kind implements Node.
func (e *Entry) Kind() Kind { return KindCard }

// NodeID implements Node.
func (e *Entry) NodeID() string { return e.ID }

// Label implements Node.
func (e *Entry) Label() string { return e.Title }

// Body implements Node.
func (e *Entry) Body() string { return e.Text }

// Secondary implements Node.
func (e *Entry) Secondary() string { return e.Proof }

// Link implements Node.
func (e *Entry) Link() string { return e.Source }

// IsPlaceholder implements Node.
func (e *Entry) IsPlaceholder() bool { return e.Placeholder }

// Refs implements Node.
func (e *Entry) Refs() []*Entry { return e.References }

// Backrefs implements Node.
func (e *Entry) Backrefs() []*Entry { return e.ReferencedBy }

// QuestionIDPrefix starts every question anchor.
const QuestionIDPrefix = "question_"

// Kind implements Node.
func (q *Question) Kind() Kind { return KindQuestion }

// NodeID implements Node: "question_" + Number without the dot ("1.05" → "question_105").
func (q *Question) NodeID() string {
	return QuestionIDPrefix + strings.ReplaceAll(q.Number, ".", "")
}

// Label implements Node: "Q" + Number.
func (q *Question) Label() string { return "Q" + q.Number }

// Body implements Node.
func (q *Question) Body() string { return q.Text }

// Secondary implements Node; questions have no secondary body.
func (q *Question) Secondary() string { return "" }

// Link implements Node; questions have no external link.
func (q *Question) Link() string { return "" }

// IsPlaceholder implements Node; a question always renders.
func (q *Question) IsPlaceholder() bool { return false }

// Refs implements Node: a question points at its tips.
func (q *Question) Refs() []*Entry { return q.Tips }

// Backrefs implements Node; nothing can tag a question.
func (q *Question) Backrefs() []*Entry { return nil }
