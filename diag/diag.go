// Package diag collects the non-fatal findings of a compilation run.
//
// Diagnostics are plain values. Producers (the graph linker, the text
// normalizer, the colloquium validator) return them; the caller decides
// whether to log them through zap or print them as CI annotations.
// Nothing in the compilation pipeline writes to an output stream directly.
package diag

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Severity grades a Diagnostic.
type Severity uint8

const (
	// Notice is informational output (e.g. the colloquium summary).
	Notice Severity = iota + 1
	// Warning flags a probable authoring mistake that did not stop the build.
	Warning
)

// String returns the annotation keyword for s.
func (s Severity) String() string {
	switch s {
	case Notice:
		return "notice"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind identifies the producer of a Diagnostic.
type Kind string

const (
	// KindMissingTag is emitted once per tag that names no known entry.
	KindMissingTag Kind = "missing-tag"
	// KindMathSyntax is emitted for inline math spans not using backtick delimiters.
	KindMathSyntax Kind = "math-syntax"
	// KindColloqGap is emitted per colloquium bucket with an inferred numbering step.
	KindColloqGap Kind = "colloq-gap"
	// KindColloqTotal carries the count of distinct colloquium numbers.
	KindColloqTotal Kind = "colloq-total"
)

// Diagnostic is one finding. Line and Col are 1-based and zero when unknown.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Entry    string   `json:"entry,omitempty"`
	Line     int      `json:"line,omitempty"`
	Col      int      `json:"col,omitempty"`
	Message  string   `json:"message"`
}

// HasPosition reports whether d points at a line/column.
func (d Diagnostic) HasPosition() bool { return d.Line > 0 }

// String renders d in a compact human form.
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	if d.HasPosition() {
		fmt.Fprintf(&sb, " %d:%d", d.Line, d.Col)
	}
	if d.Entry != "" {
		fmt.Fprintf(&sb, " [%s]", d.Entry)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)

	return sb.String()
}

// List accumulates diagnostics in production order.
type List []Diagnostic

// Add appends ds to the list.
func (l *List) Add(ds ...Diagnostic) {
	*l = append(*l, ds...)
}

// Warnf appends a Warning of the given kind.
func (l *List) Warnf(kind Kind, entry, format string, args ...any) {
	l.Add(Diagnostic{Kind: kind, Severity: Warning, Entry: entry, Message: fmt.Sprintf(format, args...)})
}

// Noticef appends a Notice of the given kind.
func (l *List) Noticef(kind Kind, format string, args ...any) {
	l.Add(Diagnostic{Kind: kind, Severity: Notice, Message: fmt.Sprintf(format, args...)})
}

// Filter returns the diagnostics of the given kind, preserving order.
func (l List) Filter(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}

	return out
}

// Warnings counts entries with Warning severity.
func (l List) Warnings() int {
	n := 0
	for _, d := range l {
		if d.Severity == Warning {
			n++
		}
	}

	return n
}

// Emit logs every diagnostic through logger, one structured record each.
// A nil logger is a no-op.
func Emit(logger *zap.Logger, l List) {
	if logger == nil {
		return
	}
	for _, d := range l {
		fields := []zap.Field{zap.String("kind", string(d.Kind))}
		if d.Entry != "" {
			fields = append(fields, zap.String("entry", d.Entry))
		}
		if d.HasPosition() {
			fields = append(fields, zap.Int("line", d.Line), zap.Int("col", d.Col))
		}
		switch d.Severity {
		case Warning:
			logger.Warn(d.Message, fields...)
		default:
			logger.Info(d.Message, fields...)
		}
	}
}

// WriteGitHub prints l as GitHub Actions workflow commands, e.g.
//
//	::warning line=3,col=7::[card_id] Looks like non-gitlab math syntax: "x"
//	::warning ::Missing tag: some_id
func WriteGitHub(w io.Writer, l List) error {
	for _, d := range l {
		var props string
		if d.HasPosition() {
			props = fmt.Sprintf("line=%d,col=%d", d.Line, d.Col)
		}
		msg := d.Message
		if d.Entry != "" {
			msg = "[" + d.Entry + "] " + msg
		}
		if _, err := fmt.Fprintf(w, "::%s %s::%s\n", d.Severity, props, escapeData(msg)); err != nil {
			return err
		}
	}

	return nil
}

// escapeData applies the workflow-command data escaping rules.
func escapeData(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return r.Replace(s)
}
