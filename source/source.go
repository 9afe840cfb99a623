// Package source reads a card collection from YAML.
//
// The document is one mapping. Every key not starting with the metadata
// prefix ("_" by default) is a card ID whose value is a record:
//
//	group:
//	  title: Group            # required
//	  text: |                 # optional; absent or null ⇒ placeholder
//	    A set with an operation ...
//	  proof: ...              # optional
//	  source: https://...     # optional link to notes
//	  tags: [set, operation]  # optional, ordered
//	  colloq: [1.05, 2.1]     # optional colloquium numbers
//
// The metadata key "_colloq" holds the question table
// {section: {subindex: prompt}}. Other metadata keys are ignored.
//
// Keys are read in document order, which becomes the Store's collection
// order. A repeated card ID fails the load with ErrDuplicateID.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/cardbook/colloq"
	"github.com/katalvlaran/cardbook/core"
)

// Defaults for the metadata conventions.
const (
	DefaultMetaPrefix   = "_"
	DefaultQuestionsKey = "_colloq"
)

var (
	// ErrNotMapping indicates the document root (or the question table) is not a YAML mapping.
	ErrNotMapping = errors.New("source: expected a mapping")

	// ErrDuplicateID indicates a card ID appears twice in the document.
	ErrDuplicateID = errors.New("source: duplicate card ID")

	// ErrInvalidRecord indicates a card record failed validation.
	ErrInvalidRecord = errors.New("source: invalid card record")

	// ErrQuestionTable indicates a malformed question table.
	ErrQuestionTable = errors.New("source: invalid question table")
)

// RecordError locates a problem with one card.
type RecordError struct {
	ID   string
	Line int
	Err  error
}

// Error implements error.
func (e *RecordError) Error() string {
	return fmt.Sprintf("source: line %d: card %q: %v", e.Line, e.ID, e.Err)
}

// Unwrap exposes the cause.
func (e *RecordError) Unwrap() error { return e.Err }

// Record is the YAML shape of one card.
type Record struct {
	Title  string    `yaml:"title" validate:"required"`
	Text   *string   `yaml:"text"`
	Proof  string    `yaml:"proof"`
	Source string    `yaml:"source" validate:"omitempty,url"`
	Tags   []string  `yaml:"tags" validate:"dive,required"`
	Colloq []float64 `yaml:"colloq" validate:"dive,gte=0"`
}

// Entry converts r into a core.Entry with the given ID.
func (r Record) Entry(id string) *core.Entry {
	e := core.NewEntry(id, r.Title)
	if r.Text != nil {
		e.WithText(*r.Text)
	}
	e.Proof = r.Proof
	e.Source = r.Source
	e.Tags = append([]string(nil), r.Tags...)
	e.Colloq = append([]float64(nil), r.Colloq...)

	return e
}

// Document is a loaded collection: unlinked entries plus the question table.
type Document struct {
	Store     *core.Store
	Questions colloq.Table
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger; the default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithMetaPrefix changes the prefix that marks metadata keys.
func WithMetaPrefix(p string) Option {
	return func(ld *Loader) { ld.metaPrefix = p }
}

// WithQuestionsKey changes the metadata key holding the question table.
func WithQuestionsKey(k string) Option {
	return func(ld *Loader) { ld.questionsKey = k }
}

// Loader parses YAML card collections.
type Loader struct {
	logger       *zap.Logger
	validate     *validator.Validate
	metaPrefix   string
	questionsKey string
}

// NewLoader creates a Loader with defaults overridden by opts.
func NewLoader(opts ...Option) *Loader {
	ld := &Loader{
		logger:       zap.NewNop(),
		validate:     validator.New(),
		metaPrefix:   DefaultMetaPrefix,
		questionsKey: DefaultQuestionsKey,
	}
	for _, opt := range opts {
		opt(ld)
	}

	return ld
}

// LoadFile reads and parses the file at path.
func (ld *Loader) LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}

	return ld.Load(bytes.NewReader(data))
}

// Load parses a YAML collection from r.
//
// Implementation:
//   - Stage 1: Decode into a yaml.Node tree (keeps key order and line numbers).
//   - Stage 2: Walk root key/value pairs; metadata keys are routed to the
//     question table or skipped, card keys are decoded into Record.
//   - Stage 3: Validate each record and add it to a fresh Store.
func (ld *Loader) Load(r io.Reader) (*Document, error) {
	// 1) Parse
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{Store: core.NewStore()}, nil
		}
		return nil, fmt.Errorf("source: parse: %w", err)
	}
	body := &root
	if body.Kind == yaml.DocumentNode && len(body.Content) > 0 {
		body = body.Content[0]
	}
	if body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w at line %d", ErrNotMapping, body.Line)
	}

	// 2) Walk pairs in document order
	doc := &Document{Store: core.NewStore(core.WithCapacity(len(body.Content) / 2))}
	seen := make(map[string]int, len(body.Content)/2) // ID → first line
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		id := key.Value

		if strings.HasPrefix(id, ld.metaPrefix) && ld.metaPrefix != "" {
			if id == ld.questionsKey {
				table, err := parseTable(val)
				if err != nil {
					return nil, err
				}
				doc.Questions = table
			} else {
				ld.logger.Debug("skipping metadata key", zap.String("key", id), zap.Int("line", key.Line))
			}
			continue
		}

		if first, dup := seen[id]; dup {
			return nil, &RecordError{ID: id, Line: key.Line,
				Err: fmt.Errorf("%w (first declared on line %d)", ErrDuplicateID, first)}
		}
		seen[id] = key.Line

		// 3) Decode, validate, store
		e, err := ld.record(id, key.Line, val)
		if err != nil {
			return nil, err
		}
		if err = doc.Store.Add(e); err != nil {
			return nil, &RecordError{ID: id, Line: key.Line, Err: err}
		}
	}

	ld.logger.Debug("loaded collection",
		zap.Int("cards", doc.Store.Len()),
		zap.Int("questions", doc.Questions.Len()))

	return doc, nil
}

// record decodes and validates one card value.
func (ld *Loader) record(id string, line int, val *yaml.Node) (*core.Entry, error) {
	if val.Kind != yaml.MappingNode {
		return nil, &RecordError{ID: id, Line: line, Err: fmt.Errorf("%w: %w", ErrInvalidRecord, ErrNotMapping)}
	}
	var rec Record
	if err := val.Decode(&rec); err != nil {
		return nil, &RecordError{ID: id, Line: line, Err: fmt.Errorf("%w: %w", ErrInvalidRecord, err)}
	}
	if err := ld.validate.Struct(rec); err != nil {
		return nil, &RecordError{ID: id, Line: line, Err: fmt.Errorf("%w: %s", ErrInvalidRecord, describe(err))}
	}

	return rec.Entry(id), nil
}

// describe flattens validator errors into "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}

	return strings.Join(parts, "; ")
}

// parseTable reads {section: {subindex: prompt}} keeping authored order.
func parseTable(n *yaml.Node) (colloq.Table, error) {
	var t colloq.Table
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return t, nil
	}
	if n.Kind != yaml.MappingNode {
		return t, fmt.Errorf("%w: line %d: %w", ErrQuestionTable, n.Line, ErrNotMapping)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		secKey, secVal := n.Content[i], n.Content[i+1]
		num, err := strconv.Atoi(secKey.Value)
		if err != nil {
			return t, fmt.Errorf("%w: line %d: section %q is not an integer", ErrQuestionTable, secKey.Line, secKey.Value)
		}
		if secVal.Kind != yaml.MappingNode {
			return t, fmt.Errorf("%w: line %d: section %d: %w", ErrQuestionTable, secVal.Line, num, ErrNotMapping)
		}
		sec := colloq.Section{Number: num}
		for j := 0; j+1 < len(secVal.Content); j += 2 {
			itKey, itVal := secVal.Content[j], secVal.Content[j+1]
			idx, err := strconv.Atoi(itKey.Value)
			if err != nil {
				return t, fmt.Errorf("%w: line %d: subindex %q is not an integer", ErrQuestionTable, itKey.Line, itKey.Value)
			}
			var text string
			if err = itVal.Decode(&text); err != nil {
				return t, fmt.Errorf("%w: line %d: %w", ErrQuestionTable, itVal.Line, err)
			}
			sec.Items = append(sec.Items, colloq.Item{Index: idx, Text: text})
		}
		t.Sections = append(t.Sections, sec)
	}

	return t, nil
}
