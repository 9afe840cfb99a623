package compile_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/cardbook/compile"
	"github.com/katalvlaran/cardbook/dfs"
	"github.com/katalvlaran/cardbook/diag"
	"github.com/katalvlaran/cardbook/source"
)

const cards = `
_colloq:
  1:
    5: Define a group.
    6: Nobody answers this.
vector:
  title: Vector space
  text: A module over a field $x²$.
  tags: [field, group]
field:
  title: Field
  tags: [group]
  colloq: [1.06]
group:
  title: Group
  text: Operation $` + "`a·b`" + `$.
  proof: By x₁₂.
  tags: [set]
  colloq: [1.05]
set:
  title: Set
  text: Objects.
  source: https://example.org/set
`

func load(t *testing.T, src string) *source.Document {
	t.Helper()
	doc, err := source.NewLoader().Load(strings.NewReader(src))
	require.NoError(t, err)

	return doc
}

func ids(nodes []compile.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}

	return out
}

// TestCompile_Pipeline checks order, node fields and diagnostics together.
func TestCompile_Pipeline(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	res, err := compile.New(compile.WithLogger(zap.New(core))).Compile(context.Background(), load(t, cards))
	require.NoError(t, err)

	// Dependencies first, questions last.
	assert.Equal(t, []string{"set", "group", "field", "vector", "question_105", "question_106"}, ids(res.Nodes))
	assert.Len(t, res.Order, 4)
	require.Len(t, res.Questions, 2)

	set := res.Nodes[0]
	assert.Equal(t, "https://example.org/set", set.ExternalLink)
	assert.Equal(t, "card", set.Kind)

	group := res.Nodes[1]
	assert.Equal(t, "Group", group.Title)
	assert.Equal(t, "By x_{12}.", group.SecondaryText)
	assert.True(t, group.Colloq)
	assert.Equal(t, []compile.Ref{{ID: "set", Title: "Set"}}, group.References)
	assert.Equal(t, []compile.Ref{{ID: "vector", Title: "Vector space"}, {ID: "field", Title: "Field", Placeholder: true}}, group.ReferencedBy)

	field := res.Nodes[2]
	assert.True(t, field.IsPlaceholder)
	assert.Empty(t, field.BodyText)

	vector := res.Nodes[3]
	assert.Equal(t, "A module over a field $x^{2}$.", vector.BodyText)
	assert.False(t, vector.Colloq)

	q := res.Nodes[4]
	assert.True(t, q.IsQuestion())
	assert.Equal(t, "question", q.Kind)
	assert.Equal(t, "Q1.05", q.Title)
	assert.Equal(t, "Define a group.", q.BodyText)
	assert.Equal(t, []compile.Ref{{ID: "group", Title: "Group"}}, q.References)
	assert.Empty(t, q.ReferencedBy)
	assert.Equal(t, []compile.Ref{{ID: "field", Title: "Field", Placeholder: true}}, res.Nodes[5].References)

	// Diagnostics: one math warning and the colloq report.
	assert.Empty(t, res.Missing)
	math := res.Diagnostics.Filter(diag.KindMathSyntax)
	require.Len(t, math, 1)
	assert.Equal(t, "vector", math[0].Entry)
	assert.Equal(t, 1, math[0].Line)
	assert.Equal(t, 23, math[0].Col)
	assert.Len(t, res.Diagnostics.Filter(diag.KindColloqGap), 1)
	assert.Equal(t, "Colloq total: 2", res.Diagnostics.Filter(diag.KindColloqTotal)[0].Message)

	require.Equal(t, 1, logs.FilterMessage("Loaded 4 cards and 2 questions.").Len())
}

// TestCompile_MissingTags warns by default and fails in strict mode.
func TestCompile_MissingTags(t *testing.T) {
	src := "a:\n  title: A\n  text: x\n  tags: [ghost, b, ghost]\nb:\n  title: B\n  text: y\n  tags: [ghost]\n"

	res, err := compile.New().Compile(context.Background(), load(t, src))
	require.NoError(t, err)
	require.Len(t, res.Missing, 1)
	assert.Equal(t, []string{"a", "b"}, res.Missing[0].DeclaredBy)
	missing := res.Diagnostics.Filter(diag.KindMissingTag)
	require.Len(t, missing, 1)
	assert.Equal(t, "Missing tag: ghost", missing[0].Message)
	assert.Equal(t, diag.Warning, missing[0].Severity)

	res, err = compile.New(compile.WithStrict(true)).Compile(context.Background(), load(t, src))
	require.ErrorIs(t, err, compile.ErrMissingTags)
	require.NotNil(t, res, "strict mode still returns the result")
	assert.Equal(t, []string{"b", "a"}, ids(res.Nodes))
}

// TestCompile_Cycle is fatal and returns no result.
func TestCompile_Cycle(t *testing.T) {
	src := "a:\n  title: A\n  tags: [b]\nb:\n  title: B\n  tags: [a]\n"
	res, err := compile.New().Compile(context.Background(), load(t, src))
	assert.Nil(t, res)
	require.ErrorIs(t, err, dfs.ErrCycleDetected)

	var ce *dfs.CycleError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "a", ce.ID)
	assert.Equal(t, []string{"a", "b", "a"}, ce.Path)
}

// TestCompile_Cancelled honours the context.
func TestCompile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := compile.New().Compile(ctx, load(t, cards))
	assert.ErrorIs(t, err, context.Canceled)
}

// TestCompile_Errors covers nil input and a reused store.
func TestCompile_Errors(t *testing.T) {
	_, err := compile.New().Compile(context.Background(), nil)
	assert.ErrorIs(t, err, compile.ErrNilDocument)

	doc := load(t, cards)
	_, err = compile.New().Compile(context.Background(), doc)
	require.NoError(t, err)
	_, err = compile.New().Compile(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile: link")
}

// TestCompile_Empty produces no nodes and only the colloq total.
func TestCompile_Empty(t *testing.T) {
	res, err := compile.New().Compile(context.Background(), load(t, ""))
	require.NoError(t, err)
	assert.Empty(t, res.Nodes)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.KindColloqTotal, res.Diagnostics[0].Kind)
}
