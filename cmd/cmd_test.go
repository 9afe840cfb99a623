package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/katalvlaran/cardbook/compile"
	"github.com/katalvlaran/cardbook/dfs"
)

const cardsYAML = `
_colloq:
  1:
    5: Define a group.
set:
  title: Set
  text: Objects.
group:
  title: Group
  text: A set with an operation.
  tags: [set]
  colloq: [1.05]
`

// =============================================================================
// Helpers
// =============================================================================

// resetFlags restores every flag of c and its children to its default so
// runs do not leak state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err = rootCmd.Execute()

	return out.String(), errOut.String(), err
}

func writeCards(t *testing.T, src string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "cards.yml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	return dir, path
}

// =============================================================================
// Definitions
// =============================================================================

func TestCommands_Definition(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "check", "deps", "graph", "version"} {
		assert.True(t, names[want], "%s subcommand should exist", want)
	}

	t.Run("build flags", func(t *testing.T) {
		for _, name := range []string{"input", "output", "json", "graph", "graph-root", "template", "format", "strict", "watch"} {
			assert.NotNil(t, buildCmd.Flags().Lookup(name), name)
		}
		assert.Equal(t, "w", buildCmd.Flags().Lookup("watch").Shorthand)
	})

	t.Run("persistent flags", func(t *testing.T) {
		f := rootCmd.PersistentFlags().Lookup("config")
		require.NotNil(t, f)
		assert.Equal(t, "c", f.Shorthand)
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
	})
}

// =============================================================================
// build
// =============================================================================

func TestBuild_WritesOutputs(t *testing.T) {
	dir, path := writeCards(t, cardsYAML)
	out := filepath.Join(dir, "public")

	_, _, err := execute(t, "build", "-i", path,
		"-o", filepath.Join(out, "index.html"),
		"--json", filepath.Join(out, "nodes.json"),
		"--graph", filepath.Join(out, "graph.dot"),
		"--graph-root", "index.html")
	require.NoError(t, err)

	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Less(t, bytes.Index(html, []byte(`<h1 id="set">`)), bytes.Index(html, []byte(`<h1 id="group">`)))
	assert.Contains(t, string(html), `<h1 id="question_105">`)

	nodes, err := os.ReadFile(filepath.Join(out, "nodes.json"))
	require.NoError(t, err)
	assert.Contains(t, string(nodes), `"bodyText": "A set with an operation."`)

	graph, err := os.ReadFile(filepath.Join(out, "graph.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(graph), `href="index.html#group"`)
	assert.Contains(t, string(graph), "set -> group [id=set___group];")

	_, err = os.Stat(filepath.Join(out, "graph.json"))
	assert.NoError(t, err, "hover data next to the graph")
}

func TestBuild_StdoutAndGitHubFormat(t *testing.T) {
	_, path := writeCards(t, cardsYAML+"ring:\n  title: Ring\n  text: $x$\n  tags: [ghost]\n")

	stdout, stderr, err := execute(t, "build", "-i", path, "-o", "-", "--format", "github")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "<!DOCTYPE html>"))
	assert.Contains(t, stderr, "::warning ::[ring] Missing tag: ghost\n")
	assert.Contains(t, stderr, "::warning line=1,col=1::[ring] Looks like non-gitlab math syntax:")
	assert.Contains(t, stderr, "::notice ::Colloq total: 1\n")
}

func TestBuild_CycleWritesNothing(t *testing.T) {
	dir, path := writeCards(t, "a:\n  title: A\n  tags: [b]\nb:\n  title: B\n  tags: [a]\n")
	target := filepath.Join(dir, "index.html")

	_, _, err := execute(t, "build", "-i", path, "-o", target)
	require.ErrorIs(t, err, dfs.ErrCycleDetected)
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_Strict(t *testing.T) {
	dir, path := writeCards(t, "a:\n  title: A\n  tags: [ghost]\n")
	target := filepath.Join(dir, "index.html")

	_, _, err := execute(t, "build", "-i", path, "-o", target, "--strict")
	require.ErrorIs(t, err, compile.ErrMissingTags)
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))

	_, _, err = execute(t, "build", "-i", path, "-o", target)
	require.NoError(t, err, "flags from the previous run must not leak")
}

func TestBuild_BadFlags(t *testing.T) {
	_, path := writeCards(t, cardsYAML)
	_, _, err := execute(t, "build", "-i", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Format")

	_, _, err = execute(t, "build", "-i", filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild_Template(t *testing.T) {
	dir, path := writeCards(t, cardsYAML)
	tmpl := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(tmpl, []byte("HEAD<!-- CUT HERE -->MID<!-- CUT HERE -->TAIL"), 0o600))

	stdout, _, err := execute(t, "build", "-i", path, "-o", "-", "--template", tmpl)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "HEAD<div"))
	assert.True(t, strings.HasSuffix(stdout, "TAIL"))
}

func TestHoverPath(t *testing.T) {
	assert.Equal(t, "out/graph.json", hoverPath("out/graph.dot"))
	assert.Equal(t, "graph.json", hoverPath("graph"))
}

// =============================================================================
// check, graph, version
// =============================================================================

func TestCheck(t *testing.T) {
	_, path := writeCards(t, cardsYAML)
	stdout, _, err := execute(t, "check", "-i", path)
	require.NoError(t, err)
	assert.Equal(t, "2 cards, 1 questions, 0 warning(s)\n", stdout)
}

func TestCheck_ListsEveryCycle(t *testing.T) {
	_, path := writeCards(t, "a:\n  title: A\n  tags: [b]\nb:\n  title: B\n  tags: [a]\nc:\n  title: C\n  tags: [c]\n")
	stdout, _, err := execute(t, "check", "-i", path)
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, err.Error(), "2 cycle(s)")
	assert.Equal(t, "cycle: a → b → a\ncycle: c → c\n", stdout)
}

func TestCheck_StrictMissing(t *testing.T) {
	_, path := writeCards(t, "a:\n  title: A\n  tags: [ghost]\n")
	stdout, _, err := execute(t, "check", "-i", path, "--strict")
	require.ErrorIs(t, err, errCheckFailed)
	assert.ErrorIs(t, err, compile.ErrMissingTags)
	assert.Equal(t, "1 missing tag(s)\n", stdout)
}

func TestGraph(t *testing.T) {
	dir, path := writeCards(t, "a:\n  title: A\n  tags: [b]\nb:\n  title: B\n  tags: [a]\n")

	stdout, _, err := execute(t, "graph", "-i", path, "--graph-root", "p.html")
	require.NoError(t, err, "cycles can still be drawn")
	assert.Contains(t, stdout, "a -> b [id=a___b];")
	assert.Contains(t, stdout, "b -> a [id=b___a];")
	assert.Contains(t, stdout, `href="p.html#a"`)

	svg := filepath.Join(dir, "g.svg")
	require.NoError(t, os.WriteFile(svg, []byte("<svg><g/></svg>\n"), 0o600))
	_, _, err = execute(t, "graph", "-i", path, "--svg", svg)
	require.NoError(t, err)
	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `setup("a", [`)
	assert.True(t, strings.HasSuffix(string(data), "</svg>\n"))

	notSVG := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(notSVG, []byte("plain"), 0o600))
	_, _, err = execute(t, "graph", "-i", path, "--svg", notSVG)
	assert.Error(t, err)
}

func TestGraph_Focus(t *testing.T) {
	_, path := writeCards(t, cardsYAML+"ring:\n  title: Ring\n  text: r\n  tags: [group]\nlonely:\n  title: Lonely\n  text: l\n")

	stdout, _, err := execute(t, "graph", "-i", path, "--focus", "ring", "--direction", "prerequisites", "--depth", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "group -> ring [id=group___ring];")
	assert.NotContains(t, stdout, "set")
	assert.NotContains(t, stdout, "lonely")

	_, _, err = execute(t, "graph", "-i", path, "--focus", "ghost")
	assert.Error(t, err)
	_, _, err = execute(t, "graph", "-i", path, "--focus", "ring", "--direction", "up")
	assert.Error(t, err)
}

const depsYAML = `
set:
  title: Set
  text: s
group:
  title: Group
  text: g
  tags: [set]
ring:
  title: Ring
  text: r
  tags: [group]
draft:
  title: Draft
field:
  title: Field
  text: f
  tags: [ring, group, draft]
`

func TestDeps_Tree(t *testing.T) {
	_, path := writeCards(t, depsYAML)

	stdout, _, err := execute(t, "deps", "field", "-i", path)
	require.NoError(t, err)
	assert.Equal(t, "Field (field)\n"+
		"  Group (group)\n"+
		"    Set (set)\n"+
		"  Ring (ring)\n"+
		"  Draft (draft)\n"+
		"reading order: set, group, ring, draft, field\n"+
		"4 card(s) to read before field\n", stdout)

	stdout, _, err = execute(t, "deps", "field", "-i", path, "--skip-wip")
	require.NoError(t, err)
	assert.Contains(t, stdout, "reading order: set, group, ring, field\n")
	assert.Contains(t, stdout, "3 card(s) to read before field\n1 placeholder reference(s) skipped\n")

	stdout, _, err = execute(t, "deps", "field", "-i", path, "--depth", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "reading order: group, ring, draft, field\n")
	assert.NotContains(t, stdout, "Set")
}

func TestDeps_DependentsAndPath(t *testing.T) {
	_, path := writeCards(t, depsYAML)

	stdout, _, err := execute(t, "deps", "set", "-i", path, "--dependents")
	require.NoError(t, err)
	assert.Equal(t, "1\tgroup\tGroup\n2\tring\tRing\n2\tfield\tField\n", stdout)

	stdout, _, err = execute(t, "deps", "field", "-i", path, "--to", "set")
	require.NoError(t, err)
	assert.Equal(t, "field → group → set\n", stdout)

	_, _, err = execute(t, "deps", "set", "-i", path, "--to", "field")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set does not build on field")
}

func TestDeps_Errors(t *testing.T) {
	_, path := writeCards(t, depsYAML)

	_, _, err := execute(t, "deps", "ghost", "-i", path)
	assert.ErrorIs(t, err, dfs.ErrStartVertexNotFound)

	_, _, err = execute(t, "deps", "field", "-i", path, "--depth", "-1")
	assert.Error(t, err)

	_, _, err = execute(t, "deps", "-i", path)
	assert.Error(t, err, "the card ID is required")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cardbook dev\n", stdout)
}

// =============================================================================
// watch
// =============================================================================

func TestWatchFile_RebuildsOnWrite(t *testing.T) {
	_, path := writeCards(t, cardsYAML)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	rebuilt := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, zap.NewNop(), func() {
			calls.Add(1)
			rebuilt <- struct{}{}
		})
	}()

	// Keep writing until the watcher, which starts asynchronously, notices.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
wait:
	for {
		select {
		case <-rebuilt:
			break wait
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte(cardsYAML+"# edit\n"), 0o600))
		case <-deadline:
			t.Fatal("no rebuild after writing the input")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}
