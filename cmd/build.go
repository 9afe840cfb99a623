package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/cardbook/compile"
	"github.com/katalvlaran/cardbook/config"
	"github.com/katalvlaran/cardbook/diag"
	"github.com/katalvlaran/cardbook/render"
	"github.com/katalvlaran/cardbook/source"
	"github.com/katalvlaran/cardbook/viz"
)

var (
	buildInput     string
	buildOutput    string
	buildJSON      string
	buildGraph     string
	buildGraphRoot string
	buildTemplate  string
	buildFormat    string
	buildStrict    bool
	buildWatch     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the cards into HTML, JSON and a graph",
	Long: `Compile the card collection.

The HTML page is always written; --json and --graph add the node list and
the Graphviz reference graph (plus its hover data as <graph>.json).
A cycle between cards aborts the build before anything is written.

Examples:
  cardbook build -i cards.yml -o public/index.html
  cardbook build --graph public/graph.dot --graph-root index.html
  cardbook build --format github --strict      # CI annotations, fail on missing tags
  cardbook build --watch                       # rebuild on every save`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	addInputFlags(buildCmd, &buildInput, &buildFormat, &buildStrict)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", `HTML output file ("-" for stdout)`)
	buildCmd.Flags().StringVar(&buildJSON, "json", "", "Write the render-ready nodes as JSON")
	buildCmd.Flags().StringVar(&buildGraph, "graph", "", "Write the reference graph in DOT format")
	buildCmd.Flags().StringVar(&buildGraphRoot, "graph-root", "", "Page the graph nodes link to")
	buildCmd.Flags().StringVar(&buildTemplate, "template", "", "HTML template split by the cut marker")
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "Rebuild whenever the input changes")
}

// addInputFlags registers the flags shared by build and check.
func addInputFlags(c *cobra.Command, input, format *string, strict *bool) {
	c.Flags().StringVarP(input, "input", "i", "", "YAML card collection")
	c.Flags().StringVar(format, "format", "", "Diagnostic output: log or github")
	c.Flags().BoolVar(strict, "strict", false, "Fail when a tag names no card")
}

// applyFlags copies explicitly set flags of c onto conf.
func applyFlags(c *cobra.Command, conf *config.Config) error {
	set := func(name string, dst *string, v string) {
		if c.Flags().Changed(name) {
			*dst = v
		}
	}
	set("input", &conf.Input, buildInput)
	set("output", &conf.Output, buildOutput)
	set("json", &conf.JSONOutput, buildJSON)
	set("graph", &conf.GraphOutput, buildGraph)
	set("graph-root", &conf.GraphRoot, buildGraphRoot)
	set("template", &conf.Template, buildTemplate)
	set("format", &conf.Format, buildFormat)
	if c.Flags().Changed("strict") {
		conf.Strict = buildStrict
	}

	return conf.Validate()
}

func runBuild(c *cobra.Command, _ []string) error {
	if err := applyFlags(c, cfg); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &builder{cfg: cfg, logger: logger, stdout: c.OutOrStdout(), stderr: c.ErrOrStderr()}
	err := b.build(ctx)
	if !buildWatch {
		return err
	}
	if err != nil {
		logger.Error("build failed", zap.Error(err))
	}

	return watchFile(ctx, cfg.Input, logger, func() {
		if err := b.build(ctx); err != nil {
			logger.Error("build failed", zap.Error(err))
		}
	})
}

// builder runs one full build with fixed settings.
type builder struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

// compile loads and compiles the input, reporting diagnostics even when
// strict mode fails the run.
func (b *builder) compile(ctx context.Context) (*compile.Result, error) {
	doc, err := source.NewLoader(
		source.WithLogger(b.logger),
		source.WithMetaPrefix(b.cfg.MetaPrefix),
		source.WithQuestionsKey(b.cfg.QuestionsKey),
	).LoadFile(b.cfg.Input)
	if err != nil {
		return nil, err
	}

	res, err := compile.New(compile.WithLogger(b.logger), compile.WithStrict(b.cfg.Strict)).Compile(ctx, doc)
	if res != nil {
		if rerr := b.report(res.Diagnostics); rerr != nil {
			return nil, rerr
		}
	}

	return res, err
}

// report prints diagnostics in the configured format.
func (b *builder) report(ds diag.List) error {
	if b.cfg.Format == config.FormatGitHub {
		return diag.WriteGitHub(b.stderr, ds)
	}
	diag.Emit(b.logger, ds)

	return nil
}

func (b *builder) build(ctx context.Context) error {
	// 1) Compile; nothing is written on failure
	res, err := b.compile(ctx)
	if err != nil {
		return err
	}

	// 2) HTML
	page, err := render.LoadPage(b.cfg.Template, b.cfg.CutMarker)
	if err != nil {
		return err
	}
	var html bytes.Buffer
	if err = render.New(render.WithPage(page), render.WithLogger(b.logger)).WriteHTML(&html, res.Nodes); err != nil {
		return err
	}
	if err = b.write(b.cfg.Output, html.Bytes()); err != nil {
		return err
	}
	b.logger.Info("HTML done", zap.String("path", b.cfg.Output), zap.Int("nodes", len(res.Nodes)))

	// 3) JSON
	if b.cfg.JSONOutput != "" {
		var js bytes.Buffer
		if err = render.WriteJSON(&js, res.Nodes); err != nil {
			return err
		}
		if err = b.write(b.cfg.JSONOutput, js.Bytes()); err != nil {
			return err
		}
	}

	// 4) Graph
	if b.cfg.GraphOutput != "" {
		if err = b.graph(res); err != nil {
			return err
		}
		b.logger.Info("Graphviz done", zap.String("path", b.cfg.GraphOutput))
	}

	b.logger.Info("Done")

	return nil
}

func (b *builder) graph(res *compile.Result) error {
	x, err := viz.Build(res.Store)
	if err != nil {
		return err
	}
	data, err := x.DOT(b.cfg.GraphRoot)
	if err != nil {
		return err
	}
	if err = b.write(b.cfg.GraphOutput, data); err != nil || b.cfg.GraphOutput == "-" {
		return err
	}
	var hover bytes.Buffer
	if err = x.WriteHover(&hover); err != nil {
		return err
	}

	return b.write(hoverPath(b.cfg.GraphOutput), hover.Bytes())
}

// hoverPath replaces the extension of a graph path with .json.
func hoverPath(graph string) string {
	return strings.TrimSuffix(graph, filepath.Ext(graph)) + ".json"
}

// write stores data at path, creating parent directories; "-" is stdout.
func (b *builder) write(path string, data []byte) error {
	if path == "-" {
		_, err := b.stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
