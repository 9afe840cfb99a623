package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/cardbook/bfs"
	"github.com/katalvlaran/cardbook/viz"
)

var (
	graphRoot      string
	graphSVG       string
	graphOut       string
	graphFocus     string
	graphDepth     int
	graphDirection string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the reference graph",
	Long: `Export the reference graph in DOT format without ordering the cards, so
graphs with cycles can still be drawn.

Render it with Graphviz and add hover highlighting to the result:
  cardbook graph -o graph.dot
  neato -Tsvg graph.dot > graph.svg
  cardbook graph --svg graph.svg

Draw only the neighborhood of one card, e.g. everything group builds on:
  cardbook graph --focus group --direction prerequisites --depth 2`,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVarP(&buildInput, "input", "i", "", "YAML card collection")
	graphCmd.Flags().StringVarP(&graphOut, "output", "o", "-", `DOT output file ("-" for stdout)`)
	graphCmd.Flags().StringVar(&graphRoot, "graph-root", "", "Page the graph nodes link to")
	graphCmd.Flags().StringVar(&graphSVG, "svg", "", "Inject hover highlighting into this Graphviz SVG instead")
	graphCmd.Flags().StringVar(&graphFocus, "focus", "", "Keep only cards reachable from this card")
	graphCmd.Flags().IntVar(&graphDepth, "depth", 0, "With --focus, the maximum number of hops (0 = unlimited)")
	graphCmd.Flags().StringVar(&graphDirection, "direction", "both", "With --focus: both, prerequisites or dependents")
}

func runGraph(c *cobra.Command, _ []string) error {
	if c.Flags().Changed("input") {
		cfg.Input = buildInput
	}
	if c.Flags().Changed("graph-root") {
		cfg.GraphRoot = graphRoot
	}

	store, err := linkedStore(cfg, logger)
	if err != nil {
		return err
	}
	x, err := viz.Build(store)
	if err != nil {
		return err
	}
	if graphFocus != "" {
		dir, err := bfs.ParseDirection(graphDirection)
		if err != nil {
			return err
		}
		res, err := bfs.BFS(store, graphFocus,
			bfs.WithContext(c.Context()),
			bfs.WithDirection(dir),
			bfs.WithMaxDepth(graphDepth),
		)
		if err != nil {
			return err
		}
		logger.Debug("Focused graph", zap.String("focus", graphFocus), zap.Int("cards", len(res.Order)))
		x = x.Subset(res.Order)
	}

	b := &builder{cfg: cfg, logger: logger, stdout: c.OutOrStdout(), stderr: c.ErrOrStderr()}
	if graphSVG != "" {
		svg, err := os.ReadFile(graphSVG)
		if err != nil {
			return fmt.Errorf("read svg: %w", err)
		}
		if !bytes.Contains(svg, []byte("<svg")) {
			return fmt.Errorf("%s does not look like an SVG file", graphSVG)
		}
		return b.write(graphSVG, viz.InjectSVG(svg, x))
	}

	data, err := x.DOT(cfg.GraphRoot)
	if err != nil {
		return err
	}

	return b.write(graphOut, data)
}
