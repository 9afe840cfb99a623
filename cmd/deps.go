package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/cardbook/bfs"
	"github.com/katalvlaran/cardbook/config"
	"github.com/katalvlaran/cardbook/core"
	"github.com/katalvlaran/cardbook/dfs"
	"github.com/katalvlaran/cardbook/source"
)

var (
	depsDepth      int
	depsDependents bool
	depsTo         string
	depsSkipWIP    bool
)

var depsCmd = &cobra.Command{
	Use:   "deps ID",
	Short: "Show what a card builds on",
	Long: `Print the cards a card builds on as a tree, followed by an order to read
them in. Cycles do not stop the walk.

  cardbook deps field                  tree of prerequisites
  cardbook deps field --depth 1        direct tags only
  cardbook deps set --dependents       cards building on set, nearest first
  cardbook deps field --to set         shortest chain of tags from field to set`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)

	depsCmd.Flags().StringVarP(&buildInput, "input", "i", "", "YAML card collection")
	depsCmd.Flags().IntVar(&depsDepth, "depth", 0, "Maximum number of hops (0 = unlimited)")
	depsCmd.Flags().BoolVar(&depsDependents, "dependents", false, "List the cards that build on ID instead")
	depsCmd.Flags().StringVar(&depsTo, "to", "", "Print the shortest chain of tags from ID to this card")
	depsCmd.Flags().BoolVar(&depsSkipWIP, "skip-wip", false, "Do not walk into placeholder cards")
}

// linkedStore loads the configured input and resolves its tags without
// ordering. Missing tags are logged, not fatal.
func linkedStore(conf *config.Config, log *zap.Logger) (*core.Store, error) {
	doc, err := source.NewLoader(
		source.WithLogger(log),
		source.WithMetaPrefix(conf.MetaPrefix),
		source.WithQuestionsKey(conf.QuestionsKey),
	).LoadFile(conf.Input)
	if err != nil {
		return nil, err
	}
	missing, err := doc.Store.Link()
	if err != nil {
		return nil, err
	}
	for _, m := range missing {
		log.Warn("Missing tag", zap.String("tag", m.Tag), zap.Strings("declared_by", m.DeclaredBy))
	}

	return doc.Store, nil
}

func runDeps(c *cobra.Command, args []string) error {
	if c.Flags().Changed("input") {
		cfg.Input = buildInput
	}
	if depsDepth < 0 {
		return fmt.Errorf("--depth must not be negative (got %d)", depsDepth)
	}
	s, err := linkedStore(cfg, logger)
	if err != nil {
		return err
	}
	id, w := args[0], c.OutOrStdout()

	title := func(id string) string {
		if e, err := s.Get(id); err == nil {
			return e.Title
		}
		return id
	}
	walkable := func(id string) bool {
		if !depsSkipWIP {
			return true
		}
		e, err := s.Get(id)
		return err == nil && !e.Placeholder
	}

	switch {
	case depsTo != "":
		res, err := bfs.BFS(s, id,
			bfs.WithContext(c.Context()),
			bfs.WithDirection(bfs.Prerequisites),
			bfs.WithFilterNeighbor(func(_, nbr string) bool { return walkable(nbr) }),
		)
		if err != nil {
			return err
		}
		if !res.Reached(depsTo) {
			return fmt.Errorf("%s does not build on %s", id, depsTo)
		}
		path, err := res.PathTo(depsTo)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, strings.Join(path, " → "))

		return nil

	case depsDependents:
		_, err := bfs.BFS(s, id,
			bfs.WithContext(c.Context()),
			bfs.WithDirection(bfs.Dependents),
			bfs.WithMaxDepth(depsDepth),
			bfs.WithFilterNeighbor(func(_, nbr string) bool { return walkable(nbr) }),
			bfs.WithOnVisit(func(v string, depth int) error {
				if depth == 0 {
					return nil
				}
				_, err := fmt.Fprintf(w, "%d\t%s\t%s\n", depth, v, title(v))
				return err
			}),
		)

		return err
	}

	// Prerequisite tree: pre-order for the tree, post-order for reading.
	limit := -1
	if depsDepth > 0 {
		limit = depsDepth
	}
	var pre []string
	res, err := dfs.DFS(s, id,
		dfs.WithContext(c.Context()),
		dfs.WithMaxDepth(limit),
		dfs.WithFilterNeighbor(walkable),
		dfs.WithOnVisit(func(v string) error {
			pre = append(pre, v)
			return nil
		}),
	)
	if errors.Is(err, dfs.ErrStartVertexNotFound) {
		return fmt.Errorf("%w: %q", err, id)
	}
	if err != nil {
		return err
	}

	for _, v := range pre {
		fmt.Fprintf(w, "%s%s (%s)\n", strings.Repeat("  ", res.Depth[v]), title(v), v)
	}
	fmt.Fprintf(w, "reading order: %s\n", strings.Join(res.Order, ", "))
	fmt.Fprintf(w, "%d card(s) to read before %s\n", len(res.Visited)-1, id)
	if res.SkippedNeighbors > 0 {
		fmt.Fprintf(w, "%d placeholder reference(s) skipped\n", res.SkippedNeighbors)
	}

	return nil
}
