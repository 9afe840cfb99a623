package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/cardbook/compile"
	"github.com/katalvlaran/cardbook/dfs"
	"github.com/katalvlaran/cardbook/source"
)

// errCheckFailed is returned when check finds a fatal problem.
var errCheckFailed = errors.New("check failed")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the cards without writing anything",
	Long: `Load and compile the card collection and report problems: missing tags,
suspicious math delimiters, colloquium numbering gaps. When the cards do not
form a DAG, every cycle is listed instead of only the first one.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addInputFlags(checkCmd, &buildInput, &buildFormat, &buildStrict)
}

func runCheck(c *cobra.Command, _ []string) error {
	if err := applyFlags(c, cfg); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &builder{cfg: cfg, logger: logger, stdout: c.OutOrStdout(), stderr: c.ErrOrStderr()}
	res, err := b.compile(ctx)
	switch {
	case errors.Is(err, dfs.ErrCycleDetected):
		return listCycles(c.OutOrStdout(), b)
	case errors.Is(err, compile.ErrMissingTags):
		fmt.Fprintf(c.OutOrStdout(), "%d missing tag(s)\n", len(res.Missing))
		return fmt.Errorf("%w: %w", errCheckFailed, err)
	case err != nil:
		return err
	}

	fmt.Fprintf(c.OutOrStdout(), "%d cards, %d questions, %d warning(s)\n",
		res.Store.Len(), len(res.Questions), res.Diagnostics.Warnings())

	return nil
}

// listCycles reloads the input and prints every cycle of the reference graph.
func listCycles(w io.Writer, b *builder) error {
	doc, err := source.NewLoader(
		source.WithLogger(b.logger),
		source.WithMetaPrefix(b.cfg.MetaPrefix),
		source.WithQuestionsKey(b.cfg.QuestionsKey),
	).LoadFile(b.cfg.Input)
	if err != nil {
		return err
	}
	if _, err = doc.Store.Link(); err != nil {
		return err
	}
	_, cycles, err := dfs.DetectCycles(doc.Store)
	if err != nil {
		return err
	}
	for _, cyc := range cycles {
		fmt.Fprintf(w, "cycle: %s\n", strings.Join(cyc, " → "))
	}

	return fmt.Errorf("%w: %d cycle(s)", errCheckFailed, len(cycles))
}
