// Package cmd provides the cardbook command line.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/cardbook/config"
)

var (
	cfgFile  string
	logLevel string
	devLog   bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "cardbook",
	Short: "cardbook - compile cross-referenced cards into a study page",
	Long: `cardbook reads a YAML table of cards that tag each other, orders them so
every card comes after the cards it builds on, groups them into numbered
colloquium questions, and writes an HTML page, a JSON dump and a Graphviz
reference graph.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev", false, "Human-readable development logging")
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

// setup loads the configuration and builds the logger before any subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if cfg, err = config.Load(cfgFile); err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	if logger, err = newLogger(cfg.LogLevel, devLog); err != nil {
		return err
	}
	logger.Debug("configuration loaded", zap.String("command", cmd.Name()), zap.Any("config", cfg))

	return nil
}

// newLogger builds a stderr zap logger at the given level.
func newLogger(level string, dev bool) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zc := zap.NewProductionConfig()
	if dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = !dev

	return zc.Build()
}
