// Package config holds the build settings of cardbook.
//
// Settings are layered, lowest priority first:
//  1. Defaults (Default)
//  2. An optional YAML file (cardbook.yaml)
//  3. CARDBOOK_* environment variables
//  4. Command-line flags (applied by package cmd)
//
// The result is checked with Validate before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when none is given explicitly.
const DefaultFile = "cardbook.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CARDBOOK_"

// Diagnostic output formats.
const (
	FormatLog    = "log"
	FormatGitHub = "github"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete set of build settings.
type Config struct {
	// Input is the YAML card collection.
	Input string `yaml:"input" validate:"required"`
	// Output is the HTML page; "-" writes to stdout.
	Output string `yaml:"output" validate:"required"`
	// JSONOutput, when set, receives the render-ready node list.
	JSONOutput string `yaml:"json_output"`
	// GraphOutput, when set, receives the DOT graph; the hover data is
	// written next to it with a .json extension.
	GraphOutput string `yaml:"graph_output"`
	// GraphRoot prefixes node links in the graph ("index.html" ⇒ index.html#id).
	GraphRoot string `yaml:"graph_root"`
	// Template is an HTML page split by CutMarker; empty uses the built-in page.
	Template  string `yaml:"template"`
	CutMarker string `yaml:"cut_marker" validate:"required"`

	MetaPrefix   string `yaml:"meta_prefix" validate:"required"`
	QuestionsKey string `yaml:"questions_key" validate:"required"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" validate:"oneof=log github"`
	// Strict turns missing tags into a build failure.
	Strict bool `yaml:"strict"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Input:        "cards.yml",
		Output:       "public/index.html",
		GraphRoot:    "index.html",
		CutMarker:    "<!-- CUT HERE -->",
		MetaPrefix:   "_",
		QuestionsKey: "_colloq",
		LogLevel:     "info",
		Format:       FormatLog,
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An empty path tries DefaultFile and tolerates its absence;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overlays CARDBOOK_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("INPUT", &c.Input)
	str("OUTPUT", &c.Output)
	str("JSON_OUTPUT", &c.JSONOutput)
	str("GRAPH_OUTPUT", &c.GraphOutput)
	str("GRAPH_ROOT", &c.GraphRoot)
	str("TEMPLATE", &c.Template)
	str("CUT_MARKER", &c.CutMarker)
	str("META_PREFIX", &c.MetaPrefix)
	str("QUESTIONS_KEY", &c.QuestionsKey)
	str("LOG_LEVEL", &c.LogLevel)
	str("FORMAT", &c.Format)

	if v, ok := lookup(EnvPrefix + "STRICT"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Strict = b
		}
	}
}

// Validate checks c against its struct tags.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %q)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
