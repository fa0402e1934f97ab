package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fundot/fundot/fundot"
	"gopkg.in/yaml.v3"
)

const configEnv = "FUNDOT_CONFIG"

// cliConfig is the contents of config.yml.
type cliConfig struct {
	Mode        string `yaml:"mode"`
	MaxDepth    int    `yaml:"max_depth"`
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
	Plain       bool   `yaml:"plain"`
	Debug       bool   `yaml:"debug"`
}

func defaultConfig() cliConfig {
	return cliConfig{
		Mode:        fundot.ModePermissive.String(),
		MaxDepth:    fundot.DefaultMaxDepth,
		Prompt:      ">>> ",
		HistoryFile: "~/.fundot_history",
	}
}

// loadConfig reads the config file named by explicit, $FUNDOT_CONFIG or the
// user config directory, in that order. Missing implicit files yield the
// defaults.
func loadConfig(explicit string) (cliConfig, error) {
	cfg := defaultConfig()
	path, required := resolveConfigPath(explicit)
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func resolveConfigPath(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if env := os.Getenv(configEnv); env != "" {
		return env, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "fundot", "config.yml"), false
}

func (c cliConfig) validate() error {
	var issues []string
	if _, ok := fundot.ParseMode(c.Mode); !ok {
		issues = append(issues, fmt.Sprintf("mode must be strict or permissive, got %q", c.Mode))
	}
	if c.MaxDepth < 0 {
		issues = append(issues, fmt.Sprintf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

func (c cliConfig) mode() fundot.Mode {
	m, _ := fundot.ParseMode(c.Mode)
	return m
}

func (c cliConfig) parseOptions() fundot.ParseOptions {
	return fundot.ParseOptions{MaxDepth: c.MaxDepth}
}

func (c cliConfig) historyPath() string {
	return expandHome(c.HistoryFile)
}

// logger writes debug records to w when debug is enabled.
func (c cliConfig) logger(w io.Writer) *slog.Logger {
	if !c.Debug || w == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (c cliConfig) evaluator(exit func(int), logOut io.Writer) *fundot.Evaluator {
	return fundot.NewEvaluator(fundot.Config{
		Mode:   c.mode(),
		Exit:   exit,
		Logger: c.logger(logOut),
	})
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// commonFlags are shared by every evaluating subcommand and override the
// config file.
type commonFlags struct {
	configPath string
	strict     bool
	maxDepth   int
	debug      bool
}

func registerCommonFlags(fs *flag.FlagSet) *commonFlags {
	f := &commonFlags{}
	fs.StringVar(&f.configPath, "config", "", "path to config.yml")
	fs.BoolVar(&f.strict, "strict", false, "report unbound symbols and non-callable heads as errors")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "maximum bracket nesting (0 keeps the configured value)")
	fs.BoolVar(&f.debug, "debug", false, "log evaluator calls to stderr")
	return f
}

func (f *commonFlags) resolve() (cliConfig, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return cfg, err
	}
	if f.strict {
		cfg.Mode = fundot.ModeStrict.String()
	}
	if f.maxDepth > 0 {
		cfg.MaxDepth = f.maxDepth
	}
	if f.debug {
		cfg.Debug = true
	}
	return cfg, nil
}
