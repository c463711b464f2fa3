package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"offload/internal/headextract"
	"offload/internal/pipeline"
)

const configFileName = "offload.toml"

// toolConfig is the content of offload.toml. Command-line flags override it.
type toolConfig struct {
	Pipeline pipelineConfig `toml:"pipeline"`
	Devices  devicesConfig  `toml:"devices"`
	Output   outputConfig   `toml:"output"`

	path string
}

type pipelineConfig struct {
	Passes     []string `toml:"passes"`
	VerifyEach bool     `toml:"verify_each"`
	Jobs       int      `toml:"jobs"`
}

type devicesConfig struct {
	Attach []string `toml:"attach"`
}

type outputConfig struct {
	Emit        string `toml:"emit"`
	Diagnostics string `toml:"diagnostics"`
}

func defaultConfig() toolConfig {
	return toolConfig{
		Pipeline: pipelineConfig{Passes: []string{headextract.Name}},
		Output:   outputConfig{Emit: string(pipeline.EmitText), Diagnostics: "pretty"},
	}
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig reads path. Keys the file leaves out take their default values.
func loadConfig(path string) (toolConfig, error) {
	var cfg toolConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return toolConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return toolConfig{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	defaults := defaultConfig()
	if !meta.IsDefined("pipeline", "passes") {
		cfg.Pipeline.Passes = defaults.Pipeline.Passes
	}
	if cfg.Output.Emit == "" {
		cfg.Output.Emit = defaults.Output.Emit
	}
	if cfg.Output.Diagnostics == "" {
		cfg.Output.Diagnostics = defaults.Output.Diagnostics
	}
	if _, err := pipeline.ParseEmitFormat(cfg.Output.Emit); err != nil {
		return toolConfig{}, fmt.Errorf("%s: output.emit: %w", path, err)
	}
	if _, err := parseDiagFormat(cfg.Output.Diagnostics); err != nil {
		return toolConfig{}, fmt.Errorf("%s: output.diagnostics: %w", path, err)
	}
	if cfg.Pipeline.Jobs < 0 {
		return toolConfig{}, fmt.Errorf("%s: pipeline.jobs must not be negative", path)
	}
	cfg.path = path
	return cfg, nil
}

// resolveConfig honours --config, falls back to searching upwards from the
// working directory, and to the defaults when nothing is found.
func resolveConfig(cmd *cobra.Command) (toolConfig, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return toolConfig{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if explicit != "" {
		return loadConfig(explicit)
	}
	path, ok, err := findConfig(".")
	if err != nil {
		return toolConfig{}, err
	}
	if !ok {
		return defaultConfig(), nil
	}
	return loadConfig(path)
}
