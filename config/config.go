// Package config loads the analyzer's tuning parameters from a TOML file --
// the backward-branch quota, the platform size-index width, and the log
// level -- the natural place for a compiler middle-end to expose knobs
// without inventing a bespoke flag parser. Grounded on
// chai/src/mods/load.go's toml.Unmarshal-based module-manifest loader,
// adapted from "module manifest" to "analyzer configuration".
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// tomlAnalyzerFile mirrors the on-disk TOML shape, following the
// tomlModuleFile/tomlModule split in chai/src/mods/module.go.
type tomlAnalyzerFile struct {
	Analyzer *tomlAnalyzer `toml:"analyzer"`
}

type tomlAnalyzer struct {
	BackwardBranchQuota int `toml:"backward-branch-quota"`
	SizeIndexBits int `toml:"size-index-bits"`
	LogLevel string `toml:"log-level"`
}

// AnalyzerConfig is the resolved, validated configuration consumed by
// package analyze and package irbuild.
type AnalyzerConfig struct {
	// BackwardBranchQuota bounds the abstract interpreter's back-edge count
	// before it declares non-termination.
	BackwardBranchQuota int

	// SizeIndexBits is the bit width of the platform size-index type used
	// for `for`-loop induction variables and pointer<->int casts.
	SizeIndexBits int

	// LogLevel selects how verbosely report.Sink displays diagnostics.
	LogLevel int
}

// Default returns the configuration used when no TOML file is supplied.
func Default() AnalyzerConfig {
	return AnalyzerConfig{
		BackwardBranchQuota: 1000,
		SizeIndexBits: 64,
		LogLevel: 2, // report.LogLevelWarning
	}
}

// Load reads and validates an analyzer configuration file at path.
func Load(path string) (AnalyzerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnalyzerConfig{}, err
	}

	taf := &tomlAnalyzerFile{}
	if err := toml.Unmarshal(data, taf); err != nil {
		return AnalyzerConfig{}, err
	}

	cfg := Default()
	if taf.Analyzer == nil {
		return cfg, nil
	}

	if taf.Analyzer.BackwardBranchQuota > 0 {
		cfg.BackwardBranchQuota = taf.Analyzer.BackwardBranchQuota
	}

	if taf.Analyzer.SizeIndexBits != 0 {
		if taf.Analyzer.SizeIndexBits != 32 && taf.Analyzer.SizeIndexBits != 64 {
			return AnalyzerConfig{}, fmt.Errorf("size-index-bits must be 32 or 64, got %d", taf.Analyzer.SizeIndexBits)
		}
		cfg.SizeIndexBits = taf.Analyzer.SizeIndexBits
	}

	switch taf.Analyzer.LogLevel {
	case "", "warning":
		cfg.LogLevel = 2
	case "silent":
		cfg.LogLevel = 0
	case "error":
		cfg.LogLevel = 1
	case "verbose":
		cfg.LogLevel = 3
	default:
		return AnalyzerConfig{}, fmt.Errorf("unrecognized log level %q", taf.Analyzer.LogLevel)
	}

	return cfg, nil
}
