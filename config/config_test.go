package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "analyzer.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.BackwardBranchQuota != 1000 {
		t.Errorf("default BackwardBranchQuota = %d, want 1000", cfg.BackwardBranchQuota)
	}
	if cfg.SizeIndexBits != 64 {
		t.Errorf("default SizeIndexBits = %d, want 64", cfg.SizeIndexBits)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err == nil {
		t.Fatal("loading a nonexistent file should return an error")
	}
}

func TestLoadEmptyAnalyzerTableFallsBackToDefaults(t *testing.T) {
	path := writeTemp(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("empty file should resolve to Default(), got %+v", cfg)
	}
}

func TestLoadOverridesSpecifiedFields(t *testing.T) {
	path := writeTemp(t, `
[analyzer]
backward-branch-quota = 42
size-index-bits = 32
log-level = "verbose"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BackwardBranchQuota != 42 {
		t.Errorf("BackwardBranchQuota = %d, want 42", cfg.BackwardBranchQuota)
	}
	if cfg.SizeIndexBits != 32 {
		t.Errorf("SizeIndexBits = %d, want 32", cfg.SizeIndexBits)
	}
	if cfg.LogLevel != 3 {
		t.Errorf("LogLevel = %d, want 3 (verbose)", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidSizeIndexBits(t *testing.T) {
	path := writeTemp(t, `
[analyzer]
size-index-bits = 48
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("a size-index-bits of 48 should be rejected")
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	path := writeTemp(t, `
[analyzer]
log-level = "deafening"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("an unrecognized log level should be rejected")
	}
}

func TestLoadSilentLogLevel(t *testing.T) {
	path := writeTemp(t, `
[analyzer]
log-level = "silent"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != 0 {
		t.Errorf("LogLevel = %d, want 0 (silent)", cfg.LogLevel)
	}
}
