package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.InputDir = "/music/flac"
	cfg.OutputDir = "/music/mp3"
	return cfg
}

func TestValidateRequiresSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = "/out"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("config with no source validated")
	}
}

func TestValidateSourceExclusivity(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = "/music/albums.json"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("input dir and db accepted together")
	}
}

func TestValidateRequiresOutput(t *testing.T) {
	cfg := validConfig()
	cfg.OutputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("config with no output validated")
	}
}

func TestValidateFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Format = "wav"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unsupported format validated")
	}
}

func TestValidateLevelRange(t *testing.T) {
	for _, level := range []int{-1, 9} {
		cfg := validConfig()
		cfg.Level = level
		if err := cfg.Validate(); err == nil {
			t.Fatalf("level %d validated", level)
		}
	}
	cfg := validConfig()
	cfg.Level = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("level 0 rejected: %v", err)
	}
}

func TestValidateLyricsMode(t *testing.T) {
	cfg := validConfig()
	cfg.Lyrics = "karaoke"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown lyrics mode validated")
	}
}

func TestValidateWorkersFloor(t *testing.T) {
	cfg := validConfig()
	cfg.Workers = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Workers != 1 {
		t.Fatalf("Workers = %d, want 1", cfg.Workers)
	}
}

func TestApplyFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
output_dir = "/from/file"
format = "opus"
level = 0
workers = 2
verbose = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	changed := map[string]bool{"format": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.OutputDir != "/from/file" {
		t.Fatalf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Format != "mp3" {
		t.Fatalf("changed flag overridden by file: Format = %q", cfg.Format)
	}
	if cfg.Level != 0 {
		t.Fatalf("explicit level 0 from file lost: Level = %d", cfg.Level)
	}
	if cfg.Workers != 2 || !cfg.Verbose {
		t.Fatalf("Workers = %d, Verbose = %v", cfg.Workers, cfg.Verbose)
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("FLACPRESS_OUTPUT_DIR", "/from/env")
	t.Setenv("FLACPRESS_FORMAT", "ogg")
	t.Setenv("FLACPRESS_WORKERS", "3")
	t.Setenv("FLACPRESS_VERBOSE", "1")

	cfg := DefaultConfig()
	changed := map[string]bool{"output": true}
	cfg.OutputDir = "/from/flag"
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.OutputDir != "/from/flag" {
		t.Fatalf("changed flag overridden by env: OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Format != "ogg" || cfg.Workers != 3 || !cfg.Verbose {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestApplyEnvConfigBadInt(t *testing.T) {
	t.Setenv("FLACPRESS_WORKERS", "lots")
	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err == nil {
		t.Fatalf("bad int accepted from env")
	}
}
