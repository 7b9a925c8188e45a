package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for the TOML config file. Level is a
// pointer so an explicit 0 survives the merge.
type FileConfig struct {
	InputDir     string `toml:"input_dir"`
	DBPath       string `toml:"db_path"`
	BaseDir      string `toml:"base_dir"`
	OutputDir    string `toml:"output_dir"`
	Format       string `toml:"format"`
	Bitrate      string `toml:"bitrate"`
	Level        *int   `toml:"level"`
	Workers      int    `toml:"workers"`
	SkipMetadata *bool  `toml:"skip_metadata"`
	Lyrics       string `toml:"lyrics"`
	TrackingFile string `toml:"tracking_file"`
	Verbose      *bool  `toml:"verbose"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.flacpress/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".flacpress", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", fc.InputDir, &cfg.InputDir)
	s.setString("db", fc.DBPath, &cfg.DBPath)
	s.setString("base-dir", fc.BaseDir, &cfg.BaseDir)
	s.setString("output", fc.OutputDir, &cfg.OutputDir)
	s.setString("format", fc.Format, &cfg.Format)
	s.setString("bitrate", fc.Bitrate, &cfg.Bitrate)
	s.setString("lyrics", fc.Lyrics, &cfg.Lyrics)
	s.setString("tracking-file", fc.TrackingFile, &cfg.TrackingFile)

	if fc.Level != nil && !changed["level"] {
		cfg.Level = *fc.Level
	}
	s.setInt("workers", fc.Workers, &cfg.Workers)

	s.setBool("skip-metadata", fc.SkipMetadata, &cfg.SkipMetadata)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
