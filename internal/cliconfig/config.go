// Package cliconfig holds the CLI configuration for flacpress, merged
// from flags, environment variables and an optional TOML file.
package cliconfig

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/owenvale/flacpress/internal/media"
	"github.com/owenvale/flacpress/internal/tags"
)

// DefaultTrackingName is the conversion record kept in the output dir.
const DefaultTrackingName = ".flacpress-tracking.json"

// Config holds CLI configuration for flacpress.
type Config struct {
	InputDir string
	DBPath   string
	BaseDir  string

	OutputDir string
	Format    string
	Bitrate   string
	Level     int

	Artists string
	AlbumID string
	Year    string

	Workers      int
	SkipMetadata bool
	Lyrics       string
	Force        bool
	TrackingFile string
	Verbose      bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Format:  "mp3",
		Bitrate: "320k",
		Level:   5,
		Lyrics:  string(tags.LyricsClean),
		Workers: runtime.NumCPU(),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.InputDir == "" && c.DBPath == "" {
		return fmt.Errorf("either an input directory or an album database is required")
	}
	if c.InputDir != "" && c.DBPath != "" {
		return fmt.Errorf("input directory and album database are mutually exclusive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if !media.IsOutputFormat(c.Format) {
		return fmt.Errorf("unsupported format %q (supported: %v)", c.Format, media.OutputFormatsList())
	}
	if c.Level < 0 || c.Level > 8 {
		return fmt.Errorf("compression level must be between 0 and 8, got %d", c.Level)
	}
	if !tags.LyricsMode(c.Lyrics).Valid() {
		return fmt.Errorf("unknown lyrics mode %q", c.Lyrics)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
