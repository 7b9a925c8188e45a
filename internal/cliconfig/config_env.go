package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (FLACPRESS_*). It respects flags that have been explicitly set
// (changed map). Returns an error if a variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", os.Getenv("FLACPRESS_INPUT_DIR"), &cfg.InputDir)
	s.setString("db", os.Getenv("FLACPRESS_DB_PATH"), &cfg.DBPath)
	s.setString("base-dir", os.Getenv("FLACPRESS_BASE_DIR"), &cfg.BaseDir)
	s.setString("output", os.Getenv("FLACPRESS_OUTPUT_DIR"), &cfg.OutputDir)
	s.setString("format", os.Getenv("FLACPRESS_FORMAT"), &cfg.Format)
	s.setString("bitrate", os.Getenv("FLACPRESS_BITRATE"), &cfg.Bitrate)
	s.setString("lyrics", os.Getenv("FLACPRESS_LYRICS"), &cfg.Lyrics)
	s.setString("tracking-file", os.Getenv("FLACPRESS_TRACKING_FILE"), &cfg.TrackingFile)

	if err := s.setIntFromString("level", os.Getenv("FLACPRESS_LEVEL"), &cfg.Level); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("FLACPRESS_WORKERS"), &cfg.Workers); err != nil {
		return err
	}

	s.setBoolFromString("skip-metadata", os.Getenv("FLACPRESS_SKIP_METADATA"), &cfg.SkipMetadata)
	s.setBoolFromString("verbose", os.Getenv("FLACPRESS_VERBOSE"), &cfg.Verbose)

	return nil
}
