package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/owenvale/flacpress/internal/cliconfig"
	"github.com/owenvale/flacpress/internal/flacfile"
	"github.com/owenvale/flacpress/internal/report"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "flacpress",
		Short:   "Analyze FLAC compression and convert FLAC libraries",
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Long: `flacpress inspects the structure of FLAC files to estimate which
compression preset produced them, and batch-converts FLAC libraries to
mp3, aac, ogg, opus, m4a or re-pressed FLAC, carrying sidecar metadata
(AlbumInfo.txt, per-track .info files, cover art) into the outputs.`,
		SilenceUsage: true,
	}
	root.AddCommand(newAnalyzeCmd(), newConvertCmd(), newInteractiveCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:          "analyze <file.flac>...",
		Short:        "Estimate the compression level of FLAC files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []report.Record
			var firstErr error
			for _, path := range args {
				a, err := flacfile.AnalyzeFile(path)
				if err != nil && firstErr == nil {
					firstErr = err
				}
				if asJSON {
					records = append(records, report.NewRecord(path, a, err))
					continue
				}
				if a == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				report.WriteText(cmd.OutOrStdout(), path, a)
			}
			if asJSON {
				if err := report.WriteJSON(cmd.OutOrStdout(), records); err != nil {
					return err
				}
			}
			return firstErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit machine-readable JSON instead of text")
	return cmd
}

// mergedConfig folds the config file and environment into cfg,
// respecting flags the user set explicitly.
func mergedConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgPath == "" {
		cfgPath = cliconfig.DefaultConfigPath()
	}
	if cfgPath != "" && cliconfig.FileExists(cfgPath) {
		fc, err := cliconfig.LoadFileConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	return cliconfig.ApplyEnvConfig(cfg, changed)
}

func addConvertFlags(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath *string) {
	f := cmd.Flags()
	f.StringVar(cfgPath, "config", "", "path to config file (default: $HOME/.flacpress/config.toml)")
	f.StringVarP(&cfg.InputDir, "input", "i", cfg.InputDir, "directory to scan for FLAC files")
	f.StringVar(&cfg.DBPath, "db", cfg.DBPath, "album database JSON file")
	f.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "base directory for database paths (default: database directory)")
	f.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir, "output directory")
	f.StringVarP(&cfg.Format, "format", "f", cfg.Format, "output format (mp3, aac, ogg, opus, m4a, flac)")
	f.StringVarP(&cfg.Bitrate, "bitrate", "b", cfg.Bitrate, "bitrate for lossy formats")
	f.IntVarP(&cfg.Level, "level", "l", cfg.Level, "FLAC compression level (0-8)")
	f.StringVar(&cfg.Artists, "artists", cfg.Artists, "comma-separated artist filter for database mode")
	f.StringVar(&cfg.AlbumID, "album-id", cfg.AlbumID, "convert a single album by database ID")
	f.StringVar(&cfg.Year, "year", cfg.Year, "filter database albums by year")
	f.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "parallel conversion workers")
	f.BoolVar(&cfg.SkipMetadata, "skip-metadata", cfg.SkipMetadata, "skip sidecar metadata enhancement")
	f.StringVar(&cfg.Lyrics, "lyrics", cfg.Lyrics, "lyrics handling: none, clean or timestamped")
	f.BoolVar(&cfg.Force, "force", cfg.Force, "reconvert files even when tracked as up to date")
	f.StringVar(&cfg.TrackingFile, "tracking-file", cfg.TrackingFile, "conversion tracking file (default: <output>/"+cliconfig.DefaultTrackingName+")")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "debug logging")
}

func newConvertCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a FLAC library to the configured format",
		Example: `  flacpress convert -i ~/Music/flac -o ~/Music/mp3 -f mp3 -b 320k
  flacpress convert --db albums.json --artists "070 Shake" -o out -f opus
  flacpress convert -i ~/Music/flac -o ~/Music/flac8 -f flac -l 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mergedConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runConversion(cmd.Context(), cfg)
		},
	}
	addConvertFlags(cmd, &cfg, &cfgPath)
	return cmd
}

func newInteractiveCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Pick artists, format and quality from a menu, then convert",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mergedConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("interactive mode needs an album database (--db)")
			}
			return runInteractive(cmd.Context(), cfg)
		},
	}
	addConvertFlags(cmd, &cfg, &cfgPath)
	return cmd
}
