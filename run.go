package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/owenvale/flacpress/internal/batch"
	"github.com/owenvale/flacpress/internal/cliconfig"
	"github.com/owenvale/flacpress/internal/convert"
	"github.com/owenvale/flacpress/internal/library"
	"github.com/owenvale/flacpress/internal/media"
	"github.com/owenvale/flacpress/internal/metainfo"
	"github.com/owenvale/flacpress/internal/tags"
	"github.com/owenvale/flacpress/internal/ui"
)

// runConversion discovers the sources, runs the worker pool and saves
// the tracking file.
func runConversion(ctx context.Context, cfg cliconfig.Config) error {
	log := cliconfig.Logger(cfg.Verbose)

	files, scanRoot, err := gatherFiles(cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn().Msg("no FLAC files found, nothing to do")
		return nil
	}
	log.Info().Int("files", len(files)).Str("format", cfg.Format).Msg("starting conversion")

	var sidecars convert.Sidecars
	if !cfg.SkipMetadata {
		sidecars = convert.Sidecars{
			AlbumInfo:  metainfo.FindAlbumInfo(scanRoot),
			TrackInfos: metainfo.FindTrackInfoFiles(scanRoot),
			CoverArt:   metainfo.FindCoverArt(scanRoot),
		}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	trackingPath := cfg.TrackingFile
	if trackingPath == "" {
		trackingPath = filepath.Join(cfg.OutputDir, cliconfig.DefaultTrackingName)
	}
	tracking, err := library.LoadTracking(trackingPath)
	if err != nil {
		return err
	}

	runner := &batch.Runner{
		Converter: &convert.Converter{
			Opts: convert.Options{
				InputDir:     scanRoot,
				OutputDir:    cfg.OutputDir,
				Format:       cfg.Format,
				Bitrate:      cfg.Bitrate,
				Level:        cfg.Level,
				Force:        cfg.Force,
				SkipMetadata: cfg.SkipMetadata,
				Lyrics:       tags.LyricsMode(cfg.Lyrics),
			},
			Sidecars: sidecars,
			Log:      log,
		},
		Workers: cfg.Workers,
		Log:     log,
	}

	_, sum := runner.Run(ctx, files, tracking)
	if err := runner.Tracking().Save(trackingPath); err != nil {
		log.Error().Err(err).Msg("failed to save tracking file")
	}

	log.Info().
		Int("converted", sum.Converted).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("conversion finished")
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", sum.Failed, sum.Total())
	}
	return nil
}

// gatherFiles resolves the sources either from the album database or by
// walking the input directory. The second return is the directory
// conversions mirror their layout from.
func gatherFiles(cfg cliconfig.Config) ([]media.File, string, error) {
	if cfg.DBPath == "" {
		files, err := media.FindFLACFiles(cfg.InputDir)
		return files, cfg.InputDir, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		abs, err := filepath.Abs(cfg.DBPath)
		if err != nil {
			return nil, "", err
		}
		baseDir = filepath.Dir(abs)
	}
	albums, err := library.Load(cfg.DBPath, baseDir, library.Filter{
		Artists: cfg.Artists,
		AlbumID: cfg.AlbumID,
		Year:    cfg.Year,
	})
	if err != nil {
		return nil, "", err
	}
	log := cliconfig.Logger(cfg.Verbose)
	return media.FindAlbumFiles(albums, baseDir, log), baseDir, nil
}

// runInteractive walks the selection wizard, then converts with the
// chosen settings.
func runInteractive(ctx context.Context, cfg cliconfig.Config) error {
	albums, err := library.Load(cfg.DBPath, cfg.BaseDir, library.Filter{})
	if err != nil {
		return err
	}
	if len(albums) == 0 {
		return fmt.Errorf("album database %s is empty", cfg.DBPath)
	}

	wizard := ui.NewWizard(library.Artists(albums))
	p := tea.NewProgram(wizard, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	wm, ok := finalModel.(ui.WizardModel)
	if !ok {
		return fmt.Errorf("unexpected model type from wizard")
	}
	sel := wm.Result()
	if sel.Cancelled {
		return nil
	}

	cfg.Format = sel.Format
	if sel.Bitrate != "" {
		cfg.Bitrate = sel.Bitrate
	}
	if sel.Format == "flac" {
		cfg.Level = sel.Level
	}
	cfg.Artists = strings.Join(sel.Artists, ",")

	if err := cfg.Validate(); err != nil {
		return err
	}
	return runConversion(ctx, cfg)
}
