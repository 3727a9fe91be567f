// Command holdtalk is a terminal voice-note recorder: hold the pad with the
// mouse to record, slide up to lock, slide left to cancel.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwulff/holdtalk/internal/app"
	"github.com/jwulff/holdtalk/internal/artifact"
	"github.com/jwulff/holdtalk/internal/audio"
	"github.com/jwulff/holdtalk/internal/config"
	"github.com/jwulff/holdtalk/internal/db"
	"github.com/jwulff/holdtalk/internal/feedback"
	"github.com/jwulff/holdtalk/internal/logging"
	"github.com/jwulff/holdtalk/internal/storage"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to holdtalk.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "holdtalk: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		// recording still works without the index
		logger.Warn("notes index unavailable", zap.String("path", cfg.Storage.DBPath), zap.Error(err))
	} else {
		defer store.Close()
	}

	files := storage.Local{}
	m := app.New(app.Options{
		Capture:      cfg.CaptureSettings(),
		Recorder:     audio.NewPortAudio(logger),
		Finalizer:    artifact.NewFinalizer(files, cfg.Storage.NotesDir, logger),
		Audio:        audio.Profile(cfg.Storage.CacheDir),
		Files:        files,
		Store:        store,
		Logger:       logger,
		Pulser:       feedback.NewBell(os.Stderr),
		CellWidthPx:  cfg.Terminal.CellWidthPx,
		CellHeightPx: cfg.Terminal.CellHeightPx,
	})

	logger.Info("starting", zap.String("notes_dir", cfg.Storage.NotesDir))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
