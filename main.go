package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/SyntevoAlex/gitgitgadget/archive"
	"github.com/SyntevoAlex/gitgitgadget/config"
	"github.com/SyntevoAlex/gitgitgadget/filter"
	"github.com/SyntevoAlex/gitgitgadget/gitcmd"
	"github.com/SyntevoAlex/gitgitgadget/githubglue"
	"github.com/SyntevoAlex/gitgitgadget/mirror"
	"github.com/SyntevoAlex/gitgitgadget/runner"
	"github.com/SyntevoAlex/gitgitgadget/state"
)

var rootCmd = &cobra.Command{
	Use:   "gitgitgadget-mirror",
	Short: "Mirror new mailing-list messages onto their pull request discussions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd)
		if err != nil {
			return err
		}

		logger, cleanup, err := setupLogger(cfg.LogLevel, cfg.LogDir)
		if err != nil {
			return err
		}
		defer func() {
			_ = cleanup()
		}()

		slog.SetDefault(logger)
		logger.Info("starting mirror",
			"archive", cfg.ArchiveDir, "branch", cfg.Branch, "notesRef", cfg.NotesRef, "dryRun", cfg.DryRun)

		return run(cmd, cfg, logger)
	},
}

func main() {
	if err := config.RegisterFlags(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register CLI flags: %v\n", err)
		os.Exit(1)
	}
	registerBackfill(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, cfg config.Config, logger *slog.Logger) error {
	git, err := gitcmd.New(cfg.ArchiveDir)
	if err != nil {
		return err
	}

	scope, err := filter.New(filter.Options{IncludePR: cfg.IncludePR, ExcludePR: cfg.ExcludePR})
	if err != nil {
		return err
	}

	opts := mirror.Options{
		Archive:       archive.New(git, cfg.Branch, logger),
		Store:         state.NewNotes(git, cfg.NotesRef),
		Poster:        githubglue.New(cmd.Context(), cfg.GitHubToken),
		Logger:        logger,
		PermalinkBase: cfg.PermalinkBase,
		Epoch:         cfg.Epoch,
		WorkDir:       cfg.WorkDir,
		DryRun:        cfg.DryRun,
	}
	if scope.Active() {
		opts.Filter = scope.Allows
	}

	m, err := mirror.New(opts)
	if err != nil {
		return err
	}

	if cfg.WatchInterval > 0 {
		loop, err := runner.New(m.Scan, cfg.WatchInterval, logger)
		if err != nil {
			return err
		}
		return loop.Run(cmd.Context())
	}

	advanced, err := m.Scan(cmd.Context())
	if err != nil {
		return err
	}
	if !advanced {
		logger.Info("archive has not moved")
	}
	return nil
}

func setupLogger(logLevel, logDir string) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch logLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(logDir, fmt.Sprintf("mirror-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler), cleanup, nil
}
