package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Config captures all command-line options required to run the mirror.
type Config struct {
	ArchiveDir    string
	Branch        string
	NotesRef      string
	Epoch         string
	PermalinkBase string
	GitHubToken   string
	WorkDir       string
	IncludePR     []string
	ExcludePR     []string
	WatchInterval time.Duration
	DryRun        bool
	LogLevel      string
	LogDir        string
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.String("archive", "", "Path to the local clone of the mailing-list archive")
	flags.String("branch", "master", "Archive branch to track")
	flags.String("notes-ref", "refs/notes/mail-to-pr", "Notes ref holding mirror records and the cursor")
	flags.String("epoch", "", "Revision predating tracked activity, used when no cursor exists yet")
	flags.String("permalink-base", "https://lore.kernel.org/git", "Public archive base URL for message permalinks")
	flags.String("github-token", "", "GitHub API token (falls back to GITHUB_TOKEN env var)")
	flags.String("work-dir", "", "Local clone for resolving commit ids of commit-scoped comments")
	flags.StringArray("include-pr", nil, "Regex allow-list applied to pull request URLs (mutually exclusive with --exclude-pr)")
	flags.StringArray("exclude-pr", nil, "Regex block-list applied to pull request URLs (mutually exclusive with --include-pr)")
	flags.Duration("watch", 0, "Keep scanning at this interval; 0 runs a single scan")
	flags.Bool("dry-run", false, "Log what would be mirrored without posting or writing state")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (empty logs to stdout only)")

	return cmd.MarkFlagRequired("archive")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	archiveDir, err := flags.GetString("archive")
	if err != nil {
		return Config{}, err
	}
	branch, err := flags.GetString("branch")
	if err != nil {
		return Config{}, err
	}
	notesRef, err := flags.GetString("notes-ref")
	if err != nil {
		return Config{}, err
	}
	epoch, err := flags.GetString("epoch")
	if err != nil {
		return Config{}, err
	}
	permalinkBase, err := flags.GetString("permalink-base")
	if err != nil {
		return Config{}, err
	}
	githubToken, err := flags.GetString("github-token")
	if err != nil {
		return Config{}, err
	}
	workDir, err := flags.GetString("work-dir")
	if err != nil {
		return Config{}, err
	}
	includePR, err := flags.GetStringArray("include-pr")
	if err != nil {
		return Config{}, err
	}
	excludePR, err := flags.GetStringArray("exclude-pr")
	if err != nil {
		return Config{}, err
	}
	watchInterval, err := flags.GetDuration("watch")
	if err != nil {
		return Config{}, err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}

	if githubToken == "" {
		githubToken = os.Getenv("GITHUB_TOKEN")
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	cfg := Config{
		ArchiveDir:    filepath.Clean(archiveDir),
		Branch:        branch,
		NotesRef:      notesRef,
		Epoch:         epoch,
		PermalinkBase: permalinkBase,
		GitHubToken:   githubToken,
		WorkDir:       workDir,
		IncludePR:     includePR,
		ExcludePR:     excludePR,
		WatchInterval: watchInterval,
		DryRun:        dryRun,
		LogLevel:      logLevel,
		LogDir:        logDir,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.ArchiveDir == "" {
		return fmt.Errorf("--archive is required")
	}
	if cfg.Branch == "" {
		return fmt.Errorf("--branch must not be empty")
	}
	if !strings.HasPrefix(cfg.NotesRef, "refs/notes/") {
		return fmt.Errorf("--notes-ref must live under refs/notes/, got %q", cfg.NotesRef)
	}
	if cfg.GitHubToken == "" && !cfg.DryRun {
		return fmt.Errorf("a GitHub token must be provided via --github-token or GITHUB_TOKEN unless --dry-run is set")
	}
	if len(cfg.IncludePR) > 0 && len(cfg.ExcludePR) > 0 {
		return fmt.Errorf("--include-pr and --exclude-pr are mutually exclusive")
	}
	if cfg.WatchInterval < 0 {
		return fmt.Errorf("--watch must not be negative")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}
