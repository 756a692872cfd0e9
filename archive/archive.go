// Package archive reads the append-only mailing-list repository: one commit
// per message, one file per message.
package archive

import (
	"context"
	"log/slog"

	"github.com/SyntevoAlex/gitgitgadget/gitcmd"
)

// Archive wraps a local clone of the mailing-list repository.
type Archive struct {
	git    *gitcmd.Runner
	branch string
	logger *slog.Logger
}

// New binds an archive to the given git runner and tracked branch.
func New(git *gitcmd.Runner, branch string, logger *slog.Logger) *Archive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{git: git, branch: branch, logger: logger}
}

// Head resolves the current tip of the tracked branch.
func (a *Archive) Head(ctx context.Context) (string, error) {
	return a.git.Output(ctx, "rev-parse", a.branch)
}

// StreamDiff streams the patch for rangeSpec line by line, oldest commit
// first. Because the archive only ever adds one file per commit, the added
// lines of each hunk are exactly one new message.
func (a *Archive) StreamDiff(ctx context.Context, rangeSpec string, fn func(line string) error) error {
	return a.git.StreamLines(ctx, fn,
		"log", "--reverse", "-p", "--no-color", "--format=tformat:", rangeSpec)
}
