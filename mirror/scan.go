// Package mirror is the engine that copies new mailing-list messages from
// the archive onto the pull request discussions they belong to, at most once
// per message.
package mirror

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SyntevoAlex/gitgitgadget/blobhash"
	"github.com/SyntevoAlex/gitgitgadget/mail"
	"github.com/SyntevoAlex/gitgitgadget/model"
	"github.com/SyntevoAlex/gitgitgadget/stats"
)

// StateKey is the reserved store key holding the scan cursor.
const StateKey = "git-mailing-list-mirror"

// DefaultPermalinkBase is where the tracked list's public archive lives.
const DefaultPermalinkBase = "https://lore.kernel.org/git"

// Archive is the append-only mailing-list repository.
type Archive interface {
	Head(ctx context.Context) (string, error)
	StreamDiff(ctx context.Context, rangeSpec string, fn func(line string) error) error
}

// Store is the versioned key→record mapping backing both the cursor and the
// per-message records.
type Store interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	ListKeys(ctx context.Context) (map[string]struct{}, error)
}

// Poster posts rendered comments to the code-hosting service.
type Poster interface {
	PostThreadComment(ctx context.Context, pullRequestURL, body string) (int64, error)
	PostReplyToComment(ctx context.Context, pullRequestURL string, commentID int64, body string) (int64, error)
	PostCommitComment(ctx context.Context, pullRequestURL, commitID, workDir, body string) (int64, error)
}

// Options wires a Mirror.
type Options struct {
	Archive Archive
	Store   Store
	Poster  Poster
	Logger  *slog.Logger

	// PermalinkBase is the public archive URL messages are linked under.
	PermalinkBase string
	// Epoch is a revision predating any tracked activity, used as the cursor
	// when no state exists yet. Empty scans the branch's full history.
	Epoch string
	// WorkDir is a local clone used to resolve commit ids for commit-scoped
	// comments. May be empty.
	WorkDir string
	// Filter, when set, limits delivery to pull request URLs it accepts.
	Filter func(pullRequestURL string) bool
	// DryRun logs what would be delivered without posting or writing state.
	DryRun bool
}

// Mirror runs scans. Calls to Scan must be serialized by the caller.
type Mirror struct {
	opts Options
}

// New validates the wiring and returns a Mirror.
func New(opts Options) (*Mirror, error) {
	if opts.Archive == nil || opts.Store == nil || opts.Poster == nil {
		return nil, fmt.Errorf("mirror needs an archive, a store and a poster")
	}
	if opts.PermalinkBase == "" {
		opts.PermalinkBase = DefaultPermalinkBase
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Mirror{opts: opts}, nil
}

// scanState is the per-scan working set: the digests known at scan start
// plus everything delivered during this scan.
type scanState struct {
	m       *Mirror
	store   Store
	known   map[string]struct{}
	summary stats.Summary
}

// Scan mirrors every message the archive gained since the last run and
// reports whether any new history was consumed. The cursor advances past
// messages whose delivery failed; only storage failures abort the scan with
// the cursor untouched, so the whole range is retried next time.
func (m *Mirror) Scan(ctx context.Context) (bool, error) {
	logger := m.opts.Logger

	mirrorState := model.MirrorState{LatestRevision: m.opts.Epoch}
	if _, err := m.opts.Store.Get(ctx, StateKey, &mirrorState); err != nil {
		return false, fmt.Errorf("load mirror state: %w", err)
	}

	head, err := m.opts.Archive.Head(ctx)
	if err != nil {
		return false, fmt.Errorf("resolve archive head: %w", err)
	}
	if mirrorState.LatestRevision == head {
		logger.Debug("no new messages", "head", head)
		return false, nil
	}

	known, err := m.opts.Store.ListKeys(ctx)
	if err != nil {
		return false, fmt.Errorf("list known digests: %w", err)
	}

	s := &scanState{m: m, store: m.opts.Store, known: known}

	rangeSpec := head
	if mirrorState.LatestRevision != "" {
		rangeSpec = mirrorState.LatestRevision + ".." + head
	}
	logger.Info("scanning archive", "range", rangeSpec)

	reconstructor := NewReconstructor(func(raw []byte) error {
		return s.handle(ctx, raw)
	})
	if err := m.opts.Archive.StreamDiff(ctx, rangeSpec, reconstructor.Line); err != nil {
		return false, fmt.Errorf("stream archive diff: %w", err)
	}

	mirrorState.LatestRevision = head
	if !m.opts.DryRun {
		if err := m.opts.Store.Set(ctx, StateKey, &mirrorState); err != nil {
			return false, fmt.Errorf("persist mirror state: %w", err)
		}
	}

	logger.Info("scan complete", append(s.summary.LogAttrs(), "head", head)...)
	return true, nil
}

func (s *scanState) handle(ctx context.Context, raw []byte) error {
	logger := s.m.opts.Logger
	s.summary.Scanned++

	messageID, references, err := mail.ParseIdentity(raw)
	if err != nil {
		logger.Warn("dropping unparsable message", "err", err)
		s.summary.ParseErrors++
		return nil
	}

	digest := blobhash.Sum(messageID)
	if _, ok := s.known[digest]; ok {
		s.summary.Duplicates++
		return nil
	}

	target, tracked, err := s.resolveTarget(ctx, references)
	if err != nil {
		return err
	}
	if !tracked {
		s.summary.Unrelated++
		return nil
	}

	if filter := s.m.opts.Filter; filter != nil && !filter(target.PullRequestURL) {
		s.summary.Filtered++
		return nil
	}

	parsed, err := mail.ParseMessage(raw)
	if err != nil {
		logger.Warn("dropping undecodable message", "messageID", messageID, "err", err)
		s.summary.ParseErrors++
		return nil
	}

	permalink := permalinkFor(s.m.opts.PermalinkBase, messageID)
	body := renderComment(permalink, parsed.FromDisplayName, parsed.DecodedBody)

	if s.m.opts.DryRun {
		logger.Info("dry-run: would mirror message",
			"messageID", messageID, "pr", target.PullRequestURL)
		s.known[digest] = struct{}{}
		s.summary.DryRun++
		return nil
	}

	commentID, err := s.deliver(ctx, target, body)
	if err != nil {
		// No retry queue: once the cursor moves past this message it is
		// skipped for good unless the archive re-adds it.
		logger.Error("delivery failed",
			"messageID", messageID, "pr", target.PullRequestURL, "err", err)
		s.summary.DeliveryErrors++
		s.summary.LastError = err
		return nil
	}

	record := model.MailRecord{
		MessageID:      messageID,
		PullRequestURL: target.PullRequestURL,
		IssueCommentID: commentID,
	}
	if err := s.store.Set(ctx, messageID, &record); err != nil {
		return fmt.Errorf("record mirrored message %q: %w", messageID, err)
	}
	// Later messages in this scan that reference messageID must resolve
	// without re-reading storage.
	s.known[digest] = struct{}{}
	s.summary.Delivered++

	logger.Info("mirrored message",
		"messageID", messageID, "pr", target.PullRequestURL, "commentID", commentID)
	return nil
}

// deliver posts via exactly one mode: a reply when a comment id is known,
// else a commit-scoped comment, else a plain thread comment.
func (s *scanState) deliver(ctx context.Context, target model.MailRecord, body string) (int64, error) {
	poster := s.m.opts.Poster
	switch {
	case target.IssueCommentID != 0:
		return poster.PostReplyToComment(ctx, target.PullRequestURL, target.IssueCommentID, body)
	case target.OriginalCommit != "":
		return poster.PostCommitComment(ctx, target.PullRequestURL, target.OriginalCommit, s.m.opts.WorkDir, body)
	default:
		return poster.PostThreadComment(ctx, target.PullRequestURL, body)
	}
}
