package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/SyntevoAlex/gitgitgadget/blobhash"
	"github.com/SyntevoAlex/gitgitgadget/mail"
	"github.com/SyntevoAlex/gitgitgadget/progress"
)

// messageDir is where backfilled messages land inside the archive work tree.
const messageDir = "m"

// ImportMbox appends every message of an mbox snapshot to the archive, one
// file per message named by the blob id of its message id, committing every
// batchSize messages. Messages that cannot be parsed or that already exist in
// the work tree are skipped. Returns the number of imported messages.
func (a *Archive) ImportMbox(ctx context.Context, path string, batchSize int, logLevel string) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	total, err := countMessages(path)
	if err != nil {
		return 0, err
	}

	bar := progress.New(total, logLevel)
	defer bar.Stop()

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(filepath.Join(a.git.WorkDir(), messageDir), 0o755); err != nil {
		return 0, fmt.Errorf("create message directory: %w", err)
	}

	reader := mboxlib.NewReader(file)
	imported := 0
	pending := 0

	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			return imported, err
		}

		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return imported, fmt.Errorf("mbox message %d: %w", idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return imported, fmt.Errorf("mbox message %d read: %w", idx, err)
		}

		messageID, _, err := mail.ParseIdentity(raw)
		if err != nil {
			a.logger.Warn("skipping unparsable mbox message", "index", idx, "err", err)
			bar.Fail(err)
			bar.Increment("")
			continue
		}

		name := filepath.Join(messageDir, blobhash.Sum(messageID))
		target := filepath.Join(a.git.WorkDir(), name)
		if _, err := os.Stat(target); err == nil {
			bar.Increment(messageID)
			continue
		}
		if err := os.WriteFile(target, raw, 0o644); err != nil {
			return imported, fmt.Errorf("write message %s: %w", messageID, err)
		}
		if err := a.git.Run(ctx, "add", "--", name); err != nil {
			return imported, err
		}

		imported++
		pending++
		bar.Increment(messageID)

		if pending >= batchSize {
			if err := a.commitBatch(ctx, pending); err != nil {
				return imported, err
			}
			pending = 0
		}
	}

	if pending > 0 {
		if err := a.commitBatch(ctx, pending); err != nil {
			return imported, err
		}
	}

	a.logger.Info("mbox import finished", "path", path, "total", total, "imported", imported)
	return imported, nil
}

func (a *Archive) commitBatch(ctx context.Context, count int) error {
	message := fmt.Sprintf("Import %d messages", count)
	return a.git.Run(ctx, "commit", "-q", "-m", message)
}

func countMessages(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	reader := mboxlib.NewReader(file)
	count := 0
	for {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, fmt.Errorf("count mbox messages: %w", err)
		}
		if _, err := io.Copy(io.Discard, msgReader); err != nil {
			count++
			continue
		}
		count++
	}
}
