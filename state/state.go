// Package state is the durable key→record store, kept in a git notes ref of
// the archive repository so writes ride on the archive's own versioning.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SyntevoAlex/gitgitgadget/blobhash"
	"github.com/SyntevoAlex/gitgitgadget/gitcmd"
)

// Notes stores JSON records as git notes. A key is materialized as the blob
// containing key plus "\n" (hence blobhash covering the trailing newline) and
// the record is the note attached to that blob. Listing the notes ref
// therefore enumerates the digests of every key ever stored.
type Notes struct {
	git *gitcmd.Runner
	ref string
}

// NewNotes binds a store to the given notes ref, e.g. "refs/notes/mail-to-pr".
func NewNotes(git *gitcmd.Runner, ref string) *Notes {
	return &Notes{git: git, ref: ref}
}

// Get decodes the record stored under key into v. The second return is false
// when no record exists; errors are reserved for real storage failures.
func (n *Notes) Get(ctx context.Context, key string, v any) (bool, error) {
	out, err := n.git.Output(ctx, "notes", "--ref", n.ref, "show", blobhash.Sum(key))
	if err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("read record %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		return false, fmt.Errorf("decode record %q: %w", key, err)
	}
	return true, nil
}

// Set stores v as the record for key, replacing any previous record.
func (n *Notes) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}

	// The blob the digest names must exist before a note can hang on it.
	oid, err := n.git.OutputWithStdin(ctx, key+"\n", "hash-object", "-w", "--stdin")
	if err != nil {
		return fmt.Errorf("write key blob for %q: %w", key, err)
	}
	if oid != blobhash.Sum(key) {
		return fmt.Errorf("key blob id %s does not match digest of %q", oid, key)
	}

	if err := n.git.Run(ctx, "notes", "--ref", n.ref, "add", "-f", "-m", string(data), oid); err != nil {
		return fmt.Errorf("write record %q: %w", key, err)
	}
	return nil
}

// ListKeys returns the digests of all stored keys. An absent notes ref lists
// as an empty store.
func (n *Notes) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	out, err := n.git.Output(ctx, "notes", "--ref", n.ref, "list")
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	keys := make(map[string]struct{})
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 {
			keys[fields[1]] = struct{}{}
		}
	}
	return keys, nil
}

func isMissing(err error) bool {
	var gitErr *gitcmd.Error
	if !errors.As(err, &gitErr) {
		return false
	}
	return strings.Contains(gitErr.Stderr, "no note found") ||
		strings.Contains(gitErr.Stderr, "failed to resolve") ||
		strings.Contains(gitErr.Stderr, "unknown object")
}
