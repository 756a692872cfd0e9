package state

import (
	"context"
	"os/exec"
	"testing"

	"github.com/SyntevoAlex/gitgitgadget/blobhash"
	"github.com/SyntevoAlex/gitgitgadget/gitcmd"
	"github.com/SyntevoAlex/gitgitgadget/model"
)

const testRef = "refs/notes/mail-to-pr-test"

func newTestNotes(t *testing.T) *Notes {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test User"},
	} {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v (%s)", args, err, out)
		}
	}

	git, err := gitcmd.New(dir)
	if err != nil {
		t.Fatalf("gitcmd.New() error = %v", err)
	}
	return NewNotes(git, testRef)
}

func TestGetMissing(t *testing.T) {
	notes := newTestNotes(t)
	ctx := context.Background()

	var record model.MailRecord
	found, err := notes.Get(ctx, "nobody@example.com", &record)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() reported a record in an empty store")
	}
}

func TestSetGetRoundtrip(t *testing.T) {
	notes := newTestNotes(t)
	ctx := context.Background()

	want := model.MailRecord{
		MessageID:      "mid@example.com",
		PullRequestURL: "https://github.com/example/repo/pull/5",
		IssueCommentID: 42,
	}
	if err := notes.Set(ctx, want.MessageID, &want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got model.MailRecord
	found, err := notes.Get(ctx, want.MessageID, &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() did not find the stored record")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestSetOverwrites(t *testing.T) {
	notes := newTestNotes(t)
	ctx := context.Background()

	record := model.MailRecord{MessageID: "mid@example.com", PullRequestURL: "https://github.com/example/repo/pull/1"}
	if err := notes.Set(ctx, record.MessageID, &record); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	record.IssueCommentID = 7
	if err := notes.Set(ctx, record.MessageID, &record); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}

	var got model.MailRecord
	if _, err := notes.Get(ctx, record.MessageID, &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.IssueCommentID != 7 {
		t.Errorf("IssueCommentID = %d, want 7", got.IssueCommentID)
	}
}

func TestListKeys(t *testing.T) {
	notes := newTestNotes(t)
	ctx := context.Background()

	keys, err := notes.ListKeys(ctx)
	if err != nil {
		t.Fatalf("ListKeys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("ListKeys() on empty store = %v, want empty", keys)
	}

	for _, id := range []string{"a@example.com", "b@example.com"} {
		record := model.MailRecord{MessageID: id, PullRequestURL: "https://github.com/example/repo/pull/9"}
		if err := notes.Set(ctx, id, &record); err != nil {
			t.Fatalf("Set(%s) error = %v", id, err)
		}
	}

	keys, err = notes.ListKeys(ctx)
	if err != nil {
		t.Fatalf("ListKeys() error = %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("ListKeys() = %d keys, want 2", len(keys))
	}
	if _, ok := keys[blobhash.Sum("a@example.com")]; !ok {
		t.Error("ListKeys() is missing the digest of a@example.com")
	}
}
