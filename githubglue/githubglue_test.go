package githubglue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v66/github"
)

func TestParsePullRequestURL(t *testing.T) {
	tests := []struct {
		in      string
		owner   string
		repo    string
		number  int
		wantErr bool
	}{
		{in: "https://github.com/example/repo/pull/5", owner: "example", repo: "repo", number: 5},
		{in: "https://github.com/example/repo/pull/5/", owner: "example", repo: "repo", number: 5},
		{in: "https://github.com/gitgitgadget/git/pull/1234", owner: "gitgitgadget", repo: "git", number: 1234},
		{in: "https://github.com/example/repo/issues/5", wantErr: true},
		{in: "https://example.com/example/repo/pull/5", wantErr: true},
		{in: "not a url", wantErr: true},
	}

	for _, tt := range tests {
		ref, err := parsePullRequestURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parsePullRequestURL(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePullRequestURL(%q) error = %v", tt.in, err)
			continue
		}
		if ref.owner != tt.owner || ref.repo != tt.repo || ref.number != tt.number {
			t.Errorf("parsePullRequestURL(%q) = %+v", tt.in, ref)
		}
	}
}

// stubClient points a Client at a local test server.
func stubClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(context.Background(), "")
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	client.gh.BaseURL = base
	return client
}

func TestPostThreadComment(t *testing.T) {
	var gotPath string
	client := stubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		var payload github.IssueComment
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if payload.GetBody() == "" {
			t.Error("posted an empty comment body")
		}
		fmt.Fprint(w, `{"id": 321}`)
	}))

	id, err := client.PostThreadComment(context.Background(),
		"https://github.com/example/repo/pull/5", "mirrored body")
	if err != nil {
		t.Fatalf("PostThreadComment() error = %v", err)
	}
	if id != 321 {
		t.Errorf("comment id = %d, want 321", id)
	}
	if gotPath != "POST /repos/example/repo/issues/5/comments" {
		t.Errorf("request = %q", gotPath)
	}
}

func TestPostReplyToComment(t *testing.T) {
	var gotPath string
	client := stubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		fmt.Fprint(w, `{"id": 654}`)
	}))

	id, err := client.PostReplyToComment(context.Background(),
		"https://github.com/example/repo/pull/5", 42, "reply body")
	if err != nil {
		t.Fatalf("PostReplyToComment() error = %v", err)
	}
	if id != 654 {
		t.Errorf("comment id = %d, want 654", id)
	}
	if gotPath != "POST /repos/example/repo/pulls/5/comments" {
		t.Errorf("request = %q", gotPath)
	}
}

func TestPostCommitComment(t *testing.T) {
	const sha = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	var gotPath string
	client := stubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		fmt.Fprint(w, `{"id": 987}`)
	}))

	id, err := client.PostCommitComment(context.Background(),
		"https://github.com/example/repo/pull/5", sha, "", "commit body")
	if err != nil {
		t.Fatalf("PostCommitComment() error = %v", err)
	}
	if id != 987 {
		t.Errorf("comment id = %d, want 987", id)
	}
	if gotPath != "POST /repos/example/repo/commits/"+sha+"/comments" {
		t.Errorf("request = %q", gotPath)
	}
}

func TestPostThreadCommentBadURL(t *testing.T) {
	client := New(context.Background(), "")
	if _, err := client.PostThreadComment(context.Background(), "nonsense", "body"); err == nil {
		t.Error("expected error for an unparsable pull request URL")
	}
}
