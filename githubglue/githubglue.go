// Package githubglue posts mirrored messages to GitHub pull requests.
package githubglue

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/SyntevoAlex/gitgitgadget/gitcmd"
)

var pullRequestURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)

type pullRequestRef struct {
	owner  string
	repo   string
	number int
}

func parsePullRequestURL(pullRequestURL string) (pullRequestRef, error) {
	m := pullRequestURLPattern.FindStringSubmatch(strings.TrimSuffix(pullRequestURL, "/"))
	if m == nil {
		return pullRequestRef{}, fmt.Errorf("unsupported pull request URL: %s", pullRequestURL)
	}
	number, err := strconv.Atoi(m[3])
	if err != nil {
		return pullRequestRef{}, fmt.Errorf("pull request number in %s: %w", pullRequestURL, err)
	}
	return pullRequestRef{owner: m[1], repo: m[2], number: number}, nil
}

// Client wraps the GitHub REST API for the three comment modes the mirror
// uses.
type Client struct {
	gh *github.Client
}

// New creates a client. An empty token yields unauthenticated requests,
// which is only good for testing against a stub.
func New(ctx context.Context, token string) *Client {
	var httpClient *http.Client
	if token != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, source)
	}
	return &Client{gh: github.NewClient(httpClient)}
}

// PostThreadComment adds a comment to the pull request conversation.
func (c *Client) PostThreadComment(ctx context.Context, pullRequestURL, body string) (int64, error) {
	ref, err := parsePullRequestURL(pullRequestURL)
	if err != nil {
		return 0, err
	}
	comment, _, err := c.gh.Issues.CreateComment(ctx, ref.owner, ref.repo, ref.number,
		&github.IssueComment{Body: github.String(body)})
	if err != nil {
		return 0, fmt.Errorf("post thread comment on %s: %w", pullRequestURL, err)
	}
	return comment.GetID(), nil
}

// PostReplyToComment answers a specific review comment of the pull request.
func (c *Client) PostReplyToComment(ctx context.Context, pullRequestURL string, commentID int64, body string) (int64, error) {
	ref, err := parsePullRequestURL(pullRequestURL)
	if err != nil {
		return 0, err
	}
	comment, _, err := c.gh.PullRequests.CreateCommentInReplyTo(ctx, ref.owner, ref.repo, ref.number, body, commentID)
	if err != nil {
		return 0, fmt.Errorf("reply to comment %d on %s: %w", commentID, pullRequestURL, err)
	}
	return comment.GetID(), nil
}

// PostCommitComment attaches a comment to the commit a patch corresponds to.
// When workDir names a local clone, an abbreviated commit id is resolved to
// the full object id first.
func (c *Client) PostCommitComment(ctx context.Context, pullRequestURL, commitID, workDir, body string) (int64, error) {
	ref, err := parsePullRequestURL(pullRequestURL)
	if err != nil {
		return 0, err
	}

	if workDir != "" && len(commitID) < 40 {
		if git, err := gitcmd.New(workDir); err == nil {
			if full, err := git.Output(ctx, "rev-parse", commitID+"^{commit}"); err == nil {
				commitID = full
			}
		}
	}

	comment, _, err := c.gh.Repositories.CreateComment(ctx, ref.owner, ref.repo, commitID,
		&github.RepositoryComment{Body: github.String(body)})
	if err != nil {
		return 0, fmt.Errorf("post commit comment on %s for %s: %w", pullRequestURL, commitID, err)
	}
	return comment.GetID(), nil
}
