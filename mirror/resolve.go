package mirror

import (
	"context"
	"fmt"

	"github.com/SyntevoAlex/gitgitgadget/blobhash"
	"github.com/SyntevoAlex/gitgitgadget/model"
)

// mergeTargets folds candidate into best without discarding anything already
// known: the pull request URL comes from the first record carrying one, and
// originalCommit/issueCommentId are only adopted while unset. Records written
// for cover letters never carry an originalCommit, so a commit id can only be
// inherited through a reference to an actual patch.
func mergeTargets(best, candidate model.MailRecord) model.MailRecord {
	if best.PullRequestURL == "" {
		best.PullRequestURL = candidate.PullRequestURL
	}
	if best.OriginalCommit == "" {
		best.OriginalCommit = candidate.OriginalCommit
	}
	if best.IssueCommentID == 0 {
		best.IssueCommentID = candidate.IssueCommentID
	}
	return best
}

// resolveTarget merges the records of all known references into the most
// complete delivery target. The second return is false when the message does
// not belong to any tracked thread.
func (s *scanState) resolveTarget(ctx context.Context, references []string) (model.MailRecord, bool, error) {
	var target model.MailRecord
	found := false

	for _, ref := range references {
		if _, ok := s.known[blobhash.Sum(ref)]; !ok {
			continue
		}
		var record model.MailRecord
		ok, err := s.store.Get(ctx, ref, &record)
		if err != nil {
			return model.MailRecord{}, false, fmt.Errorf("load record for %q: %w", ref, err)
		}
		if !ok {
			continue
		}
		if !found {
			target = record
			found = true
		} else {
			target = mergeTargets(target, record)
		}
	}

	if !found || target.PullRequestURL == "" {
		return model.MailRecord{}, false, nil
	}
	return target, true, nil
}
