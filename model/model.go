package model

// MailRecord links one archived mailing-list message to the pull request
// discussion it was mirrored onto. Records are stored in the notes-backed
// store under the blob id of their own message id and looked up via the blob
// ids of later messages' reference headers.
type MailRecord struct {
	MessageID      string `json:"messageID"`
	PullRequestURL string `json:"pullRequestURL"`
	OriginalCommit string `json:"originalCommit,omitempty"`
	IssueCommentID int64  `json:"issueCommentId,omitempty"`
}

// MirrorState is the scan cursor: the last archive revision that has been
// fully processed. It only ever moves forward along the tracked branch.
type MirrorState struct {
	LatestRevision string `json:"latestRevision,omitempty"`
}

// ParsedMessage is the decoded view of one raw message. It is never
// persisted.
type ParsedMessage struct {
	MessageID       string
	References      []string
	Headers         map[string][]string
	DecodedBody     string
	FromDisplayName string
}
