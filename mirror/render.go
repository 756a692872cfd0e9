package mirror

import (
	"fmt"
	"net/url"
	"strings"
)

// fallbackAuthor labels messages whose From header carries no display name.
const fallbackAuthor = "Somebody"

// renderComment formats a mirrored message for the pull request discussion:
// an attribution line linking to the public archive, a hint where to reply,
// and the decoded body fenced as a literal block. An empty body renders no
// block at all.
func renderComment(permalink, author, body string) string {
	if author == "" {
		author = fallbackAuthor
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[On the mailing list](%s), %s wrote ([reply to this](%s)):\n", permalink, author, permalink)
	if body != "" {
		sb.WriteString("\n```\n")
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteString("```\n")
	}
	return sb.String()
}

// permalinkFor builds the stable public link for a message id, following the
// lore-style "<base>/<message-id>/" convention.
func permalinkFor(base, messageID string) string {
	return strings.TrimSuffix(base, "/") + "/" + url.PathEscape(messageID) + "/"
}
