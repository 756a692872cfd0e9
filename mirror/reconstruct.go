package mirror

import (
	"bytes"
	"regexp"
	"strconv"
)

// hunkHeader matches a unified diff hunk header and captures the added-line
// count. A missing ",count" on the added side means a single line.
var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+\d+(?:,(\d+))? @@`)

// Reconstructor reassembles newly added messages from a streamed diff of the
// archive. The archive stores one file per message, so the added lines of a
// hunk are always one complete message. Two states: seeking the next hunk
// header, or collecting a known number of added lines.
type Reconstructor struct {
	emit      func(raw []byte) error
	remaining int
	buf       bytes.Buffer
}

// NewReconstructor returns a reconstructor that calls emit with each
// reassembled raw message.
func NewReconstructor(emit func(raw []byte) error) *Reconstructor {
	return &Reconstructor{emit: emit}
}

// Line consumes one line of diff output. Errors from emit abort the stream.
func (r *Reconstructor) Line(line string) error {
	if m := hunkHeader.FindStringSubmatch(line); m != nil {
		count := 1
		if m[1] != "" {
			count, _ = strconv.Atoi(m[1])
		}
		r.remaining = 0
		if count > 0 {
			r.buf.Reset()
			r.remaining = count
		}
		return nil
	}

	if r.remaining <= 0 {
		return nil
	}

	// strip the diff marker column
	if len(line) > 0 {
		r.buf.WriteString(line[1:])
	}
	r.buf.WriteByte('\n')

	r.remaining--
	if r.remaining == 0 {
		raw := make([]byte, r.buf.Len())
		copy(raw, r.buf.Bytes())
		return r.emit(raw)
	}
	return nil
}
