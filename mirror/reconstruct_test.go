package mirror

import (
	"fmt"
	"strings"
	"testing"
)

// diffLines renders the messages the way `git log --reverse -p` shows a
// one-file-per-message archive.
func diffLines(messages ...string) []string {
	var lines []string
	for i, msg := range messages {
		body := strings.Split(strings.TrimSuffix(msg, "\n"), "\n")
		lines = append(lines,
			fmt.Sprintf("diff --git a/m/f%d b/m/f%d", i, i),
			"new file mode 100644",
			"index 0000000..1111111",
			"--- /dev/null",
			fmt.Sprintf("+++ b/m/f%d", i),
			fmt.Sprintf("@@ -0,0 +1,%d @@", len(body)),
		)
		for _, l := range body {
			lines = append(lines, "+"+l)
		}
	}
	return lines
}

func collect(t *testing.T, lines []string) []string {
	t.Helper()
	var out []string
	r := NewReconstructor(func(raw []byte) error {
		out = append(out, string(raw))
		return nil
	})
	for _, line := range lines {
		if err := r.Line(line); err != nil {
			t.Fatalf("Line(%q) error = %v", line, err)
		}
	}
	return out
}

func TestReconstructorSingleMessage(t *testing.T) {
	msg := "Message-Id: <m1@x>\n\nbody one\n"
	got := collect(t, diffLines(msg))
	if len(got) != 1 {
		t.Fatalf("emitted %d messages, want 1", len(got))
	}
	if got[0] != msg {
		t.Errorf("message = %q, want %q", got[0], msg)
	}
}

func TestReconstructorMultipleHunks(t *testing.T) {
	first := "Message-Id: <m1@x>\n\nbody one\n"
	second := "Message-Id: <m2@x>\n\nbody two\nsecond line\n"
	got := collect(t, diffLines(first, second))
	if len(got) != 2 {
		t.Fatalf("emitted %d messages, want 2", len(got))
	}
	if got[0] != first || got[1] != second {
		t.Errorf("messages = %q, want %q then %q", got, first, second)
	}
}

func TestReconstructorCountlessHunk(t *testing.T) {
	// "+1" without a count means one added line
	lines := []string{
		"@@ -0,0 +1 @@",
		"+only line",
	}
	got := collect(t, lines)
	if len(got) != 1 || got[0] != "only line\n" {
		t.Errorf("messages = %q, want [\"only line\\n\"]", got)
	}
}

func TestReconstructorIgnoresDeletionHunks(t *testing.T) {
	lines := []string{
		"@@ -1,2 +1,0 @@",
		"-gone",
		"-also gone",
		"@@ -0,0 +1,1 @@",
		"+kept",
	}
	got := collect(t, lines)
	if len(got) != 1 || got[0] != "kept\n" {
		t.Errorf("messages = %q, want only the added hunk", got)
	}
}

func TestReconstructorIgnoresNoise(t *testing.T) {
	lines := []string{
		"",
		"some unrelated output",
		"+stray plus line outside any hunk",
	}
	if got := collect(t, lines); len(got) != 0 {
		t.Errorf("emitted %d messages from noise, want 0", len(got))
	}
}

func TestReconstructorEmitError(t *testing.T) {
	boom := fmt.Errorf("boom")
	r := NewReconstructor(func(raw []byte) error { return boom })
	lines := diffLines("Message-Id: <m1@x>\n\nbody\n")
	var err error
	for _, line := range lines {
		if err = r.Line(line); err != nil {
			break
		}
	}
	if err != boom {
		t.Errorf("Line() error = %v, want the emit error", err)
	}
}
