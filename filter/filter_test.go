package filter

import (
	"testing"
)

func TestFilter_Allows_IncludeMode(t *testing.T) {
	f, err := New(Options{IncludePR: []string{`/pull/5$`}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !f.Allows("https://github.com/example/repo/pull/5") {
		t.Error("Expected pull request 5 to be allowed")
	}
	if f.Allows("https://github.com/example/repo/pull/6") {
		t.Error("Expected pull request 6 to be filtered out")
	}
}

func TestFilter_Allows_ExcludeMode(t *testing.T) {
	f, err := New(Options{ExcludePR: []string{`example/noisy-repo/`}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !f.Allows("https://github.com/example/repo/pull/5") {
		t.Error("Expected unrelated repo to be allowed")
	}
	if f.Allows("https://github.com/example/noisy-repo/pull/1") {
		t.Error("Expected excluded repo to be filtered out")
	}
}

func TestFilter_MutuallyExclusive(t *testing.T) {
	_, err := New(Options{IncludePR: []string{"a"}, ExcludePR: []string{"b"}})
	if err == nil {
		t.Error("Expected error when both include and exclude are specified")
	}
}

func TestFilter_NoPatterns(t *testing.T) {
	f, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if f.Active() {
		t.Error("Expected empty filter to be inactive")
	}
	if !f.Allows("https://github.com/example/repo/pull/5") {
		t.Error("Expected everything to pass an inactive filter")
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	if _, err := New(Options{IncludePR: []string{"("}}); err == nil {
		t.Error("Expected error for an invalid regex")
	}
}
