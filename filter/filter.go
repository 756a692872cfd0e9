// Package filter scopes a mirror run to a subset of pull requests.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Options captures the scoping configuration.
type Options struct {
	IncludePR []string
	ExcludePR []string
}

// Filter holds compiled regex patterns matched against resolved pull request
// URLs. Include and exclude modes are mutually exclusive.
type Filter struct {
	includeMode bool
	excludeMode bool
	include     []*regexp.Regexp
	exclude     []*regexp.Regexp
}

// New creates a new Filter from the provided options.
func New(opts Options) (*Filter, error) {
	include, err := compilePatterns(opts.IncludePR)
	if err != nil {
		return nil, fmt.Errorf("compile include-pr pattern: %w", err)
	}
	exclude, err := compilePatterns(opts.ExcludePR)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-pr pattern: %w", err)
	}

	if len(include) > 0 && len(exclude) > 0 {
		return nil, fmt.Errorf("include and exclude filters are mutually exclusive")
	}

	return &Filter{
		includeMode: len(include) > 0,
		excludeMode: len(exclude) > 0,
		include:     include,
		exclude:     exclude,
	}, nil
}

// Active reports whether any pattern is configured.
func (f *Filter) Active() bool {
	return f.includeMode || f.excludeMode
}

// Allows returns true if deliveries to the given pull request URL pass the
// filter criteria.
func (f *Filter) Allows(pullRequestURL string) bool {
	if f.includeMode {
		return matchAny(f.include, pullRequestURL)
	}
	if f.excludeMode && matchAny(f.exclude, pullRequestURL) {
		return false
	}
	return true
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
