package discovery

import (
	"path/filepath"
	"strings"

	"pwt/internal/domain"
)

// Filter selects workflows by name pattern and tags
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// MatchName reports whether name matches pattern.
// Patterns with * or ? are wildcard patterns like "*echo*"; anything else is a
// plain substring match. An empty pattern matches everything.
func (f *Filter) MatchName(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// filepath.Match treats the whole name as one path element; fall back to
	// matching the literal parts in order for names containing separators.
	if strings.Contains(pattern, "?") {
		return false
	}
	rest := name
	hasPart := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		hasPart = true
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return hasPart
}

// FilterByName keeps the workflows whose name matches pattern
func (f *Filter) FilterByName(workflows []domain.Workflow, pattern string) []domain.Workflow {
	if pattern == "" {
		return workflows
	}

	var filtered []domain.Workflow
	for _, wf := range workflows {
		if f.MatchName(wf.Name, pattern) {
			filtered = append(filtered, wf)
		}
	}
	return filtered
}

// FilterByTags keeps the workflows carrying at least one of tags.
// No tags keeps everything.
func (f *Filter) FilterByTags(workflows []domain.Workflow, tags []string) []domain.Workflow {
	if len(tags) == 0 {
		return workflows
	}

	var filtered []domain.Workflow
	for _, wf := range workflows {
		for _, tag := range tags {
			if wf.HasTag(tag) {
				filtered = append(filtered, wf)
				break
			}
		}
	}
	return filtered
}

// Apply runs the name filter and then the tag filter
func (f *Filter) Apply(workflows []domain.Workflow, pattern string, tags []string) []domain.Workflow {
	return f.FilterByTags(f.FilterByName(workflows, pattern), tags)
}
