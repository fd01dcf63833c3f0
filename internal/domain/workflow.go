package domain

// Workflow describes one external command and the outcomes expected from it.
// It is built by the discovery loader and is read-only afterwards.
type Workflow struct {
	Name     string            `yaml:"name" json:"name"`
	Command  string            `yaml:"command" json:"command"`
	Tags     []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	ExitCode int               `yaml:"exit_code" json:"exit_code"`
	Stdout   ContentRules      `yaml:"stdout,omitempty" json:"stdout"`
	Stderr   ContentRules      `yaml:"stderr,omitempty" json:"stderr"`
	Files    []FileExpectation `yaml:"files,omitempty" json:"files,omitempty"`

	// Source is the test file the workflow was loaded from.
	Source string `yaml:"-" json:"source,omitempty"`
}

// ContentRules lists substrings that must and must not appear in a text stream.
type ContentRules struct {
	Contains       []string `yaml:"contains,omitempty" json:"contains,omitempty"`
	MustNotContain []string `yaml:"must_not_contain,omitempty" json:"must_not_contain,omitempty"`
}

// Empty reports whether no rule is declared.
func (c ContentRules) Empty() bool {
	return len(c.Contains) == 0 && len(c.MustNotContain) == 0
}

// FileExpectation declares what should be true about a file after the workflow ran.
// Relative paths are resolved against the workflow's working directory.
type FileExpectation struct {
	Path         string `yaml:"path" json:"path"`
	ShouldExist  *bool  `yaml:"should_exist,omitempty" json:"should_exist,omitempty"`
	MD5Sum       string `yaml:"md5sum,omitempty" json:"md5sum,omitempty"`
	ContentRules `yaml:",inline"`
}

// Exists returns the expected existence, defaulting to true.
func (f FileExpectation) Exists() bool {
	return f.ShouldExist == nil || *f.ShouldExist
}

// HasTag reports whether the workflow carries the given tag.
func (w Workflow) HasTag(tag string) bool {
	for _, t := range w.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
