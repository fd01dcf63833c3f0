// Package checks turns one finished workflow execution into a flat, ordered
// list of independent pass/fail checks.
package checks

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"pwt/internal/domain"
)

// Check is one independent assertion about a workflow run.
type Check interface {
	Scope() string
	Name() string
	Evaluate() domain.CheckResult
}

// base carries what every check variant shares.
// Err is set when the workflow never produced an outcome; the check then fails with it.
type base struct {
	Workflow string
	scope    string
	Err      error
}

func (b base) Scope() string {
	return b.scope
}

func (b base) result(name string, passed bool, detail string) domain.CheckResult {
	if passed {
		detail = ""
	}
	return domain.CheckResult{
		Workflow: b.Workflow,
		Scope:    b.scope,
		Name:     name,
		Passed:   passed,
		Detail:   detail,
	}
}

func (b base) errored(name string) (domain.CheckResult, bool) {
	if b.Err == nil {
		return domain.CheckResult{}, false
	}
	return b.result(name, false, fmt.Sprintf("workflow '%s' could not be started: %v", b.Workflow, b.Err)), true
}

// ExitCodeCheck compares the process exit code with the expected one.
type ExitCodeCheck struct {
	base
	Actual   int
	Expected int
}

func (c *ExitCodeCheck) Name() string {
	return fmt.Sprintf("exit code should be %d", c.Expected)
}

func (c *ExitCodeCheck) Evaluate() domain.CheckResult {
	if r, ok := c.errored(c.Name()); ok {
		return r
	}
	return c.result(c.Name(), c.Actual == c.Expected,
		fmt.Sprintf("The workflow exited with exit code '%d' instead of '%d'.", c.Actual, c.Expected))
}

// ContentCheck asserts the presence or absence of one substring in a text
// stream. Checks over the same stream share a single scan.
type ContentCheck struct {
	base
	Needle      string
	MustContain bool
	scan        *streamScan
}

func (c *ContentCheck) Name() string {
	if c.MustContain {
		return fmt.Sprintf("contains '%s'", c.Needle)
	}
	return fmt.Sprintf("does not contain '%s'", c.Needle)
}

func (c *ContentCheck) Evaluate() domain.CheckResult {
	if r, ok := c.errored(c.Name()); ok {
		return r
	}
	found, err := c.scan.lookup(c.Needle)
	if err != nil {
		return c.result(c.Name(), false, err.Error())
	}
	if c.MustContain {
		return c.result(c.Name(), found, fmt.Sprintf("'%s' was not found in %s", c.Needle, c.scope))
	}
	return c.result(c.Name(), !found, fmt.Sprintf("'%s' was found in %s while it should not be there", c.Needle, c.scope))
}

// streamScan runs the content matcher once for all needles of a stream.
type streamScan struct {
	needles []string
	scan    func(needles []string) (map[string]bool, error)

	once  sync.Once
	found map[string]bool
	err   error
}

func (s *streamScan) lookup(needle string) (bool, error) {
	s.once.Do(func() {
		s.found, s.err = s.scan(s.needles)
	})
	if s.err != nil {
		return false, s.err
	}
	return s.found[needle], nil
}

// FileExistsCheck compares a file's existence with the expectation.
type FileExistsCheck struct {
	base
	Path        string
	ShouldExist bool
}

func (c *FileExistsCheck) Name() string {
	if c.ShouldExist {
		return "should exist"
	}
	return "should not exist"
}

func (c *FileExistsCheck) Evaluate() domain.CheckResult {
	if r, ok := c.errored(c.Name()); ok {
		return r
	}
	_, err := os.Stat(c.Path)
	exists := err == nil
	if c.ShouldExist {
		return c.result(c.Name(), exists, fmt.Sprintf("'%s' does not exist while it should", c.Path))
	}
	return c.result(c.Name(), !exists, fmt.Sprintf("'%s' does exist while it should not", c.Path))
}

// ChecksumCheck compares a file's md5sum with the declared one.
type ChecksumCheck struct {
	base
	Path     string
	Expected string
}

func (c *ChecksumCheck) Name() string {
	return "Check md5sum"
}

func (c *ChecksumCheck) Evaluate() domain.CheckResult {
	if r, ok := c.errored(c.Name()); ok {
		return r
	}
	observed, err := FileMD5(c.Path)
	if err != nil {
		var accessErr *FileAccessError
		if errors.As(err, &accessErr) {
			return c.result(c.Name(), false, fmt.Sprintf("could not compute md5sum for '%s': %v", c.Path, accessErr.Err))
		}
		return c.result(c.Name(), false, err.Error())
	}
	return c.result(c.Name(), observed == c.Expected,
		fmt.Sprintf("Observed md5sum '%s' not equal to expected md5sum '%s' for file '%s'", observed, c.Expected, c.Path))
}
