package checks

import (
	"path/filepath"

	"pwt/internal/domain"
)

// Outcome is what the check tree needs from a finished execution.
type Outcome interface {
	ExitCode() int
	Stdout() []byte
	Stderr() []byte
}

// Build derives the ordered checks for one workflow run. Files come first
// (existence before checksum before content), then the exit code, then stdout
// and stderr. Relative file paths are resolved against dir.
//
// A non-nil execErr means the workflow never produced an outcome; every check
// is still built, and each fails with that error when evaluated.
func Build(wf domain.Workflow, out Outcome, dir string, execErr error) []Check {
	var checks []Check

	for _, file := range wf.Files {
		path := file.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		b := base{Workflow: wf.Name, scope: file.Path, Err: execErr}

		checks = append(checks, &FileExistsCheck{base: b, Path: path, ShouldExist: file.Exists()})
		if file.MD5Sum != "" && file.Exists() {
			checks = append(checks, &ChecksumCheck{base: b, Path: path, Expected: file.MD5Sum})
		}
		if !file.ContentRules.Empty() {
			filePath := path
			checks = append(checks, contentChecks(b, file.ContentRules, func(needles []string) (map[string]bool, error) {
				return ScanFile(filePath, needles)
			})...)
		}
	}

	exitCode := -1
	var stdout, stderr []byte
	if execErr == nil && out != nil {
		exitCode = out.ExitCode()
		stdout = out.Stdout()
		stderr = out.Stderr()
	}

	checks = append(checks, &ExitCodeCheck{
		base:     base{Workflow: wf.Name, Err: execErr},
		Actual:   exitCode,
		Expected: wf.ExitCode,
	})
	checks = append(checks, streamChecks(base{Workflow: wf.Name, scope: "stdout", Err: execErr}, wf.Stdout, stdout)...)
	checks = append(checks, streamChecks(base{Workflow: wf.Name, scope: "stderr", Err: execErr}, wf.Stderr, stderr)...)

	return checks
}

func streamChecks(b base, rules domain.ContentRules, data []byte) []Check {
	return contentChecks(b, rules, func(needles []string) (map[string]bool, error) {
		return CheckContent(needles, Lines(data)), nil
	})
}

func contentChecks(b base, rules domain.ContentRules, scan func([]string) (map[string]bool, error)) []Check {
	needles := make([]string, 0, len(rules.Contains)+len(rules.MustNotContain))
	needles = append(needles, rules.Contains...)
	needles = append(needles, rules.MustNotContain...)
	shared := &streamScan{needles: needles, scan: scan}

	checks := make([]Check, 0, len(needles))
	for _, s := range rules.Contains {
		checks = append(checks, &ContentCheck{base: b, Needle: s, MustContain: true, scan: shared})
	}
	for _, s := range rules.MustNotContain {
		checks = append(checks, &ContentCheck{base: b, Needle: s, MustContain: false, scan: shared})
	}
	return checks
}

// Evaluate runs every check. One failing check never prevents the others
// from being evaluated.
func Evaluate(checks []Check) []domain.CheckResult {
	results := make([]domain.CheckResult, 0, len(checks))
	for _, c := range checks {
		results = append(results, c.Evaluate())
	}
	return results
}
