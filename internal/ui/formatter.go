package ui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"pwt/internal/checks"
	"pwt/internal/config"
	"pwt/internal/domain"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

// PrintSummary displays the statistics of a run followed by a tree of the
// failed checks
func (f *Formatter) PrintSummary(output *domain.RunOutput) {
	meta := output.Meta

	// Print header
	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                  Workflow Execution Statistics                ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	// Print table
	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Total Workflows", fmt.Sprint(meta.TotalWorkflows), white},
		{"Passed Workflows", fmt.Sprint(meta.PassedWorkflows), green},
		{"Failed Workflows", fmt.Sprint(meta.FailedWorkflows), red},
		{"Total Checks", fmt.Sprint(meta.TotalChecks), white},
		{"Failed Checks", fmt.Sprint(meta.FailedChecks), red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Timestamp", meta.Timestamp, white},
	}
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-27s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(f.out)
	if meta.FailedWorkflows == 0 {
		green.Fprintln(f.out, "✓ All workflows passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d workflow(s) failed with %d failed check(s)\n", meta.FailedWorkflows, meta.FailedChecks)
	fmt.Fprintln(f.out)
	f.printFailedTree(output.Details)
}

// TreeNode groups failures under a workflow and a scope
type TreeNode struct {
	Name     string
	Children []*TreeNode
	Failures []domain.CheckFailure
}

func (n *TreeNode) child(name string) *TreeNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &TreeNode{Name: name}
	n.Children = append(n.Children, c)
	return c
}

// buildFailureTree groups failures by workflow, then scope, keeping the
// order in which they were reported.
func buildFailureTree(failures []domain.CheckFailure) *TreeNode {
	root := &TreeNode{}
	for _, failure := range failures {
		wf := root.child(failure.Workflow)
		scope := failure.Scope
		if scope == "" {
			scope = "exit code"
		}
		node := wf.child(scope)
		node.Failures = append(node.Failures, failure)
	}
	return root
}

// printFailedTree prints a tree structure of failed checks
func (f *Formatter) printFailedTree(failures []domain.CheckFailure) {
	root := buildFailureTree(failures)

	for i, wf := range root.Children {
		lastWorkflow := i == len(root.Children)-1
		connector, prefix := "├── ", "│   "
		if lastWorkflow {
			connector, prefix = "└── ", "    "
		}
		cyan.Fprintf(f.out, "%s%s\n", connector, wf.Name)

		for j, scope := range wf.Children {
			lastScope := j == len(wf.Children)-1
			scopeConnector, scopePrefix := "├── ", "│   "
			if lastScope {
				scopeConnector, scopePrefix = "└── ", "    "
			}
			yellow.Fprintf(f.out, "%s%s%s\n", prefix, scopeConnector, scope.Name)

			for k, failure := range scope.Failures {
				checkConnector := "├── "
				if k == len(scope.Failures)-1 {
					checkConnector = "└── "
				}
				red.Fprintf(f.out, "%s%s%s%s", prefix, scopePrefix, checkConnector, failure.Name)
				if failure.Detail != "" {
					fmt.Fprintf(f.out, ": %s", failure.Detail)
				}
				fmt.Fprintln(f.out)
			}
		}
	}
}

// PrintWorkflowList prints the discovered workflows, optionally with the
// checks each one declares. Workflows named in failed are marked with [F].
func (f *Formatter) PrintWorkflowList(workflows []domain.Workflow, showChecks bool, failed map[string]struct{}) {
	green.Fprintf(f.out, "Found %d workflow(s):\n", len(workflows))
	fmt.Fprintln(f.out)

	for i, wf := range workflows {
		lastWorkflow := i == len(workflows)-1
		connector, prefix := "├── ", "│   "
		if lastWorkflow {
			connector, prefix = "└── ", "    "
		}

		failMarker := ""
		if _, ok := failed[wf.Name]; ok {
			failMarker = " " + red.Sprint("[F]")
		}
		line := connector + cyan.Sprint(wf.Name) + failMarker
		if src := f.source(wf); src != "" {
			line += " " + src
		}
		fmt.Fprintln(f.out, line)

		if !showChecks {
			continue
		}

		list := checks.Build(wf, nil, "", nil)
		for j, check := range list {
			checkConnector := "├── "
			if j == len(list)-1 {
				checkConnector = "└── "
			}
			name := check.Name()
			if check.Scope() != "" {
				name = check.Scope() + " " + name
			}
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, checkConnector, yellow.Sprint(name))
		}

		// Add spacing between workflows (except for the last one)
		if !lastWorkflow {
			fmt.Fprintln(f.out, "│")
		}
	}
}

// source returns the workflow's test file relative to the project
func (f *Formatter) source(wf domain.Workflow) string {
	if wf.Source == "" {
		return ""
	}
	rel, err := filepath.Rel(f.config.ProjectPath, wf.Source)
	if err != nil {
		rel = wf.Source
	}
	return fmt.Sprintf("(%s)", filepath.ToSlash(rel))
}
