package ui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"pwt/internal/domain"
)

// RenderMarkdown renders a stored run as a Markdown report
func RenderMarkdown(output *domain.RunOutput) string {
	var b strings.Builder
	meta := output.Meta

	b.WriteString("# Workflow Report\n\n")
	fmt.Fprintf(&b, "Run `%s` at %s\n\n", meta.RunID, meta.Timestamp)

	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| Total workflows | %d |\n", meta.TotalWorkflows)
	fmt.Fprintf(&b, "| Passed workflows | %d |\n", meta.PassedWorkflows)
	fmt.Fprintf(&b, "| Failed workflows | %d |\n", meta.FailedWorkflows)
	fmt.Fprintf(&b, "| Total checks | %d |\n", meta.TotalChecks)
	fmt.Fprintf(&b, "| Failed checks | %d |\n", meta.FailedChecks)
	fmt.Fprintf(&b, "| Duration | %.2fs |\n", meta.DurationSeconds)
	fmt.Fprintf(&b, "| Workers | %d |\n", meta.Workers)

	if len(output.Details) == 0 {
		b.WriteString("\nAll workflows passed.\n")
		return b.String()
	}

	b.WriteString("\n## Failed checks\n")
	root := buildFailureTree(output.Details)
	for _, wf := range root.Children {
		fmt.Fprintf(&b, "\n### %s\n\n", wf.Name)
		if cmd := wf.Children[0].Failures[0].Command; cmd != "" {
			fmt.Fprintf(&b, "Command: `%s`\n\n", cmd)
		}
		for _, scope := range wf.Children {
			for _, failure := range scope.Failures {
				mark := " "
				if failure.Resolved {
					mark = "x"
				}
				fmt.Fprintf(&b, "- [%s] **%s** %s", mark, scope.Name, failure.Name)
				if failure.Detail != "" {
					fmt.Fprintf(&b, ": %s", failure.Detail)
				}
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// RenderHTML converts a Markdown report to a standalone HTML page
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Workflow Report</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}
