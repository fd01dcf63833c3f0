package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	run := failedRun()
	run.Details[1].Resolved = true

	newGolden(t).Assert(t, "report", []byte(RenderMarkdown(run)))
}

func TestRenderMarkdown_AllPassed(t *testing.T) {
	run := failedRun()
	run.Details = nil

	md := RenderMarkdown(run)
	assert.Contains(t, md, "All workflows passed.")
	assert.NotContains(t, md, "## Failed checks")
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(RenderMarkdown(failedRun()))
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<h1>Workflow Report</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<h3>moo file</h3>")
	assert.Contains(t, html, `<input disabled="" type="checkbox">`)
}
