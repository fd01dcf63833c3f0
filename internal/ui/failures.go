package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pwt/internal/domain"
	"pwt/internal/storage"
)

// FailureViewer displays failed checks in an interactive TUI
type FailureViewer struct {
	storage storage.Storage
	out     io.Writer
}

// NewFailureViewer creates a new FailureViewer. Resolved marks are written
// back through st.
func NewFailureViewer(st storage.Storage, out io.Writer) *FailureViewer {
	return &FailureViewer{
		storage: st,
		out:     out,
	}
}

// View displays failed checks in an interactive TUI
func (fv *FailureViewer) View(results *domain.RunOutput) error {
	if len(results.Details) == 0 {
		green.Fprintln(fv.out, "✓ No failed checks found!")
		return nil
	}

	// Create the application
	app := tview.NewApplication()

	// Create list for failed checks (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	// Add failed checks to the list with numbers and colors
	for i := range results.Details {
		list.AddItem(listItemText(results.Details[i], i), "", 0, nil)
	}

	// Set list colors for better visibility
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Create stats header view (shows workflow and check)
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	// Create text view for failure details (right side)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	// Create a container with right padding for the details view
	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	// Create right side layout: stats on top, details below
	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// Create simple flex layout: list on left (1/3), details on right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	// Create header text view (so we can update it)
	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(headerText(results))
	}
	updateHeader()

	// Update details when selection changes
	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(results.Details) {
			failure := results.Details[index]
			statsView.SetText(formatFailureStats(failure))
			detailsView.SetText(formatFailureDetails(failure))
		}
	}

	var saveErr error

	// Set up keyboard handlers for list
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if ToggleResolved(results, index) {
					list.SetItemText(index, listItemText(results.Details[index], index), "")
					updateHeader()
					updateDetails()
					if err := fv.storage.Save(results); err != nil {
						saveErr = err
					}
				}
				return nil
			}
		}
		return event
	})

	// Set up keyboard handlers for details view
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	// Update details when list selection changes
	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	// Set initial details
	updateDetails()

	// Create main layout with title
	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	// Run the application
	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("save resolved status: %w", saveErr)
	}

	return nil
}

// ToggleResolved flips the resolved mark of the failure at index and reports
// whether index was valid.
func ToggleResolved(results *domain.RunOutput, index int) bool {
	if index < 0 || index >= len(results.Details) {
		return false
	}
	results.Details[index].Resolved = !results.Details[index].Resolved
	return true
}

// CountUnresolved returns the number of failures not marked resolved
func CountUnresolved(results *domain.RunOutput) int {
	count := 0
	for _, d := range results.Details {
		if !d.Resolved {
			count++
		}
	}
	return count
}

func headerText(results *domain.RunOutput) string {
	return fmt.Sprintf(" Failed Checks (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ",
		len(results.Details), CountUnresolved(results))
}

// listItemText formats one list entry using tview color tags
func listItemText(failure domain.CheckFailure, index int) string {
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, tview.Escape(failure.ID()))
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(failure.ID()))
}

// formatFailureDetails formats a failed check for display using tview color tags ([red], [cyan], etc.)
func formatFailureDetails(failure domain.CheckFailure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Check: %s[white]\n\n", tview.Escape(failure.Name))
	fmt.Fprintf(&b, "[cyan]Command: %s[white]\n", tview.Escape(failure.Command))
	if failure.Dir != "" {
		fmt.Fprintf(&b, "[cyan]Directory: %s[white]\n", tview.Escape(failure.Dir))
	}
	fmt.Fprintf(&b, "\n")

	if failure.Detail != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(failure.Detail))
	}
	if failure.Resolved {
		fmt.Fprintf(&b, "\n[gray]Marked as resolved[white]\n")
	}

	return b.String()
}

// formatFailureStats formats the stats header for a failed check
func formatFailureStats(failure domain.CheckFailure) string {
	scope := failure.Scope
	if scope == "" {
		scope = "exit code"
	}
	return fmt.Sprintf("[cyan]workflow:[white] [yellow]%s[white]::[yellow]%s[white]\n",
		tview.Escape(failure.Workflow), tview.Escape(scope))
}
