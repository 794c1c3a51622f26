package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stacksolve/pkg/analyze"
	"github.com/matzehuels/stacksolve/pkg/engine"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures and high-severity findings.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleKey    = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Resolution Output
// =============================================================================

// printResult prints a human-readable summary of res.
func printResult(res *engine.Result) {
	fmt.Println(StyleTitle.Render("Resolution " + res.ID))
	printKeyValue("Requested", strings.Join(res.Requested, ", "))
	printKeyValue("Packages", fmt.Sprintf("%d (%d edges)", len(res.Graph.Nodes), len(res.Graph.Edges)))
	printKeyValue("Method", res.SearchMethod)
	printKeyValue("Confidence", fmt.Sprintf("%.2f", res.Confidence))
	printKeyValue("Cost", fmt.Sprintf("%.3f", res.Cost))
	printKeyValue("Duration", fmt.Sprintf("%dms", res.DurationMS))
	fmt.Println()

	fmt.Println(packageTable(res))
	fmt.Println()

	if len(res.Cycles) > 0 {
		fmt.Println(StyleTitle.Render("Cycles"))
		for _, c := range res.Cycles {
			printDetail("%s", formatCycle(c))
		}
		fmt.Println()
	}

	if len(res.Conflicts) == 0 {
		printSuccess("No conflicts")
	} else {
		fmt.Println(StyleTitle.Render(fmt.Sprintf("Conflicts (%d)", len(res.Conflicts))))
		fmt.Println(conflictTable(res.Conflicts, -1))
	}

	for _, id := range res.Unresolved {
		printWarning("%s could not be fetched and was not expanded", id)
	}
	if res.TimedOut {
		printWarning("search deadline reached after %d restarts; result may not be optimal", res.Restarts)
	}
}

// packageTable renders one row per package with its inclusion status.
func packageTable(res *engine.Result) string {
	rows := make([][]string, len(res.Graph.Nodes))
	for i, n := range res.Graph.Nodes {
		rows[i] = []string{n.ID, dash(n.Version), dash(n.Architecture), dash(n.License), packageStatus(res, n.ID, n.Unresolved)}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Version", "Arch", "License", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col != 4 {
				return lipgloss.NewStyle()
			}
			switch rows[row][col] {
			case statusIncluded:
				return StyleSuccess
			case statusUnresolved:
				return StyleWarning
			default:
				return StyleDim
			}
		}).
		Render()
}

const (
	statusIncluded   = "included"
	statusExcluded   = "excluded"
	statusUnresolved = "unresolved"
)

func packageStatus(res *engine.Result, id string, unresolved bool) string {
	switch {
	case unresolved:
		return statusUnresolved
	case res.Configuration[id]:
		return statusIncluded
	default:
		return statusExcluded
	}
}

// conflictTable renders conflicts; the row at index selected is highlighted.
func conflictTable(conflicts []analyze.Conflict, selected int) string {
	rows := make([][]string, len(conflicts))
	for i, c := range conflicts {
		rows[i] = []string{string(c.Kind), string(c.Severity), strings.Join(c.Entities, ", "), string(c.Resolution)}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Severity", "Packages", "Suggested resolution").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle()
			if row == selected {
				base = base.Bold(true).Foreground(colorCyan)
			}
			if col == 1 {
				return base.Inherit(severityStyle(conflicts[row].Severity))
			}
			return base
		}).
		Render()
}

func severityStyle(s analyze.Severity) lipgloss.Style {
	switch s {
	case analyze.SeverityHigh:
		return StyleError
	case analyze.SeverityMedium:
		return StyleWarning
	default:
		return StyleDim
	}
}

func formatCycle(c []string) string {
	return strings.Join(c, " "+iconArrow+" ")
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
