package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stacksolve/pkg/analyze"
	"github.com/matzehuels/stacksolve/pkg/engine"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConflictBrowserModel - Interactive conflict inspection
// =============================================================================

// ConflictBrowserModel is the bubbletea model for browsing the conflicts of
// a resolution. Enter toggles a detail pane for the selected conflict.
type ConflictBrowserModel struct {
	Result *engine.Result
	Cursor int
	Height int
	Offset int
	Detail bool
}

// NewConflictBrowserModel creates a browser over res.
func NewConflictBrowserModel(res *engine.Result) ConflictBrowserModel {
	return ConflictBrowserModel{Result: res, Height: 10}
}

func (m ConflictBrowserModel) Init() tea.Cmd {
	return nil
}

func (m ConflictBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Result.Conflicts)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 3)
	}
	return m, nil
}

func (m ConflictBrowserModel) View() string {
	var b strings.Builder
	res := m.Result

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Conflicts of %s", strings.Join(res.Requested, ", "))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(res.Conflicts) == 0 {
		b.WriteString(StyleSuccess.Render("No conflicts"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(res.Conflicts))
	b.WriteString(conflictTable(res.Conflicts[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %s  confidence %.2f", m.Cursor+1, len(res.Conflicts), res.SearchMethod, res.Confidence)))
	b.WriteString("\n")

	if m.Detail {
		b.WriteString("\n")
		b.WriteString(m.detail(res.Conflicts[m.Cursor]))
	}
	return b.String()
}

// detail shows where each package of c ended up in the chosen configuration.
func (m ConflictBrowserModel) detail(c analyze.Conflict) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(fmt.Sprintf("%s (%s)", c.Kind, c.Severity)))
	b.WriteString("\n")
	if len(c.Values) > 0 {
		b.WriteString(listDimStyle.Render("  values: " + strings.Join(c.Values, ", ")))
		b.WriteString("\n")
	}
	for _, id := range c.Entities {
		status := statusExcluded
		style := listDimStyle
		if m.Result.Configuration[id] {
			status = statusIncluded
			style = StyleSuccess
		}
		b.WriteString(listNormalStyle.Render(fmt.Sprintf("  %-30s ", id)))
		b.WriteString(style.Render(status))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("  suggested: " + string(c.Resolution)))
	b.WriteString("\n")
	return b.String()
}

// browseResult runs the conflict browser, or prints the result when there
// is nothing to browse.
func browseResult(res *engine.Result) error {
	if len(res.Conflicts) == 0 {
		printResult(res)
		return nil
	}
	_, err := tea.NewProgram(NewConflictBrowserModel(res)).Run()
	return err
}
