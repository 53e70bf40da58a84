package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/duelist/internal/todo"
	"github.com/idilsaglam/duelist/internal/ui"
)

func (m Model) View() string {
	t := ui.Current()

	var top []string
	top = append(top, ui.Header(m.view))
	top = append(top, t.Muted.Render(ui.ProgressBar(m.view.Done, m.view.Total, 28)))
	top = append(top, "")

	var bottom []string
	if m.mode != modeList {
		bottom = append(bottom, "", m.formView())
	}
	bottom = append(bottom, "")
	if m.status != "" {
		bottom = append(bottom, t.Accent.Render(m.status))
	}
	bottom = append(bottom, ui.ModeLine(m.view.Modes))
	if m.mode == modeList {
		bottom = append(bottom, m.help.View(m.keys))
	} else {
		bottom = append(bottom, m.help.View(formKeys(m.keys)))
	}

	// panel border + padding
	innerWidth := max(20, m.width-4)
	budget := m.height - 2 - lipgloss.Height(strings.Join(top, "\n")) - lipgloss.Height(strings.Join(bottom, "\n"))

	lines := append(top, m.rowLines(innerWidth, budget)...)
	lines = append(lines, bottom...)
	return ui.Panel(lines)
}

// rowLines renders the rows that fit in budget lines, keeping the cursor visible.
func (m Model) rowLines(width, budget int) []string {
	t := ui.Current()
	if len(m.view.Rows) == 0 {
		return []string{t.Muted.Render("no items, press a to add one")}
	}
	budget = max(budget, 2)

	offset := visibleOffset(m.view.Rows, m.cursor, budget)
	var out []string
	used := 0
	for i := offset; i < len(m.view.Rows); i++ {
		r := m.view.Rows[i]
		h := rowHeight(r)
		if used+h > budget && used > 0 {
			break
		}
		prefix := "  "
		if i == m.cursor {
			prefix = t.Selected.Render(">") + " "
		}
		out = append(out, prefix+ui.ItemLine(r, width-4))
		if d := ui.DueLine(r); d != "" {
			out = append(out, "    "+d)
		}
		used += h
	}
	return out
}

func rowHeight(r todo.Row) int {
	if r.HasDue {
		return 2
	}
	return 1
}

// visibleOffset picks the first row to draw so that cursor fits within budget lines.
func visibleOffset(rows []todo.Row, cursor, budget int) int {
	offset := 0
	for offset < cursor {
		used := 0
		for i := offset; i <= cursor; i++ {
			used += rowHeight(rows[i])
		}
		if used <= budget {
			break
		}
		offset++
	}
	return offset
}

func (m Model) formView() string {
	t := ui.Current()
	title := "Add item"
	if m.mode == modeAddDue {
		title = "Due for " + ui.Truncate(m.pendingText, 40)
	}
	if m.addErr != "" {
		title += " · " + t.Error.Render(m.addErr)
	}
	box := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return box.Render(title + "\n" + m.ti.View())
}
