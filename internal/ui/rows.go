package ui

import (
	"fmt"

	"github.com/idilsaglam/duelist/internal/todo"
)

// MaxTextWidth caps item text in list output.
const MaxTextWidth = 80

// Header is the title line with live counts.
func Header(v todo.View) string {
	t := Current()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), v.Done,
		t.Pending.Render(t.SymPending), v.Pending,
		t.Accent.Render("Total"), v.Total,
	)
}

// ItemLine renders the checkbox and text of a row.
func ItemLine(r todo.Row, width int) string {
	t := Current()
	text := Truncate(r.Text, width)
	if r.Done {
		return t.Success.Render(t.BoxChecked) + " " + t.Done.Render(text)
	}
	return t.Muted.Render(t.BoxUnchecked) + " " + text
}

// DueLine renders "Due: 2006/01/02 15:04 (countdown)", red when overdue.
// Rows without a due render as "".
func DueLine(r todo.Row) string {
	if !r.HasDue {
		return ""
	}
	line := fmt.Sprintf("Due: %s (%s)", r.DueText, r.Countdown)
	if r.Overdue {
		return Current().Overdue.Render(line)
	}
	return Current().Muted.Render(line)
}

// ModeLine describes the active toggles.
func ModeLine(m todo.Modes) string {
	group, hide := "off", "off"
	if m.GroupDone {
		group = "on"
	}
	if m.HideDone {
		hide = "on"
	}
	return Current().Muted.Render(fmt.Sprintf("done at bottom: %s · hide done: %s", group, hide))
}

// ListLines renders a whole view as plain lines, numbering rows from 1 by store index.
func ListLines(v todo.View) []string {
	t := Current()
	lines := []string{
		Header(v),
		t.Muted.Render(ProgressBar(v.Done, v.Total, 28)),
		"",
	}
	if len(v.Rows) == 0 {
		lines = append(lines, t.Muted.Render("no items"))
	}
	for _, r := range v.Rows {
		idx := fmt.Sprintf("%2d.", r.Index+1)
		lines = append(lines, t.Muted.Render(idx)+" "+ItemLine(r, MaxTextWidth))
		if d := DueLine(r); d != "" {
			lines = append(lines, "    "+d)
		}
	}
	lines = append(lines, "", ModeLine(v.Modes))
	return lines
}
