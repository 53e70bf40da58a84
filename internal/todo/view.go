package todo

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/duelist/internal/model"
)

// Modes are the presentation toggles. They are never persisted.
type Modes struct {
	GroupDone bool
	HideDone  bool
}

// Row is one rendered item.
type Row struct {
	// Index is the item's position in the sorted list; pass it to ToggleDone/Delete.
	Index int
	ID    uuid.UUID
	Text  string
	Done  bool

	HasDue    bool
	DueAt     time.Time
	DueText   string // DisplayLayout, empty without a due
	Countdown Countdown
	// Overdue: expired and still pending
	Overdue bool
}

// View is everything a presentation layer needs to draw one frame.
type View struct {
	Rows    []Row
	Done    int
	Pending int
	Total   int
	Modes   Modes
	Now     time.Time
}

// Render builds the view-model for items under modes at now. It sorts a copy;
// items is not modified. Counts cover every item, hidden or not.
func Render(items []model.Item, modes Modes, now time.Time) View {
	sorted := slices.Clone(items)
	SortItems(sorted, modes.GroupDone)

	v := View{
		Rows:  make([]Row, 0, len(sorted)),
		Total: len(sorted),
		Modes: modes,
		Now:   now,
	}
	for i, it := range sorted {
		if it.Done {
			v.Done++
		} else {
			v.Pending++
		}
		if modes.HideDone && it.Done {
			continue
		}

		row := Row{Index: i, ID: it.ID, Text: it.Text, Done: it.Done}
		if at, ok := model.ParseDue(it.Due); ok {
			row.HasDue = true
			row.DueAt = at
			row.DueText = at.Format(model.DisplayLayout)
			row.Countdown = Remaining(at, now)
			row.Overdue = row.Countdown.Expired && !it.Done
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// Render sorts the list in place and returns its view at now.
func (l *List) Render(now time.Time) View {
	l.Sort()
	return Render(l.items, l.Modes(), now)
}
