package todo

import (
	"slices"
	"time"

	"github.com/idilsaglam/duelist/internal/model"
)

type keyedItem struct {
	item   model.Item
	at     time.Time
	hasDue bool
}

// SortItems orders items in place: ascending by due, undated items last,
// then (groupDone) done items after pending ones. Both passes are stable.
func SortItems(items []model.Item, groupDone bool) {
	keyed := make([]keyedItem, len(items))
	for i, it := range items {
		at, ok := model.ParseDue(it.Due)
		keyed[i] = keyedItem{item: it, at: at, hasDue: ok}
	}

	slices.SortStableFunc(keyed, compareDue)
	if groupDone {
		slices.SortStableFunc(keyed, compareDone)
	}

	for i := range keyed {
		items[i] = keyed[i].item
	}
}

func compareDue(a, b keyedItem) int {
	switch {
	case !a.hasDue && !b.hasDue:
		return 0
	case !a.hasDue:
		return 1
	case !b.hasDue:
		return -1
	}
	return a.at.Compare(b.at)
}

func compareDone(a, b keyedItem) int {
	switch {
	case a.item.Done == b.item.Done:
		return 0
	case a.item.Done:
		return 1
	}
	return -1
}
