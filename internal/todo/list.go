// Package todo holds the list of items, the rules that order and filter it,
// and its persistence round-trip through a store.KV.
//
// A List is owned by a single presentation loop and is not safe for concurrent use.
package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idilsaglam/duelist/internal/logger"
	"github.com/idilsaglam/duelist/internal/model"
	"github.com/idilsaglam/duelist/internal/store"
)

// StorageKey is the KV key holding the serialised list.
const StorageKey = "todos"

// ErrNoSuchItem is returned by index-based operations given an index outside the current order.
var ErrNoSuchItem = errors.New("no such item")

type List struct {
	kv    store.KV
	items []model.Item
	// creation sequence per item; persisted order follows it
	seq     map[uuid.UUID]int
	nextSeq int

	groupDone bool
	hideDone  bool

	newID func() uuid.UUID
}

type Option func(*List)

func WithGroupDone(on bool) Option {
	return func(l *List) { l.groupDone = on }
}

func WithHideDone(on bool) Option {
	return func(l *List) { l.hideDone = on }
}

// WithIDGenerator replaces uuid.New, for deterministic tests.
func WithIDGenerator(fn func() uuid.UUID) Option {
	if fn == nil {
		return nil
	}
	return func(l *List) { l.newID = fn }
}

// Open loads the list from kv. A missing key or unreadable/malformed value yields an empty list;
// loading never fails.
func Open(kv store.KV, opts ...Option) *List {
	l := &List{
		kv:    kv,
		seq:   make(map[uuid.UUID]int),
		newID: uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	for _, it := range l.load() {
		l.push(it)
	}
	logger.Info("list loaded", zap.Int("items", len(l.items)))
	return l
}

func (l *List) load() []model.Item {
	raw, err := l.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warn("read list, starting empty", zap.Error(err))
		}
		return nil
	}
	items, err := Unmarshal([]byte(raw))
	if err != nil {
		logger.Warn("malformed list, starting empty", zap.Error(err))
		return nil
	}
	valid := items[:0]
	for i, it := range items {
		if strings.TrimSpace(it.Text) == "" {
			logger.Warn("skipping stored item without text", zap.Int("position", i))
			continue
		}
		valid = append(valid, it)
	}
	return valid
}

// push appends it with a fresh ID and the next creation sequence number.
func (l *List) push(it model.Item) {
	it.ID = l.newID()
	l.seq[it.ID] = l.nextSeq
	l.nextSeq++
	l.items = append(l.items, it)
}

// persist writes the full list, in insertion order, over the previous value.
func (l *List) persist() error {
	b, err := Marshal(l.insertionOrder())
	if err != nil {
		return err
	}
	if err := l.kv.Set(StorageKey, string(b)); err != nil {
		logger.Error("persist list", err, zap.Int("items", len(l.items)))
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (l *List) insertionOrder() []model.Item {
	out := slices.Clone(l.items)
	slices.SortStableFunc(out, func(a, b model.Item) int {
		return l.seq[a.ID] - l.seq[b.ID]
	})
	return out
}

// Marshal encodes items in the persisted form: [{"text":..,"done":..,"due":..}, ...].
func Marshal(items []model.Item) ([]byte, error) {
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Unmarshal is the inverse of Marshal. IDs are left zero.
func Unmarshal(b []byte) ([]model.Item, error) {
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Add appends a pending item and persists. Text and due are trimmed;
// empty text is silently ignored. A failed write leaves the list unchanged,
// as do failed writes in ToggleDone and Delete.
func (l *List) Add(text, due string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	l.push(model.Item{Text: text, Due: strings.TrimSpace(due)})
	if err := l.persist(); err != nil {
		last := len(l.items) - 1
		delete(l.seq, l.items[last].ID)
		l.items = l.items[:last]
		l.nextSeq--
		return err
	}
	logger.Debug("item added", zap.String("text", text), zap.String("due", due))
	return nil
}

// ToggleDone flips done on the item at index in the current order and persists.
func (l *List) ToggleDone(index int) error {
	if err := l.check(index); err != nil {
		return err
	}
	l.items[index].Done = !l.items[index].Done
	if err := l.persist(); err != nil {
		l.items[index].Done = !l.items[index].Done
		return err
	}
	return nil
}

// Delete removes the item at index in the current order and persists.
func (l *List) Delete(index int) error {
	if err := l.check(index); err != nil {
		return err
	}
	removed := l.items[index]
	seq := l.seq[removed.ID]
	delete(l.seq, removed.ID)
	l.items = slices.Delete(l.items, index, index+1)
	if err := l.persist(); err != nil {
		l.items = slices.Insert(l.items, index, removed)
		l.seq[removed.ID] = seq
		return err
	}
	return nil
}

func (l *List) check(index int) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("%w: index %d, have %d", ErrNoSuchItem, index, len(l.items))
	}
	return nil
}

func (l *List) SetGroupDoneMode(on bool) { l.groupDone = on }
func (l *List) SetHideDoneMode(on bool)  { l.hideDone = on }
func (l *List) GroupDone() bool          { return l.groupDone }
func (l *List) HideDone() bool           { return l.hideDone }

// Modes returns the current mode flags.
func (l *List) Modes() Modes {
	return Modes{GroupDone: l.groupDone, HideDone: l.hideDone}
}

// Sort reorders the list in place by the view rules. Repeating it is a no-op.
func (l *List) Sort() {
	SortItems(l.items, l.groupDone)
}

// Items returns a copy of the list in its current order.
func (l *List) Items() []model.Item {
	return slices.Clone(l.items)
}

func (l *List) Len() int { return len(l.items) }

// IndexOf returns the current index of the item with id, or -1.
func (l *List) IndexOf(id uuid.UUID) int {
	return slices.IndexFunc(l.items, func(it model.Item) bool { return it.ID == id })
}
