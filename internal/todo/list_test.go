package todo_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/duelist/internal/model"
	"github.com/idilsaglam/duelist/internal/store"
	"github.com/idilsaglam/duelist/internal/todo"
)

// failingKV reads like an empty store and refuses every write.
type failingKV struct {
	getErr error
}

func (f failingKV) Get(string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return "", store.ErrNotFound
}
func (failingKV) Set(string, string) error { return errors.New("disk full") }
func (failingKV) Close() error             { return nil }

func stored(t *testing.T, kv store.KV) []model.Item {
	t.Helper()
	raw, err := kv.Get(todo.StorageKey)
	require.NoError(t, err)
	items, err := todo.Unmarshal([]byte(raw))
	require.NoError(t, err)
	return items
}

func texts(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestOpen_Empty(t *testing.T) {
	l := todo.Open(store.NewMemory())
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Items())
}

func TestOpen_MalformedOrUnreadableIsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"text":"a"}`, "null", ""} {
		kv := store.NewMemory()
		require.NoError(t, kv.Set(todo.StorageKey, raw))
		l := todo.Open(kv)
		assert.Equal(t, 0, l.Len(), raw)
	}

	l := todo.Open(failingKV{getErr: errors.New("permission denied")})
	assert.Equal(t, 0, l.Len())
}

func TestOpen_LoadsPersistedList(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Set(todo.StorageKey, `[
		{"text":"A","done":true,"due":"2026-10-20T10:00"},
		{"text":"B","done":false,"due":""},
		{"text":"C","done":false}
	]`))

	l := todo.Open(kv)
	items := l.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"A", "B", "C"}, texts(items))
	assert.True(t, items[0].Done)
	assert.Equal(t, "2026-10-20T10:00", items[0].Due)
	assert.Equal(t, "", items[2].Due)
	for _, it := range items {
		assert.NotEqual(t, uuid.Nil, it.ID)
	}
}

func TestOpen_SkipsItemsWithoutText(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Set(todo.StorageKey, `[
		{"text":"","done":false,"due":""},
		null,
		{"text":"kept","done":true,"due":""},
		{"text":"   ","done":false,"due":"2026-10-20T10:00"}
	]`))

	l := todo.Open(kv)
	assert.Equal(t, []string{"kept"}, texts(l.Items()))
	assert.True(t, l.Items()[0].Done)

	require.NoError(t, l.ToggleDone(0))
	assert.Equal(t, []model.Item{{Text: "kept"}}, stored(t, kv))
}

func TestScenario_AddToggleDelete(t *testing.T) {
	kv := store.NewMemory()
	l := todo.Open(kv)

	require.NoError(t, l.Add("Buy milk", ""))
	assert.Equal(t, []model.Item{{Text: "Buy milk", Done: false, Due: ""}}, stored(t, kv))

	require.NoError(t, l.ToggleDone(0))
	assert.True(t, l.Items()[0].Done)
	assert.True(t, stored(t, kv)[0].Done)

	require.NoError(t, l.Delete(0))
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, []model.Item{}, stored(t, kv))
}

func TestAdd_TrimsAndSkipsEmpty(t *testing.T) {
	kv := store.NewMemory()
	l := todo.Open(kv)

	require.NoError(t, l.Add("   ", "2026-10-20T10:00"))
	assert.Equal(t, 0, l.Len())
	_, err := kv.Get(todo.StorageKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "skipped add must not persist")

	require.NoError(t, l.Add("  Call mom  ", " 2026-10-20T10:00 "))
	assert.Equal(t, model.Item{Text: "Call mom", Due: "2026-10-20T10:00"}, withoutID(l.Items()[0]))
}

func TestIndexOutOfRange(t *testing.T) {
	kv := store.NewMemory()
	l := todo.Open(kv)
	require.NoError(t, l.Add("only", ""))

	for _, idx := range []int{-1, 1, 42} {
		assert.ErrorIs(t, l.ToggleDone(idx), todo.ErrNoSuchItem)
		assert.ErrorIs(t, l.Delete(idx), todo.ErrNoSuchItem)
	}
	assert.Equal(t, []model.Item{{Text: "only"}}, stored(t, kv))
	assert.False(t, l.Items()[0].Done)
}

// flakyKV is a memory store whose writes fail while failing is set.
type flakyKV struct {
	*store.Memory
	failing bool
}

func (f *flakyKV) Set(key, value string) error {
	if f.failing {
		return errors.New("disk full")
	}
	return f.Memory.Set(key, value)
}

func TestPersistError(t *testing.T) {
	l := todo.Open(failingKV{})
	err := l.Add("x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, l.Len())
}

func TestPersistError_RollsBack(t *testing.T) {
	kv := &flakyKV{Memory: store.NewMemory()}
	l := todo.Open(kv)
	require.NoError(t, l.Add("B", "2026-12-01T10:00"))
	require.NoError(t, l.Add("A", "2026-11-01T10:00"))
	l.Sort()
	before := l.Items()

	kv.failing = true
	assert.Error(t, l.Add("C", ""))
	assert.Error(t, l.ToggleDone(0))
	assert.Error(t, l.Delete(0))
	assert.Equal(t, before, l.Items())

	// memory and storage agree again on the next write, in insertion order
	kv.failing = false
	require.NoError(t, l.Add("D", ""))
	assert.Equal(t, []string{"B", "A", "D"}, texts(stored(t, kv)))
	require.NoError(t, l.Delete(0))
	assert.Equal(t, []string{"B", "D"}, texts(stored(t, kv)))
}

func TestPersist_InsertionOrder(t *testing.T) {
	kv := store.NewMemory()
	l := todo.Open(kv)

	require.NoError(t, l.Add("later", "2026-12-01T10:00"))
	require.NoError(t, l.Add("sooner", "2026-11-01T10:00"))
	require.NoError(t, l.Add("undated", ""))

	l.Sort()
	assert.Equal(t, []string{"sooner", "later", "undated"}, texts(l.Items()))

	// toggling by sorted index still writes insertion order
	require.NoError(t, l.ToggleDone(0))
	got := stored(t, kv)
	assert.Equal(t, []string{"later", "sooner", "undated"}, texts(got))
	assert.True(t, got[1].Done)

	require.NoError(t, l.Delete(1)) // "later" in sorted order
	assert.Equal(t, []string{"sooner", "undated"}, texts(stored(t, kv)))
}

func TestRoundTrip(t *testing.T) {
	lists := [][]model.Item{
		{},
		{{Text: "Buy milk"}},
		{
			{Text: "A", Done: true, Due: "2026-10-20T10:00"},
			{Text: "B", Due: "garbage stays garbage"},
			{Text: "C", Due: "2026-10-19T08:00:00+09:00"},
			{Text: "日本語", Done: true},
		},
	}
	for _, items := range lists {
		b, err := todo.Marshal(items)
		require.NoError(t, err)
		back, err := todo.Unmarshal(b)
		require.NoError(t, err)
		assert.Equal(t, items, back)
	}
}

func TestRoundTrip_ThroughReopen(t *testing.T) {
	kv := store.NewMemory()
	l := todo.Open(kv)
	require.NoError(t, l.Add("A", "2026-10-20T10:00"))
	require.NoError(t, l.Add("B", ""))
	require.NoError(t, l.ToggleDone(1))

	reopened := todo.Open(kv)
	assert.Equal(t, stripIDs(l.Items()), stripIDs(reopened.Items()))
}

func TestIndexOf(t *testing.T) {
	var n byte
	ids := func() uuid.UUID {
		n++
		return uuid.UUID{n}
	}
	l := todo.Open(store.NewMemory(), todo.WithIDGenerator(ids))
	require.NoError(t, l.Add("late", "2026-12-01T10:00"))
	require.NoError(t, l.Add("early", "2026-11-01T10:00"))

	first := uuid.UUID{1}
	assert.Equal(t, 0, l.IndexOf(first))
	l.Sort()
	assert.Equal(t, 1, l.IndexOf(first))
	assert.Equal(t, -1, l.IndexOf(uuid.UUID{9}))
}

func TestModes(t *testing.T) {
	l := todo.Open(store.NewMemory(), todo.WithGroupDone(true), todo.WithHideDone(true))
	assert.Equal(t, todo.Modes{GroupDone: true, HideDone: true}, l.Modes())

	l.SetGroupDoneMode(false)
	l.SetHideDoneMode(false)
	assert.False(t, l.GroupDone())
	assert.False(t, l.HideDone())
}

func withoutID(it model.Item) model.Item {
	it.ID = uuid.Nil
	return it
}

func stripIDs(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i, it := range items {
		out[i] = withoutID(it)
	}
	return out
}
