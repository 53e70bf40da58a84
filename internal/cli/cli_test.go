package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/duelist/internal/config"
	"github.com/idilsaglam/duelist/internal/logger"
	"github.com/idilsaglam/duelist/internal/model"
	"github.com/idilsaglam/duelist/internal/todo"
	"github.com/idilsaglam/duelist/internal/tui"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)

type harness struct {
	t    *testing.T
	opts Options
}

func newHarness(t *testing.T, driver string) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = driver
	cfg.Storage.Dir = t.TempDir()
	return &harness{t: t, opts: Options{
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Now:        func() time.Time { return now },
		RunTUI: func(*todo.List, tui.Options) error {
			t.Fatal("tui started")
			return nil
		},
	}}
}

func (h *harness) run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Execute(args, &out, &errOut, h.opts)
	return code, out.String(), errOut.String()
}

func (h *harness) items() []model.Item {
	h.t.Helper()
	kv, err := OpenStore(h.opts.Config)
	require.NoError(h.t, err)
	defer kv.Close()
	return todo.Open(kv).Items()
}

func itemTexts(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestAddAndList(t *testing.T) {
	for _, driver := range []string{config.DriverJSON, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			h := newHarness(t, driver)

			code, out, _ := h.run("add", "Buy", "milk")
			require.Equal(t, ExitOK, code)
			assert.Contains(t, out, "added")

			code, out, _ = h.run("add", "Submit report", "--due", "+2h")
			require.Equal(t, ExitOK, code)
			assert.Contains(t, out, "due "+now.Add(2*time.Hour).Format(model.DisplayLayout))

			items := h.items()
			assert.Equal(t, []string{"Buy milk", "Submit report"}, itemTexts(items))
			assert.Equal(t, now.Add(2*time.Hour).Format(model.DueLayout), items[1].Due)

			code, out, _ = h.run("ls")
			require.Equal(t, ExitOK, code)
			assert.Contains(t, out, " 1. ")
			assert.Contains(t, out, "Submit report")
			assert.Contains(t, out, "2h 0m left")
			assert.Less(t, bytes.Index([]byte(out), []byte("Submit report")), bytes.Index([]byte(out), []byte("Buy milk")))
		})
	}
}

func TestAdd_JSONFileLayout(t *testing.T) {
	h := newHarness(t, config.DriverJSON)
	code, _, _ := h.run("add", "water plants", "--due", "2026-10-20 09:30")
	require.Equal(t, ExitOK, code)

	data, err := os.ReadFile(filepath.Join(h.opts.Config.Storage.Dir, "todos.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"text":"water plants","done":false,"due":"2026-10-20T09:30"}]`, string(data))
}

func TestAdd_UsageErrors(t *testing.T) {
	h := newHarness(t, config.DriverJSON)

	code, _, errOut := h.run("add", "  ")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "add: empty text")

	code, _, errOut = h.run("add", "x", "--due", "next tuesday")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "invalid due")
	assert.Contains(t, errOut, "Hint:")

	code, _, _ = h.run("add")
	assert.Equal(t, ExitUsage, code)

	code, _, _ = h.run("add", "x", "--nope")
	assert.Equal(t, ExitUsage, code)

	assert.Empty(t, h.items())
}

func TestDoneAndRemoveFollowListedOrder(t *testing.T) {
	h := newHarness(t, config.DriverJSON)
	require.Equal(t, ExitOK, first(h.run("add", "later", "--due", "+3h")))
	require.Equal(t, ExitOK, first(h.run("add", "sooner", "--due", "+1h")))
	require.Equal(t, ExitOK, first(h.run("add", "whenever")))

	// ls order: sooner, later, whenever
	code, out, _ := h.run("done", "1")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "toggled")

	items := h.items()
	assert.Equal(t, []string{"later", "sooner", "whenever"}, itemTexts(items), "stored in insertion order")
	assert.True(t, items[1].Done)

	// with --group the done item moves last: later, whenever, sooner
	code, _, _ = h.run("rm", "--group", "3")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"later", "whenever"}, itemTexts(h.items()))
}

func TestIndexErrors(t *testing.T) {
	h := newHarness(t, config.DriverJSON)
	require.Equal(t, ExitOK, first(h.run("add", "only")))

	code, _, errOut := h.run("done", "2")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "index out of range: have 1, got 2")
	assert.Contains(t, errOut, "duelist ls")

	code, _, errOut = h.run("rm", "0")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "index out of range")

	code, _, errOut = h.run("rm", "two")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "rm: not a number: two")

	code, _, _ = h.run("done")
	assert.Equal(t, ExitUsage, code)

	assert.Equal(t, []string{"only"}, itemTexts(h.items()))
}

func TestList_HideDone(t *testing.T) {
	h := newHarness(t, config.DriverJSON)
	require.Equal(t, ExitOK, first(h.run("add", "open item")))
	require.Equal(t, ExitOK, first(h.run("add", "closed item")))
	require.Equal(t, ExitOK, first(h.run("done", "2")))

	_, out, _ := h.run("ls", "--hide-done")
	assert.Contains(t, out, "open item")
	assert.NotContains(t, out, "closed item")
	assert.Contains(t, out, "hide done: on")
}

func TestOpenStore_LogsBackingFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "duelist.log")
	require.NoError(t, logger.Init(false, logFile))
	t.Cleanup(func() { _ = logger.Init(false, "") })

	h := newHarness(t, config.DriverJSON)
	require.Equal(t, ExitOK, first(h.run("ls")))
	logger.Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"driver":"json"`)
	assert.Contains(t, string(data), filepath.Join(h.opts.Config.Storage.Dir, "todos.json"))
}

func TestList_Empty(t *testing.T) {
	h := newHarness(t, config.DriverMemory)
	code, out, _ := h.run("ls")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "no items")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, config.DriverMemory)
	code, _, errOut := h.run("frobnicate")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "unknown command")
}

func TestInit(t *testing.T) {
	h := newHarness(t, config.DriverMemory)

	code, out, _ := h.run("init")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, h.opts.ConfigPath)

	data, err := os.ReadFile(h.opts.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, config.Template, string(data))

	code, _, errOut := h.run("init")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "--force")

	code, _, _ = h.run("init", "--force")
	assert.Equal(t, ExitOK, code)
}

func TestDefaultCommandRunsTUIWithConfiguredModes(t *testing.T) {
	h := newHarness(t, config.DriverMemory)
	h.opts.Config.UI.GroupDone = true
	h.opts.Config.UI.RefreshInterval = 30 * time.Second

	var got []todo.Modes
	h.opts.RunTUI = func(l *todo.List, o tui.Options) error {
		got = append(got, l.Modes())
		assert.Equal(t, 30*time.Second, o.RefreshInterval)
		assert.NotNil(t, o.Notifier)
		return nil
	}

	assert.Equal(t, ExitOK, first(h.run()))
	assert.Equal(t, ExitOK, first(h.run("tui", "--hide-done")))
	assert.Equal(t, []todo.Modes{
		{GroupDone: true},
		{GroupDone: true, HideDone: true},
	}, got)
}

func first(code int, _, _ string) int { return code }
