package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/idilsaglam/duelist/internal/logger"
	"github.com/idilsaglam/duelist/internal/model"
	"github.com/idilsaglam/duelist/internal/notify"
	"github.com/idilsaglam/duelist/internal/todo"
)

// Clipboard is the system clipboard; swapped out in tests.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Options wire the TUI to its collaborators. Zero values get defaults.
type Options struct {
	RefreshInterval time.Duration
	Notifier        *notify.Notifier
	Clipboard       Clipboard
	Now             func() time.Time
}

type mode int

const (
	modeList mode = iota
	modeAddText
	modeAddDue
)

type tickMsg time.Time

type statusMsg string

type pastedMsg struct {
	text string
	err  error
}

type Model struct {
	list *todo.List
	view todo.View

	cursor int

	mode        mode
	ti          textinput.Model
	pendingText string // text captured by the first add step
	addErr      string

	status string
	keys   keyMap
	help   help.Model

	width, height int

	interval  time.Duration
	notifier  *notify.Notifier
	clipboard Clipboard
	now       func() time.Time
}

// New builds the model around l and renders the first frame.
func New(l *todo.List, opts Options) Model {
	if opts.RefreshInterval <= 0 || opts.RefreshInterval > time.Minute {
		opts.RefreshInterval = time.Minute
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.New(false)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = systemClipboard{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		list:      l,
		ti:        ti,
		keys:      defaultKeyMap(),
		help:      help.New(),
		width:     80,
		height:    24,
		interval:  opts.RefreshInterval,
		notifier:  opts.Notifier,
		clipboard: opts.Clipboard,
		now:       opts.Now,
	}
	m.refresh()
	return m
}

// Run starts the program on the alternate screen and blocks until the user quits.
// Every change is already persisted, so nothing is saved on exit.
func Run(l *todo.List, opts Options) error {
	p := tea.NewProgram(New(l, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init fires the first tick right away so expiry checks run at startup.
func (m Model) Init() tea.Cmd {
	now := m.now()
	return func() tea.Msg { return tickMsg(now) }
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh re-sorts the list and rebuilds the view at the current time.
func (m *Model) refresh() {
	m.view = m.list.Render(m.now())
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.view.Rows) {
		m.cursor = len(m.view.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected() (todo.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Rows) {
		return todo.Row{}, false
	}
	return m.view.Rows[m.cursor], true
}

// focus moves the cursor onto the row holding id, if visible.
func (m *Model) focus(id uuid.UUID) {
	for i, r := range m.view.Rows {
		if r.ID == id {
			m.cursor = i
			return
		}
	}
}

// resolve maps the selected row to its current list index by ID, not by position.
func (m *Model) resolve() (int, bool) {
	r, ok := m.selected()
	if !ok {
		return -1, false
	}
	idx := m.list.IndexOf(r.ID)
	return idx, idx >= 0
}

func (m *Model) report(action string, err error) {
	if err == nil {
		return
	}
	logger.Error(action, err)
	if errors.Is(err, todo.ErrNoSuchItem) {
		m.status = action + ": no such item"
		return
	}
	m.status = action + ": " + err.Error()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		cmds := []tea.Cmd{m.scheduleTick()}
		for _, r := range m.notifier.Expired(m.view) {
			cmds = append(cmds, m.notifyCmd(r))
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case pastedMsg:
		if msg.err != nil {
			m.status = "paste: " + msg.err.Error()
			return m, nil
		}
		if m.mode != modeList {
			m.ti.SetValue(m.ti.Value() + msg.text)
			m.ti.CursorEnd()
		}
		return m, nil
	}

	if m.mode != modeList {
		return m.updateForm(msg)
	}
	return m.updateList(msg)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.status = ""

	switch {
	case key.Matches(k, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(k, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(k, m.keys.Down):
		if m.cursor < len(m.view.Rows)-1 {
			m.cursor++
		}

	case key.Matches(k, m.keys.Toggle):
		if idx, ok := m.resolve(); ok {
			r, _ := m.selected()
			m.report("toggle", m.list.ToggleDone(idx))
			m.refresh()
			m.focus(r.ID)
		}

	case key.Matches(k, m.keys.Delete):
		if idx, ok := m.resolve(); ok {
			m.report("delete", m.list.Delete(idx))
			m.refresh()
		}

	case key.Matches(k, m.keys.Group):
		m.list.SetGroupDoneMode(!m.list.GroupDone())
		m.refresh()

	case key.Matches(k, m.keys.HideDone):
		m.list.SetHideDoneMode(!m.list.HideDone())
		m.refresh()

	case key.Matches(k, m.keys.Copy):
		if r, ok := m.selected(); ok {
			return m, m.copyCmd(r.Text)
		}

	case key.Matches(k, m.keys.Add):
		m.mode = modeAddText
		m.addErr = ""
		m.pendingText = ""
		m.ti.SetValue("")
		m.ti.Placeholder = "New item text..."
		return m, m.ti.Focus()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Cancel):
			m.closeForm()
			return m, nil

		case key.Matches(k, m.keys.Paste):
			return m, m.pasteCmd()

		case key.Matches(k, m.keys.Confirm):
			if m.mode == modeAddText {
				text := strings.TrimSpace(m.ti.Value())
				if text == "" {
					m.addErr = "Text cannot be empty"
					return m, nil
				}
				m.pendingText = text
				m.mode = modeAddDue
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Placeholder = "Due (optional): 2006-01-02 15:04, +2h, +3d"
				return m, nil
			}
			return m.commitAdd()
		}
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) commitAdd() (tea.Model, tea.Cmd) {
	due, err := model.NormalizeDue(m.ti.Value(), m.now())
	if err != nil {
		m.addErr = err.Error()
		return m, nil
	}
	err = m.list.Add(m.pendingText, due)
	m.closeForm()
	if err != nil {
		m.report("add", err)
		m.refresh()
		return m, nil
	}
	var added uuid.UUID
	if n := m.list.Len(); n > 0 {
		added = m.list.Items()[n-1].ID
	}
	m.refresh()
	m.focus(added)
	return m, nil
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.pendingText = ""
	m.addErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model) copyCmd(text string) tea.Cmd {
	cb := m.clipboard
	return func() tea.Msg {
		if err := cb.WriteAll(text); err != nil {
			return statusMsg("Failed to copy: " + err.Error())
		}
		return statusMsg("Copied: " + text)
	}
}

func (m Model) pasteCmd() tea.Cmd {
	cb := m.clipboard
	return func() tea.Msg {
		text, err := cb.ReadAll()
		if err != nil {
			return pastedMsg{err: err}
		}
		// single-line inputs: keep the first line only
		text, _, _ = strings.Cut(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
		return pastedMsg{text: text}
	}
}

func (m Model) notifyCmd(r todo.Row) tea.Cmd {
	n := m.notifier
	return func() tea.Msg {
		if err := n.Send(r); err != nil {
			return nil
		}
		return statusMsg("Expired: " + r.Text)
	}
}
