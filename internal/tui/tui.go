// Package tui is the interactive list. It renders the collection, turns key
// presses into manager calls and re-renders whenever the manager reports a
// change. Toggle and delete are applied tentatively for instant feedback and
// committed in the background.
package tui

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todo"
)

// listItem adapts a todo to bubbles/list.Item
type listItem struct {
	todo model.TodoItem
}

func (i listItem) Title() string       { return i.todo.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.todo.Text
	if it.todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

type mode int

const (
	browsing mode = iota
	adding
	editing
)

// changedMsg tells the model the manager's collection changed.
type changedMsg struct{}

// actionDoneMsg carries the result of a background commit or action.
type actionDoneMsg struct {
	op  string
	res model.ActionState
}

type keyMap struct {
	toggle, remove, add, edit, quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		remove: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

// Model is the bubbletea model for the todo list.
type Model struct {
	mgr     *todo.Manager
	changes <-chan struct{}
	cancel  func()

	list list.Model
	keys keyMap
	ti   textinput.Model
	spin spinner.Model

	mode     mode
	editID   int64
	addState model.ActionState // last add result, fed back as prevState
	inputErr string
	status   string
	pending  int

	width, height int
}

// New builds the model and subscribes to mgr. Call Stop when done.
func New(mgr *todo.Manager) Model {
	changes := make(chan struct{}, 1)
	cancel := mgr.Subscribe(func(model.Collection) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	keys := newKeyMap()
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	extra := func() []key.Binding { return []key.Binding{keys.toggle, keys.remove, keys.add, keys.edit} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pendingStyle

	m := Model{
		mgr:     mgr,
		changes: changes,
		cancel:  cancel,
		list:    l,
		keys:    keys,
		ti:      ti,
		spin:    sp,
		width:   80,
		height:  24,
	}
	m.refresh()
	return m
}

// Stop cancels the manager subscription.
func (m Model) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Run starts the interactive list and blocks until the user quits.
func Run(mgr *todo.Manager, opts ...tea.ProgramOption) error {
	m := New(mgr)
	defer m.Stop()
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// refresh reloads the list from the manager, keeping the cursor in range.
func (m *Model) refresh() tea.Cmd {
	todos := m.mgr.Todos()
	items := make([]list.Item, 0, len(todos))
	for _, it := range todos {
		items = append(items, listItem{todo: it})
	}
	cmd := m.list.SetItems(items)

	done, pending := todos.Stats()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(todos),
	)
	return cmd
}

func (m Model) selected() (model.TodoItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.TodoItem{}, false
	}
	return it.todo, true
}

// startPending counts an in-flight operation and starts the spinner on the first one.
func (m *Model) startPending() tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return m.spin.Tick
	}
	return nil
}

func (m Model) Init() tea.Cmd { return waitForChange(m.changes) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.refresh(), waitForChange(m.changes))

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case actionDoneMsg:
		return m.finish(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case adding, editing:
			return m.updateInput(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.updateBrowsing(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		if m.list.FilterState() == list.FilterApplied {
			m.list.ResetFilter()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggle):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		t := m.mgr.TentativeToggle(it.ID)
		m.status = ""
		return m, tea.Batch(m.startPending(), func() tea.Msg {
			return actionDoneMsg{op: "toggle", res: t.CommitOrRevert()}
		})

	case key.Matches(msg, m.keys.remove):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		t := m.mgr.TentativeDelete(it.ID)
		m.status = ""
		return m, tea.Batch(m.startPending(), func() tea.Msg {
			return actionDoneMsg{op: "delete", res: t.CommitOrRevert()}
		})

	case key.Matches(msg, m.keys.add):
		m.mode = adding
		m.inputErr = ""
		m.ti.SetValue("")
		m.ti.Placeholder = "New todo..."
		m.resize()
		return m, m.ti.Focus()

	case key.Matches(msg, m.keys.edit):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = editing
		m.editID = it.ID
		m.inputErr = ""
		m.ti.SetValue(it.Text)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit todo..."
		m.resize()
		return m, m.ti.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		text := m.ti.Value()
		mgr := m.mgr
		if m.mode == adding {
			prev := m.addState
			return m, tea.Batch(m.startPending(), func() tea.Msg {
				return actionDoneMsg{op: "add", res: mgr.AddAction(prev, url.Values{todo.FormField: {text}})}
			})
		}
		id := m.editID
		return m, tea.Batch(m.startPending(), func() tea.Msg {
			return actionDoneMsg{op: "update", res: mgr.UpdateAction(id, text)}
		})
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

// finish applies the outcome of a background operation.
func (m Model) finish(msg actionDoneMsg) Model {
	if m.pending > 0 {
		m.pending--
	}
	switch msg.op {
	case "add":
		m.addState = msg.res
		if msg.res.Success {
			// stay in add mode for the next entry
			m.ti.SetValue("")
			m.inputErr = ""
		} else {
			m.inputErr = msg.res.Error
		}
	case "update":
		if msg.res.Success {
			m.closeInput()
		} else {
			m.inputErr = msg.res.Error
		}
	default:
		if !msg.res.Success {
			m.status = msg.res.Error
		}
	}
	return m
}

func (m *Model) closeInput() {
	m.mode = browsing
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *Model) resize() {
	h := m.height - 4
	if m.mode != browsing {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.list.SetSize(w, h)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())

	if m.mode != browsing {
		title := "Add todo"
		if m.mode == editing {
			title = "Edit todo"
		}
		if m.inputErr != "" {
			title += "  " + errorStyle.Render(m.inputErr)
		}
		b.WriteString("\n" + frameStyle.Render(title+"\n"+m.ti.View()))
	}

	var status []string
	if m.pending > 0 {
		status = append(status, m.spin.View()+" saving")
	}
	if m.status != "" {
		status = append(status, errorStyle.Render(m.status))
	}
	if len(status) > 0 {
		b.WriteString("\n" + strings.Join(status, "  "))
	}
	return frameStyle.Render(b.String())
}
