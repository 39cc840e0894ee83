package protocols

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/momentum/internal/dashboard"
)

type ToggleMsg struct {
	ID string
}

type RefreshMsg struct{}

type Item struct {
	dashboard.Item
}

func (i Item) Title() string {
	if i.State == dashboard.Done {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string { return i.State.String() }

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Toggle  key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space/enter", "toggle"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Protocols"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Refresh}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

// SetItems replaces the rows, keeping the cursor where it was
func (m *Model) SetItems(items []dashboard.Item) {
	rows := make([]list.Item, len(items))
	for i, it := range items {
		rows[i] = Item{Item: it}
	}
	m.list.SetItems(rows)
}

func (m Model) Items() []Item {
	rows := m.list.Items()
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		if it, ok := r.(Item); ok {
			items = append(items, it)
		}
	}
	return items
}

// Select moves the cursor to row i
func (m *Model) Select(i int) {
	m.list.Select(i)
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleMsg{ID: i.Habit.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return ""
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
