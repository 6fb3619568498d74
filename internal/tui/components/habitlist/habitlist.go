package habitlist

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/chadspratt/do-again-list/internal/models"
)

type AddHabitMsg struct{}

type StartHabitMsg struct {
	ID string
}

type EndHabitMsg struct {
	ID string
}

type ClearNextMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID    string
	Title string
}

type Item struct {
	Habit models.Habit
	Now   time.Time
}

func (i Item) Title() string {
	switch {
	case i.Habit.InProgress():
		return "▶ " + i.Habit.Title
	case i.overdue():
		return "! " + i.Habit.Title
	default:
		return "○ " + i.Habit.Title
	}
}

func (i Item) Description() string {
	parts := []string{string(i.Habit.MoralQuality())}
	switch {
	case i.Habit.InProgress():
		parts = append(parts, "started "+humanize.RelTime(*i.Habit.StartTime, i.Now, "ago", "from now"))
	case i.Habit.EndTime != nil:
		parts = append(parts, "last done "+humanize.RelTime(*i.Habit.EndTime, i.Now, "ago", "from now"))
	default:
		parts = append(parts, "never done")
	}
	if i.Habit.NextTime != nil {
		parts = append(parts, "next "+humanize.RelTime(*i.Habit.NextTime, i.Now, "ago", "from now"))
	}
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string { return i.Habit.Title }

func (i Item) overdue() bool {
	return i.Habit.NextTime != nil && i.Habit.NextTime.Before(i.Now)
}

type KeyMap struct {
	Add       key.Binding
	Start     key.Binding
	End       key.Binding
	ClearNext key.Binding
	Delete    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		End: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "end"),
		),
		ClearNext: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear next"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, now time.Time, width, height int) Model {
	l := list.New(items(habits, now), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Start, keys.End, keys.Add}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Start, keys.End, keys.ClearNext, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func items(habits []models.Habit, now time.Time) []list.Item {
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		out[i] = Item{Habit: h, Now: now}
	}
	return out
}

func (m *Model) SetHabits(habits []models.Habit, now time.Time) {
	m.list.SetItems(items(habits, now))
}

// Selected returns the highlighted habit, if any.
func (m Model) Selected() (models.Habit, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Habit, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Add) {
			return m, func() tea.Msg { return AddHabitMsg{} }
		}
		if h, ok := m.Selected(); ok {
			switch {
			case key.Matches(msg, m.keys.Start):
				return m, func() tea.Msg { return StartHabitMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.End):
				return m, func() tea.Msg { return EndHabitMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.ClearNext):
				return m, func() tea.Msg { return ClearNextMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteHabitMsg{ID: h.ID, Title: h.Title} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Len is the number of habits shown.
func (m Model) Len() int { return len(m.list.Items()) }
