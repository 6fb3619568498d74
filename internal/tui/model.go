package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/logger"
	"github.com/chadspratt/do-again-list/internal/models"
	"github.com/chadspratt/do-again-list/internal/tui/components/habitlist"
	"github.com/chadspratt/do-again-list/internal/tui/components/messagelog"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateHero
	StateLog
	StateAddHabit
	StateConfirmDelete
)

var tabs = []string{"Habits", "Hero", "Log"}

type Model struct {
	svc             *activity.Service
	owner           string
	loc             *time.Location
	now             func() time.Time
	state           SessionState
	keys            KeyMap
	help            help.Model
	habitList       habitlist.Model
	log             messagelog.Model
	hero            models.Character
	form            *huh.Form
	habitForm       *HabitForm
	habitToDeleteID string
	habitToDelete   string
	formError       string
	status          string
	quitting        bool
	width           int
	height          int
}

func NewModel(svc *activity.Service, owner string, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	m := Model{
		svc:       svc,
		owner:     owner,
		loc:       loc,
		now:       time.Now,
		state:     StateHabits,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitList: habitlist.New(nil, time.Now(), 0, 0),
		log:       messagelog.New(0, 0),
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateHabits {
		hk := habitlist.DefaultKeyMap()
		keys = append(keys, hk.Start, hk.End, hk.Add)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == StateHabits {
		hk := habitlist.DefaultKeyMap()
		actions = []key.Binding{hk.Add, hk.Start, hk.End, hk.ClearNext, hk.Delete}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) ctx() context.Context {
	return context.Background()
}

// refresh reloads habits and the hero from storage. Failures land in the
// status line so the UI keeps running.
func (m *Model) refresh() {
	habits, err := m.svc.ListHabits(m.ctx(), m.owner)
	if err != nil {
		m.fail("Failed to load habits", err)
		return
	}
	m.habitList.SetHabits(habits, m.now())

	hero, err := m.svc.GetCharacter(m.ctx(), m.owner)
	if err != nil {
		m.fail("Failed to load hero", err)
		return
	}
	m.hero = hero
}

func (m *Model) fail(what string, err error) {
	logger.Error(what, "error", err)
	m.status = what + ": " + err.Error()
}

// record writes an outcome to the log the same way the CLI prints it.
func (m *Model) record(header string, out activity.Outcome) {
	var b strings.Builder
	cli.PrintOutcome(&b, out)
	m.log.Append(header)
	m.log.Append(strings.Split(b.String(), "\n")...)
	m.status = header
	if len(out.Messages) > 0 {
		m.status = out.Messages[0]
	}
}
