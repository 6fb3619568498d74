package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/models"
	"github.com/chadspratt/do-again-list/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.help.Width = size.Width
		h, v := docStyle.GetFrameSize()
		// tabs, status and help take four rows
		m.habitList.SetSize(size.Width-h, size.Height-v-4)
		m.log.SetSize(size.Width-h, size.Height-v-4)
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = HabitFormFromInput(activity.HabitInput{})
		m.form = NewHabitForm(m.habitForm)
		m.formError = ""
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.StartHabitMsg:
		out, err := m.svc.StartActivity(m.ctx(), msg.ID, time.Time{})
		if err != nil {
			m.fail("Failed to start", err)
			return m, nil
		}
		m.record("Started "+out.Habit.Title, out)
		m.refresh()
		return m, nil

	case habitlist.EndHabitMsg:
		out, err := m.svc.EndActivity(m.ctx(), msg.ID, time.Time{}, activity.EndOptions{})
		if err != nil {
			m.fail("Failed to end", err)
			return m, nil
		}
		m.record("Ended "+out.Habit.Title, out)
		m.refresh()
		return m, nil

	case habitlist.ClearNextMsg:
		h, err := m.svc.SetNextActivity(m.ctx(), msg.ID, nil)
		if err != nil {
			m.fail("Failed to clear next time", err)
			return m, nil
		}
		m.status = "Cleared next time for " + h.Title
		m.refresh()
		return m, nil

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.habitToDelete = msg.Title
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabs))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + SessionState(len(tabs))) % SessionState(len(tabs))
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateHabits:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateLog:
		m.log, cmd = m.log.Update(msg)
	}
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.submitHabitForm()
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, cmd
}

// submitHabitForm creates the habit. On failure the form stays open with
// the error shown so the user can fix it or press esc.
func (m *Model) submitHabitForm() {
	in, err := m.habitForm.Input()
	if err == nil {
		var h models.Habit
		var out activity.Outcome
		if h, out, err = m.svc.CreateHabit(m.ctx(), m.owner, in); err == nil {
			m.formError = ""
			m.record("Added "+h.Title, out)
			m.refresh()
			m.state = StateHabits
			return
		}
	}
	m.formError = fmt.Sprintf("Failed to add habit: %v", err)
	m.form.State = huh.StateNormal
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.svc.DeleteHabit(m.ctx(), m.habitToDeleteID); err != nil {
			m.fail("Failed to delete", err)
		} else {
			m.status = "Deleted " + m.habitToDelete
			m.log.Append(m.status)
			m.refresh()
		}
		m.habitToDeleteID, m.habitToDelete = "", ""
		m.state = StateHabits
	case key.Matches(keyMsg, m.keys.Cancel):
		m.habitToDeleteID, m.habitToDelete = "", ""
		m.state = StateHabits
	}
	return m, nil
}
