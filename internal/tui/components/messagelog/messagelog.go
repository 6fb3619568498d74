// Package messagelog is a scrollable log of game messages, newest last.
package messagelog

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MaxLines bounds how much history the log keeps.
const MaxLines = 200

var emptyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")).
	Italic(true)

type Model struct {
	viewport viewport.Model
	lines    []string
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.lines) == 0 {
		return emptyStyle.Render("Nothing has happened yet.")
	}
	return m.viewport.View()
}

// Append adds lines and scrolls to the bottom.
func (m *Model) Append(lines ...string) {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			m.lines = append(m.lines, l)
		}
	}
	if over := len(m.lines) - MaxLines; over > 0 {
		m.lines = m.lines[over:]
	}
	m.render()
}

func (m Model) Lines() []string { return m.lines }

// Last returns the newest line, or "" when the log is empty.
func (m Model) Last() string {
	if len(m.lines) == 0 {
		return ""
	}
	return m.lines[len(m.lines)-1]
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) render() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}
