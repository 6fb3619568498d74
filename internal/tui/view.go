package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateHabits:
		content = docStyle.Render(m.habitList.View())
	case StateHero:
		content = docStyle.Render(m.viewHero())
	case StateLog:
		content = docStyle.Render(m.log.View())
	case StateAddHabit:
		content = m.viewForm()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		statusStyle.Render(m.status),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var out []string
	for i, title := range tabs {
		if m.state == SessionState(i) {
			out = append(out, activeTabStyle.Render(title))
		} else {
			out = append(out, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m Model) viewHero() string {
	s := m.hero.Snapshot()
	var b strings.Builder
	b.WriteString(heroTitleStyle.Render(fmt.Sprintf("Hero, level %d", s.Level)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "XP       %d / %d\n", s.XP, s.XPToNextLevel)
	fmt.Fprintf(&b, "Gold     %d\n", s.Gold)
	fmt.Fprintf(&b, "Attack   %d (base %d)\n", s.TotalAttack, s.BaseAttack)
	fmt.Fprintf(&b, "Defense  %d (base %d)\n", s.TotalDefense, s.BaseDefense)
	fmt.Fprintf(&b, "Speed    %d (base %d)\n", s.TotalSpeed, s.BaseSpeed)
	fmt.Fprintf(&b, "Streak   %d\n", s.Streak)
	if s.HeroHP >= 0 {
		fmt.Fprintf(&b, "HP       %d\n", s.HeroHP)
	}
	if len(s.Items) > 0 {
		fmt.Fprintf(&b, "Items    %s\n", strings.Join(s.Items, ", "))
	}
	return b.String()
}

func (m Model) viewForm() string {
	view := m.form.View()
	if m.formError != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, "", warningStyle.Render(m.formError))
	}
	return docStyle.Render(view)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q?", m.habitToDelete)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
