package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
)

// PrintOutcome writes the messages and encounter of a lifecycle call.
func PrintOutcome(w io.Writer, out activity.Outcome) {
	for _, msg := range out.Messages {
		style := goodStyle
		switch {
		case out.NeverStarted, out.Effect.ResetStreak:
			style = warningStyle
		case strings.HasPrefix(msg, "Bad"):
			style = badStyle
		}
		fmt.Fprintln(w, style.Render(msg))
	}
	if out.Effect.Gold != 0 {
		fmt.Fprintf(w, "%s %+d\n", mutedStyle.Render("Gold:"), out.Effect.Gold)
	}
	if out.Encounter != nil {
		fmt.Fprintf(w, "%s level %d (%s)\n", mutedStyle.Render("Enemy:"), out.Encounter.Level, out.Encounter.Modifier)
	}
	if out.PendingHeal {
		fmt.Fprintln(w, goodStyle.Render("Your hero will be healed before the next battle."))
	}
	if out.PendingFatigue {
		fmt.Fprintln(w, badStyle.Render("Your hero is fatigued."))
	}
}

// PrintCharacter writes a character with its derived stats.
func PrintCharacter(w io.Writer, c models.Character) {
	s := c.Snapshot()
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Hero (level %d)", s.Level)))
	fmt.Fprintf(w, "  XP:       %d / %d\n", s.XP, s.XPToNextLevel)
	fmt.Fprintf(w, "  Gold:     %d\n", s.Gold)
	fmt.Fprintf(w, "  Attack:   %d (base %d)\n", s.TotalAttack, s.BaseAttack)
	fmt.Fprintf(w, "  Defense:  %d (base %d)\n", s.TotalDefense, s.BaseDefense)
	fmt.Fprintf(w, "  Speed:    %d (base %d)\n", s.TotalSpeed, s.BaseSpeed)
	fmt.Fprintf(w, "  Streak:   %d\n", s.Streak)
	fmt.Fprintf(w, "  Distance: %d\n", s.BestDistance)
	if s.HeroHP >= 0 {
		fmt.Fprintf(w, "  HP:       %d\n", s.HeroHP)
	}
}
