package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/offset"
)

// HabitForm is the editable state behind the add-habit form. Numbers are
// kept as text so the inputs can bind to them.
type HabitForm struct {
	Title           string
	DefaultDuration string
	MinDuration     string
	MaxDuration     string
	MinGap          string
	MaxGap          string
	Value           string
	Repeats         bool

	ordering int
}

// HabitFormFromInput prefills a form, e.g. from command line flags.
func HabitFormFromInput(in activity.HabitInput) *HabitForm {
	fm := &HabitForm{
		Title:       in.Title,
		MinDuration: in.MinDuration,
		MaxDuration: in.MaxDuration,
		MinGap:      in.MinTimeBetweenEvents,
		MaxGap:      in.MaxTimeBetweenEvents,
		Value:       "1",
		Repeats:     true,
		ordering:    in.Ordering,
	}
	if in.DefaultDuration > 0 {
		fm.DefaultDuration = strconv.Itoa(in.DefaultDuration)
	}
	if in.Value != nil {
		fm.Value = strconv.FormatFloat(*in.Value, 'f', -1, 64)
	}
	if in.Repeats != nil {
		fm.Repeats = *in.Repeats
	}
	return fm
}

// Input converts the form back into a habit definition.
func (fm *HabitForm) Input() (activity.HabitInput, error) {
	in := activity.HabitInput{
		Title:                strings.TrimSpace(fm.Title),
		Ordering:             fm.ordering,
		MinDuration:          strings.TrimSpace(fm.MinDuration),
		MaxDuration:          strings.TrimSpace(fm.MaxDuration),
		MinTimeBetweenEvents: strings.TrimSpace(fm.MinGap),
		MaxTimeBetweenEvents: strings.TrimSpace(fm.MaxGap),
	}
	if s := strings.TrimSpace(fm.DefaultDuration); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return activity.HabitInput{}, fmt.Errorf("default duration: %w", err)
		}
		in.DefaultDuration = n
	}
	if s := strings.TrimSpace(fm.Value); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return activity.HabitInput{}, fmt.Errorf("value: %w", err)
		}
		in.Value = &v
	}
	repeats := fm.Repeats
	in.Repeats = &repeats
	return in, nil
}

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *HabitForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Max time between (good habit)").
				Description("e.g. 1d. Leave blank if it can wait forever").
				Value(&fm.MaxGap).
				Validate(offset.Validate),
			huh.NewInput().
				Title("Min time between (bad habit)").
				Description("e.g. 3d. Leave blank if there is no cooldown").
				Value(&fm.MinGap).
				Validate(offset.Validate),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Default duration (min)").
				Value(&fm.DefaultDuration).
				Validate(validateMinutes),
			huh.NewInput().
				Title("Min duration").
				Value(&fm.MinDuration).
				Validate(offset.Validate),
			huh.NewInput().
				Title("Max duration").
				Value(&fm.MaxDuration).
				Validate(offset.Validate),
			huh.NewInput().
				Title("Value").
				Value(&fm.Value).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					return err
				}),
			huh.NewConfirm().
				Title("Repeats").
				Value(&fm.Repeats),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateMinutes(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}
