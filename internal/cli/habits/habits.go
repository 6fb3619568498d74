package habits

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/constants"
	"github.com/chadspratt/do-again-list/internal/offset"
	"github.com/chadspratt/do-again-list/internal/tui"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Edit    HabitEditCmd    `cmd:"" help:"Change a habit's bounds or details."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	History HabitHistoryCmd `cmd:"" help:"Show a habit's past occurrences."`
}

type HabitAddCmd struct {
	Title           string   `arg:"" optional:"" help:"Habit title."`
	DefaultDuration int      `help:"Default duration in minutes." default:"0"`
	MinDuration     string   `help:"Minimum occurrence length, e.g. 20m."`
	MaxDuration     string   `help:"Maximum occurrence length, e.g. 1h."`
	MinGap          string   `help:"Minimum time between occurrences (bad habits), e.g. 2d."`
	MaxGap          string   `help:"Maximum time between occurrences (good habits), e.g. 1d."`
	Value           *float64 `help:"Weight of the habit."`
	NoRepeat        bool     `help:"Mark as a one-off."`
	Ordering        int      `help:"Display rank." default:"0"`
	Interactive     bool     `short:"i" help:"Fill in the habit with a form."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	in := activity.HabitInput{
		Title:                c.Title,
		Ordering:             c.Ordering,
		DefaultDuration:      c.DefaultDuration,
		MinDuration:          c.MinDuration,
		MaxDuration:          c.MaxDuration,
		MinTimeBetweenEvents: c.MinGap,
		MaxTimeBetweenEvents: c.MaxGap,
		Value:                c.Value,
	}
	if c.NoRepeat {
		repeats := false
		in.Repeats = &repeats
	}

	if c.Interactive {
		form := tui.HabitFormFromInput(in)
		if err := tui.NewHabitForm(form).Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		var err error
		if in, err = form.Input(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("a title is required (pass it as an argument or use --interactive)")
	}

	h, out, err := ctx.Service.CreateHabit(ctx.Background(), ctx.Owner, in)
	if err != nil {
		return err
	}
	fmt.Printf("Added habit: %s (%s, id %s)\n", h.Title, h.MoralQuality(), h.ID)
	cli.PrintOutcome(os.Stdout, out)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Service.ListHabits(ctx.Background(), ctx.Owner)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	now, loc := ctx.Now(), ctx.TimeZone()
	for _, h := range habits {
		status := ""
		if h.InProgress() {
			status = " [IN PROGRESS]"
		}
		fmt.Printf("%s%s  (%s)\n", h.Title, status, h.MoralQuality())
		fmt.Printf("  id:   %s\n", h.ID)
		if b := describeBounds(h.MinTimeBetweenEvents, h.MaxTimeBetweenEvents); b != "" {
			fmt.Printf("  gap:  %s\n", b)
		}
		if b := describeBounds(h.MinDuration, h.MaxDuration); b != "" {
			fmt.Printf("  length: %s\n", b)
		}
		fmt.Printf("  last: %s\n", cli.FormatTime(h.EndTime, now, loc))
		if h.NextTime != nil {
			fmt.Printf("  next: %s\n", cli.FormatTime(h.NextTime, now, loc))
		}
	}
	return nil
}

func describeBounds(min, max string) string {
	b := make([]string, 0, 2)
	if d, ok := offset.Parse(min); ok && d > 0 {
		b = append(b, "at least "+offset.Humanize(d))
	}
	if d, ok := offset.Parse(max); ok && d > 0 {
		b = append(b, "at most "+offset.Humanize(d))
	}
	return strings.Join(b, ", ")
}

type HabitEditCmd struct {
	Habit           string   `arg:"" help:"Habit id or title."`
	Title           *string  `help:"New title."`
	DefaultDuration *int     `help:"Default duration in minutes."`
	MinDuration     *string  `help:"Minimum occurrence length; empty clears it."`
	MaxDuration     *string  `help:"Maximum occurrence length; empty clears it."`
	MinGap          *string  `help:"Minimum time between occurrences; empty clears it."`
	MaxGap          *string  `help:"Maximum time between occurrences; empty clears it."`
	Value           *float64 `help:"Weight of the habit."`
	Repeats         *bool    `help:"Whether the habit repeats."`
	Ordering        *int     `help:"Display rank."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	id, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	h, err := ctx.Service.UpdateHabitSettings(ctx.Background(), id, activity.SettingsPatch{
		Title:                c.Title,
		Ordering:             c.Ordering,
		DefaultDuration:      c.DefaultDuration,
		MinDuration:          c.MinDuration,
		MaxDuration:          c.MaxDuration,
		MinTimeBetweenEvents: c.MinGap,
		MaxTimeBetweenEvents: c.MaxGap,
		Value:                c.Value,
		Repeats:              c.Repeats,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s (%s)\n", h.Title, h.MoralQuality())
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or title."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	id, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Service.DeleteHabit(ctx.Background(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", c.Habit)
	return nil
}

type HabitHistoryCmd struct {
	Habit string `arg:"" help:"Habit id or title."`
	Limit int    `help:"Number of occurrences to show; 0 shows all." default:"20"`
}

func (c *HabitHistoryCmd) Run(ctx *cli.Context) error {
	id, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	occs, err := ctx.Service.History(ctx.Background(), id, c.Limit)
	if err != nil {
		return err
	}
	if len(occs) == 0 {
		fmt.Println("No occurrences yet.")
		return nil
	}

	loc := ctx.TimeZone()
	for _, o := range occs {
		switch {
		case !o.Started():
			fmt.Printf("scheduled for %s\n", o.NextTime.In(loc).Format(constants.DateTimeFormat))
		case o.IsOpen():
			fmt.Printf("%s  in progress\n", o.StartTime.In(loc).Format(constants.DateTimeFormat))
		default:
			d, _ := o.Duration()
			length := offset.Humanize(d)
			if length == "" {
				length = "0s"
			}
			fmt.Printf("%s  %s\n", o.StartTime.In(loc).Format(constants.DateTimeFormat), length)
		}
	}
	return nil
}
