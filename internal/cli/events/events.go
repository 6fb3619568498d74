// Package events holds the commands that move a habit through its
// start, end and next-time lifecycle.
package events

import (
	"fmt"
	"os"
	"strings"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/constants"
)

type StartCmd struct {
	Habit string `arg:"" help:"Habit id or title."`
	At    string `help:"When it started: an offset ago like 15m, RFC 3339, or 'YYYY-MM-DD HH:MM'." default:""`
}

func (c *StartCmd) Run(ctx *cli.Context) error {
	id, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	at, err := cli.ParseAt(c.At, ctx.Now())
	if err != nil {
		return err
	}

	out, err := ctx.Service.StartActivity(ctx.Background(), id, at)
	if err != nil {
		return err
	}
	fmt.Printf("Started %s at %s\n", out.Habit.Title, at.In(ctx.TimeZone()).Format(constants.DateTimeFormat))
	cli.PrintOutcome(os.Stdout, out)
	return nil
}

type EndCmd struct {
	Habit      string `arg:"" help:"Habit id or title."`
	At         string `help:"When it ended: an offset ago like 15m, RFC 3339, or 'YYYY-MM-DD HH:MM'." default:""`
	KillStreak *int   `help:"Kill streak reported by the battle client; picks the enemy level."`
}

func (c *EndCmd) Run(ctx *cli.Context) error {
	id, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	at, err := cli.ParseAt(c.At, ctx.Now())
	if err != nil {
		return err
	}

	out, err := ctx.Service.EndActivity(ctx.Background(), id, at, activity.EndOptions{KillStreak: c.KillStreak})
	if err != nil {
		return err
	}
	fmt.Printf("Ended %s at %s\n", out.Habit.Title, at.In(ctx.TimeZone()).Format(constants.DateTimeFormat))
	cli.PrintOutcome(os.Stdout, out)
	return nil
}

type NextCmd struct {
	Habit string `arg:"" help:"Habit id or title."`
	In    string `arg:"" optional:"" help:"How far ahead, like 2h or 1d, or 'YYYY-MM-DD HH:MM'."`
	Clear bool   `help:"Remove the scheduled time."`
}

func (c *NextCmd) Run(ctx *cli.Context) error {
	id, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	if c.Clear {
		h, err := ctx.Service.SetNextActivity(ctx.Background(), id, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Cleared next time for %s\n", h.Title)
		return nil
	}
	if strings.TrimSpace(c.In) == "" {
		return fmt.Errorf("give a time for the next occurrence or pass --clear")
	}

	at, err := cli.ParseAhead(c.In, ctx.Now())
	if err != nil {
		return err
	}
	h, err := ctx.Service.SetNextActivity(ctx.Background(), id, &at)
	if err != nil {
		return err
	}
	fmt.Printf("%s is next due %s\n", h.Title, cli.FormatTime(h.NextTime, ctx.Now(), ctx.TimeZone()))
	return nil
}
