// Package hero shows and updates the character that habit completions feed.
package hero

import (
	"fmt"
	"os"

	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/game"
)

type HeroCmd struct {
	Show HeroShowCmd `cmd:"" default:"1" help:"Show the hero and derived stats."`
	Sync HeroSyncCmd `cmd:"" help:"Merge a battle result into the hero."`
}

type HeroShowCmd struct{}

func (c *HeroShowCmd) Run(ctx *cli.Context) error {
	char, err := ctx.Service.GetCharacter(ctx.Background(), ctx.Owner)
	if err != nil {
		return err
	}
	cli.PrintCharacter(os.Stdout, char)
	return nil
}

type HeroSyncCmd struct {
	Gold   int  `help:"Gold earned in battle."`
	XP     int  `help:"Experience earned in battle."`
	Streak int  `help:"Current kill streak."`
	HeroHP *int `name:"hero-hp" help:"Remaining hero hit points."`
}

func (c *HeroSyncCmd) Run(ctx *cli.Context) error {
	char, msgs, err := ctx.Service.ApplyExternalSync(ctx.Background(), ctx.Owner, game.SyncInput{
		Gold:   c.Gold,
		XP:     c.XP,
		Streak: c.Streak,
		HeroHP: c.HeroHP,
	})
	if err != nil {
		return err
	}
	for _, m := range msgs {
		fmt.Println(m)
	}
	cli.PrintCharacter(os.Stdout, char)
	return nil
}
