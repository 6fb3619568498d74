package game

import (
	"fmt"
	"slices"

	"github.com/chadspratt/do-again-list/internal/models"
)

// Apply returns c with e applied, plus the effect's messages followed by any
// level-up messages. c itself is not modified.
func Apply(c models.Character, e Effect) (models.Character, []string) {
	out := c
	out.Items = slices.Clone(c.Items)

	d := e.Delta
	out.Gold += e.Gold + d.Gold
	out.Level += d.Level
	out.BaseAttack += d.BaseAttack
	out.BaseDefense += d.BaseDefense
	out.BaseSpeed += d.BaseSpeed
	out.BestDistance += d.BestDistance
	out.HeroHP += d.HeroHP
	if e.ResetStreak {
		out.Streak = 0
	}
	out.Streak += d.Streak

	out.XP += d.XP
	if out.XP < 0 {
		out.XP = 0
	}

	msgs := append([]string(nil), e.Messages...)
	return levelUp(out, msgs)
}

func levelUp(c models.Character, msgs []string) (models.Character, []string) {
	if c.Level < 1 {
		c.Level = 1
	}
	for c.XP >= models.XPThreshold(c.Level) {
		c.XP -= models.XPThreshold(c.Level)
		c.Level++
		msgs = append(msgs, fmt.Sprintf("Level up! Now level %d", c.Level))
	}
	return c, msgs
}

// SyncInput is a battle result reported by the client.
type SyncInput struct {
	Gold   int  `json:"gold"`
	XP     int  `json:"xp"`
	Streak int  `json:"streak"`
	HeroHP *int `json:"hero_hp"`
}

// Sync merges a client battle result. Negative gold, XP or streak are
// treated as zero; hero HP is replaced when given.
func Sync(c models.Character, in SyncInput) (models.Character, []string) {
	out := c
	out.Items = slices.Clone(c.Items)

	out.Gold += max(0, in.Gold)
	out.XP += max(0, in.XP)
	out.Streak = max(0, in.Streak)
	if in.HeroHP != nil {
		out.HeroHP = *in.HeroHP
	}
	return levelUp(out, nil)
}
