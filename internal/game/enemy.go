package game

import (
	"fmt"
	"time"

	"github.com/chadspratt/do-again-list/internal/constants"
)

// Encounter is the enemy the client spawns for an end event.
type Encounter struct {
	Level    int  `json:"level"`
	Modifier Buff `json:"modifier"`
}

// EnemyContext is what a level policy may look at.
type EnemyContext struct {
	KillStreak  int
	PreviousEnd *time.Time
	At          time.Time
}

// EnemyLevelPolicy picks the level of the next enemy.
type EnemyLevelPolicy interface {
	Level(ctx EnemyContext) int
}

// KillStreakPolicy raises the enemy one level for every three kills in a row.
type KillStreakPolicy struct{}

func (KillStreakPolicy) Level(ctx EnemyContext) int {
	streak := ctx.KillStreak
	if streak < 0 {
		streak = 0
	}
	return streak/constants.KillsPerEnemyLevel + 1
}

// HoursSincePolicy scales the enemy with the hours since the habit last ended.
type HoursSincePolicy struct{}

func (HoursSincePolicy) Level(ctx EnemyContext) int {
	if ctx.PreviousEnd == nil {
		return constants.MinEnemyLevel
	}
	hours := int(ctx.At.Sub(*ctx.PreviousEnd).Hours())
	return clamp(1+hours, constants.MinEnemyLevel, constants.MaxEnemyLevel)
}

// PolicyFor maps a stored setting to its policy.
func PolicyFor(name constants.EnemyLevelPolicy) (EnemyLevelPolicy, error) {
	switch name {
	case constants.EnemyLevelKillStreak, "":
		return KillStreakPolicy{}, nil
	case constants.EnemyLevelHoursSince:
		return HoursSincePolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown enemy level policy %q", name)
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
