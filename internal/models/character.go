package models

import (
	"time"

	"github.com/chadspratt/do-again-list/internal/constants"
)

// Character is the per-owner game progress driven by habit completions.
type Character struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	XP           int       `json:"xp"`
	Gold         int       `json:"gold"`
	Level        int       `json:"level"`
	BaseAttack   int       `json:"base_attack"`
	BaseDefense  int       `json:"base_defense"`
	BaseSpeed    int       `json:"base_speed"`
	BestDistance int       `json:"best_distance"`
	Streak       int       `json:"streak"`
	HeroHP       int       `json:"hero_hp"` // -1 until the client persists a value
	Items        []string  `json:"items"`
	Version      int       `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCharacter returns the starting character for an owner.
func NewCharacter(id, owner string, now time.Time) Character {
	return Character{
		ID:          id,
		OwnerID:     owner,
		Level:       constants.StartingLevel,
		BaseAttack:  constants.StartingBaseAttack,
		BaseDefense: constants.StartingBaseDefense,
		BaseSpeed:   constants.StartingBaseSpeed,
		HeroHP:      constants.HeroHPUnset,
		Items:       []string{},
		UpdatedAt:   now,
	}
}

func (c Character) TotalAttack() int { return c.BaseAttack + c.Level }

func (c Character) TotalDefense() int { return c.BaseDefense + c.Level/2 }

func (c Character) TotalSpeed() int {
	bonus := c.Streak / 3
	if bonus < 0 {
		bonus = 0
	}
	return c.BaseSpeed + bonus
}

// XPToNextLevel is the XP needed to leave the current level.
func (c Character) XPToNextLevel() int { return XPThreshold(c.Level) }

// XPThreshold is the XP needed to leave level.
func XPThreshold(level int) int { return level * constants.XPPerLevel }

// Snapshot is the character plus its derived stats, as sent to clients.
type Snapshot struct {
	Character
	TotalAttack   int `json:"total_attack"`
	TotalDefense  int `json:"total_defense"`
	TotalSpeed    int `json:"total_speed"`
	XPToNextLevel int `json:"xp_to_next_level"`
}

func (c Character) Snapshot() Snapshot {
	return Snapshot{
		Character:     c,
		TotalAttack:   c.TotalAttack(),
		TotalDefense:  c.TotalDefense(),
		TotalSpeed:    c.TotalSpeed(),
		XPToNextLevel: c.XPToNextLevel(),
	}
}
