// Package game turns habit timing into hero progress: it classifies an
// occurrence against its bounds, prices the result as an Effect and applies
// effects to a character.
package game

import (
	"fmt"
	"strings"
)

// Buff is a temporary combat stat modifier.
type Buff struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// Times scales every stat by n.
func (b Buff) Times(n int) Buff {
	return Buff{Attack: b.Attack * n, Defense: b.Defense * n, Speed: b.Speed * n}
}

// Add sums two buffs.
func (b Buff) Add(o Buff) Buff {
	return Buff{Attack: b.Attack + o.Attack, Defense: b.Defense + o.Defense, Speed: b.Speed + o.Speed}
}

func (b Buff) IsZero() bool { return b == Buff{} }

// String renders the buff as "+3 attack, +2 defense, +1 speed".
func (b Buff) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []struct {
		n    int
		name string
	}{{b.Attack, "attack"}, {b.Defense, "defense"}, {b.Speed, "speed"}} {
		if p.n != 0 {
			parts = append(parts, fmt.Sprintf("%+d %s", p.n, p.name))
		}
	}
	return strings.Join(parts, ", ")
}

// CharacterDelta is a persisted change to a character.
type CharacterDelta struct {
	XP           int `json:"xp"`
	Gold         int `json:"gold"`
	Level        int `json:"level"`
	BaseAttack   int `json:"base_attack"`
	BaseDefense  int `json:"base_defense"`
	BaseSpeed    int `json:"base_speed"`
	BestDistance int `json:"best_distance"`
	Streak       int `json:"streak"`
	HeroHP       int `json:"hero_hp"`
}

func (d CharacterDelta) add(o CharacterDelta) CharacterDelta {
	return CharacterDelta{
		XP:           d.XP + o.XP,
		Gold:         d.Gold + o.Gold,
		Level:        d.Level + o.Level,
		BaseAttack:   d.BaseAttack + o.BaseAttack,
		BaseDefense:  d.BaseDefense + o.BaseDefense,
		BaseSpeed:    d.BaseSpeed + o.BaseSpeed,
		BestDistance: d.BestDistance + o.BestDistance,
		Streak:       d.Streak + o.Streak,
		HeroHP:       d.HeroHP + o.HeroHP,
	}
}

// Effect is everything one game event produces. HeroBuff and EnemyBuff are
// combat modifiers for the client and never touch stored base stats; Delta
// and Gold do.
type Effect struct {
	Delta       CharacterDelta `json:"delta"`
	Gold        int            `json:"gold"`
	HeroBuff    Buff           `json:"hero_buff"`
	EnemyBuff   Buff           `json:"enemy_buff"`
	ResetStreak bool           `json:"reset_streak"`
	Messages    []string       `json:"messages"`
}

// IsZero reports whether e has no numeric part, no streak reset and no messages.
func (e Effect) IsZero() bool {
	return e.Delta == CharacterDelta{} &&
		e.Gold == 0 &&
		e.HeroBuff.IsZero() &&
		e.EnemyBuff.IsZero() &&
		!e.ResetStreak &&
		len(e.Messages) == 0
}

// Combine merges effects left to right. Numbers add, ResetStreak is OR-ed and
// messages keep argument order. Combine() is the zero Effect.
func Combine(effects ...Effect) Effect {
	var out Effect
	for _, e := range effects {
		out.Delta = out.Delta.add(e.Delta)
		out.Gold += e.Gold
		out.HeroBuff = out.HeroBuff.Add(e.HeroBuff)
		out.EnemyBuff = out.EnemyBuff.Add(e.EnemyBuff)
		out.ResetStreak = out.ResetStreak || e.ResetStreak
		if len(e.Messages) > 0 {
			out.Messages = append(out.Messages, e.Messages...)
		}
	}
	return out
}

// StatBuff is one labelled hero stat change, as shown next to the hero.
type StatBuff struct {
	Stat   string `json:"stat"`
	Amount int    `json:"amount"`
	Label  string `json:"label"`
}

// StatBuffs splits b into one entry per non-zero stat.
func StatBuffs(b Buff, label string) []StatBuff {
	var out []StatBuff
	if b.Attack != 0 {
		out = append(out, StatBuff{Stat: "attack", Amount: b.Attack, Label: label})
	}
	if b.Defense != 0 {
		out = append(out, StatBuff{Stat: "defense", Amount: b.Defense, Label: label})
	}
	if b.Speed != 0 {
		out = append(out, StatBuff{Stat: "speed", Amount: b.Speed, Label: label})
	}
	return out
}
