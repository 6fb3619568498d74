package game

import (
	"fmt"

	"github.com/chadspratt/do-again-list/internal/constants"
	"github.com/chadspratt/do-again-list/internal/models"
)

type rewardRow struct {
	buff         Buff
	gold         int
	forfeitsBase bool
	label        string
	message      string
}

var (
	goodOnTime = rewardRow{
		buff: Buff{Attack: 3, Defense: 2, Speed: 1}, gold: 15,
		label: "Good (on time)", message: "Good habit on time!",
	}
	goodLate = rewardRow{
		buff: Buff{Attack: 1, Defense: 1}, gold: 5,
		label: "Good", message: "Good habit but late, reduced reward.",
	}
	badTooSoon = rewardRow{
		buff: Buff{Attack: -3, Defense: -2, Speed: -1}, forfeitsBase: true,
		label: "Bad", message: "Bad habit too soon! Large penalty.",
	}
	badHeldOff = rewardRow{
		buff: Buff{Attack: -1, Defense: -1}, gold: 5,
		label: "Bad (held off)", message: "Bad habit, but you held off: minor penalty.",
	}
	neutralOnSchedule = rewardRow{
		buff: Buff{Attack: 2, Defense: 1}, gold: 10,
		label: "Neutral", message: "Neutral event on schedule!",
	}
	neutralOff = rewardRow{
		buff: Buff{Attack: 1}, gold: 3,
		label: "Neutral", message: "Neutral event but timing was off, reduced reward.",
	}
)

// Engine prices game events. A nil Policy falls back to kill-streak.
type Engine struct {
	Settings models.Settings
	Policy   EnemyLevelPolicy
}

// NewEngine builds an engine from stored settings.
func NewEngine(settings models.Settings) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	policy, err := PolicyFor(settings.EnemyLevelPolicy)
	if err != nil {
		return nil, err
	}
	return &Engine{Settings: settings, Policy: policy}, nil
}

func (e *Engine) row(quality constants.MoralQuality, v Verdict) rewardRow {
	switch quality {
	case constants.MoralGood:
		if v.MaxOK {
			return goodOnTime
		}
		return goodLate
	case constants.MoralBad:
		if !v.MinOK {
			return badTooSoon
		}
		return badHeldOff
	default:
		if v.Compliant() {
			r := neutralOnSchedule
			r.buff.Speed = e.Settings.NeutralSpeedBonus
			return r
		}
		return neutralOff
	}
}

// Evaluate prices one end event from the habit's moral quality and gap verdict.
func (e *Engine) Evaluate(quality constants.MoralQuality, v Verdict) Effect {
	r := e.row(quality, v)

	gold := r.gold
	if !r.forfeitsBase {
		gold += e.Settings.BaselineGold
	}

	eff := Effect{
		Gold:      gold,
		HeroBuff:  r.buff,
		EnemyBuff: r.buff.Times(-1),
		Messages:  []string{r.message},
	}
	if !r.buff.IsZero() {
		eff.Messages = append(eff.Messages, "Hero: "+r.buff.String())
	}
	return eff
}

// DurationBonus prices how long the occurrence lasted against its duration
// bounds. It is zero unless the DurationBonus setting is on.
func (e *Engine) DurationBonus(b models.Bounds, v Verdict) Effect {
	if !e.Settings.DurationBonus {
		return Effect{}
	}

	var parts []Effect
	wentDistance := b.HasMin() && v.MinOK
	stoppedOnTime := b.HasMax() && v.MaxOK

	if wentDistance {
		parts = append(parts, Effect{
			Gold:     10,
			Delta:    CharacterDelta{XP: 5, BaseAttack: 2},
			Messages: []string{"Went the distance! +10 gold, +5 XP, +2 attack"},
		})
	}
	if stoppedOnTime {
		parts = append(parts, Effect{
			Gold:     10,
			Delta:    CharacterDelta{XP: 5, BaseAttack: 1},
			Messages: []string{"Stopped on time! +10 gold, +5 XP, +1 attack"},
		})
	}
	if wentDistance && stoppedOnTime {
		parts = append(parts, Effect{
			Gold:     5,
			Delta:    CharacterDelta{XP: 5, BaseDefense: 2},
			Messages: []string{"Perfect session! +5 gold, +5 XP, +2 defense"},
		})
	}
	if b.HasMax() && !v.MaxOK {
		parts = append(parts, Effect{Messages: []string{"Overtime: hero takes fatigue damage!"}})
	}
	return Combine(parts...)
}

// EndEvent is everything the engine needs to price an occurrence ending.
type EndEvent struct {
	Quality  constants.MoralQuality
	Gap      Verdict
	Duration models.Bounds
	Length   Verdict
	Enemy    EnemyContext
}

// Result is a priced end event.
type Result struct {
	Effect         Effect     `json:"effect"`
	Encounter      *Encounter `json:"encounter"`
	HeroBuffs      []StatBuff `json:"hero_buffs"`
	PendingHeal    bool       `json:"pending_heal"`
	PendingFatigue bool       `json:"pending_fatigue"`
	Verdict        Verdict    `json:"verdict"`
}

// End prices a completed occurrence.
func (e *Engine) End(ev EndEvent) Result {
	eff := Combine(e.Evaluate(ev.Quality, ev.Gap), e.DurationBonus(ev.Duration, ev.Length))
	r := e.row(ev.Quality, ev.Gap)

	return Result{
		Effect:         eff,
		Encounter:      &Encounter{Level: e.policy().Level(ev.Enemy), Modifier: eff.EnemyBuff},
		HeroBuffs:      StatBuffs(eff.HeroBuff, r.label),
		PendingHeal:    ev.Quality == constants.MoralGood && ev.Gap.MaxOK,
		PendingFatigue: ev.Quality == constants.MoralBad && !ev.Gap.MinOK,
		Verdict:        ev.Gap,
	}
}

func (e *Engine) policy() EnemyLevelPolicy {
	if e.Policy == nil {
		return KillStreakPolicy{}
	}
	return e.Policy
}

// CreateReward is granted once when a habit is added.
func CreateReward(title string) Effect {
	return Effect{
		Delta:    CharacterDelta{BaseAttack: 1},
		Messages: []string{fmt.Sprintf("New habit %s! +1 base attack", title)},
	}
}

// NeverStarted is the result of ending an occurrence that was never started:
// no reward and the streak is lost.
func NeverStarted(title string) Effect {
	return Effect{
		ResetStreak: true,
		Messages:    []string{fmt.Sprintf("Activity %s was never started!", title)},
	}
}

// Restarted is the result of starting an occurrence that is already running.
func Restarted(title string) Effect {
	return Effect{
		ResetStreak: true,
		Messages:    []string{fmt.Sprintf("%s was already in progress; restarted.", title)},
	}
}
