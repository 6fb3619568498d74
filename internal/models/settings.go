package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/chadspratt/do-again-list/internal/constants"
)

// Settings holds the tunable parts of the reward rules
type Settings struct {
	BaselineGold      int                        `json:"baseline_gold"`       // gold added to every end evaluation unless forfeited
	NeutralSpeedBonus int                        `json:"neutral_speed_bonus"` // speed buff for an on-schedule neutral habit
	EnemyLevelPolicy  constants.EnemyLevelPolicy `json:"enemy_level_policy"`  // kill-streak or hours-since
	DurationBonus     bool                       `json:"duration_bonus"`      // also reward occurrence length bounds
	Timezone          string                     `json:"timezone"`            // IANA name or "Local", used for display
}

// DefaultSettings returns the settings a new store starts with.
func DefaultSettings() Settings {
	return Settings{
		BaselineGold:      constants.DefaultBaselineGold,
		NeutralSpeedBonus: constants.DefaultNeutralSpeedBonus,
		EnemyLevelPolicy:  constants.DefaultEnemyLevelPolicy,
		DurationBonus:     constants.DefaultDurationBonus,
		Timezone:          constants.DefaultTimezone,
	}
}

// MapToSettings converts stored key/value rows to Settings. Missing keys keep their defaults.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingBaselineGold:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.BaselineGold = n
		case constants.SettingNeutralSpeedBonus:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.NeutralSpeedBonus = n
		case constants.SettingEnemyLevelPolicy:
			settings.EnemyLevelPolicy = constants.EnemyLevelPolicy(value)
		case constants.SettingDurationBonus:
			settings.DurationBonus = value == "true"
		case constants.SettingTimezone:
			settings.Timezone = value
		}
	}
	return settings, nil
}

// SettingsToMap converts Settings to key/value rows.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingBaselineGold:      strconv.Itoa(settings.BaselineGold),
		constants.SettingNeutralSpeedBonus: strconv.Itoa(settings.NeutralSpeedBonus),
		constants.SettingEnemyLevelPolicy:  string(settings.EnemyLevelPolicy),
		constants.SettingDurationBonus:     strconv.FormatBool(settings.DurationBonus),
		constants.SettingTimezone:          settings.Timezone,
	}
}

// Validate rejects values the reward rules cannot use.
func (s Settings) Validate() error {
	switch s.EnemyLevelPolicy {
	case constants.EnemyLevelKillStreak, constants.EnemyLevelHoursSince:
	default:
		return fmt.Errorf("unknown enemy level policy %q", s.EnemyLevelPolicy)
	}
	if s.BaselineGold < 0 {
		return fmt.Errorf("baseline gold must not be negative")
	}
	if s.Timezone != "" && s.Timezone != constants.DefaultTimezone {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q", s.Timezone)
		}
	}
	return nil
}
