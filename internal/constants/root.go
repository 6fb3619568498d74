package constants

import "time"

// MoralQuality classifies a habit by which gap bounds it configures.
type MoralQuality string

// EnemyLevelPolicy names the rule used to pick an encounter's enemy level.
type EnemyLevelPolicy string

const (
	AppName            = "doagain"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/doagain/doagain.db"
	DefaultOwner       = "local"
	Version            = "v0.3.0"

	// EnvDBConnection overrides the storage location when set.
	EnvDBConnection = "DOAGAIN_DB_CONNECTION"

	// DateTimeFormat is the display format for timestamps in CLI output
	DateTimeFormat = "2006-01-02 15:04"

	// Moral qualities
	MoralGood    MoralQuality = "good"
	MoralBad     MoralQuality = "bad"
	MoralNeutral MoralQuality = "neutral"

	// Enemy level policies
	EnemyLevelKillStreak EnemyLevelPolicy = "kill-streak"
	EnemyLevelHoursSince EnemyLevelPolicy = "hours-since"

	// Character defaults for a freshly created owner
	StartingLevel       = 1
	StartingBaseAttack  = 1
	StartingBaseDefense = 0
	StartingBaseSpeed   = 1
	HeroHPUnset         = -1
	XPPerLevel          = 100

	// Encounter limits
	KillsPerEnemyLevel = 3
	MinEnemyLevel      = 1
	MaxEnemyLevel      = 50

	// Character writes are compare-and-swap; lost races are retried this many times.
	MaxCharacterWriteAttempts = 3

	// HTTP
	DefaultListenAddr = "127.0.0.1:8000"
	OwnerHeader       = "X-Owner"
	ReadHeaderTimeout = 5 * time.Second

	// Occurrence history shown by default
	DefaultHistoryLimit = 20
)

const (
	// Game settings keys
	SettingBaselineGold      = "baseline_gold"
	SettingNeutralSpeedBonus = "neutral_speed_bonus"
	SettingEnemyLevelPolicy  = "enemy_level_policy"
	SettingDurationBonus     = "duration_bonus"
	SettingTimezone          = "timezone"

	// Default settings values
	DefaultBaselineGold      = 5
	DefaultNeutralSpeedBonus = 1
	DefaultEnemyLevelPolicy  = EnemyLevelKillStreak
	DefaultDurationBonus     = false
	DefaultTimezone          = "Local"
)
