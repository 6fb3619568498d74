package storage

import (
	"context"

	"github.com/chadspratt/do-again-list/internal/models"
)

// Repository is the set of reads and writes the service needs. A Provider
// implements it directly and also hands out transaction-scoped instances
// through WithTx.
type Repository interface {
	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetHabits(ctx context.Context, owner string, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	DeleteHabit(ctx context.Context, id string) error

	// Occurrences
	AddOccurrence(ctx context.Context, occ models.Occurrence) error
	UpdateOccurrence(ctx context.Context, occ models.Occurrence) error
	DeleteOccurrence(ctx context.Context, id string) error
	// GetOpenOccurrence returns the habit's occurrence without an end time,
	// or a NotFoundError when there is none.
	GetOpenOccurrence(ctx context.Context, habitID string) (models.Occurrence, error)
	// GetLastCompletedOccurrence returns the most recently ended occurrence,
	// or a NotFoundError for a habit that has never finished one.
	GetLastCompletedOccurrence(ctx context.Context, habitID string) (models.Occurrence, error)
	// GetOccurrences lists newest first; limit <= 0 means all.
	GetOccurrences(ctx context.Context, habitID string, limit int) ([]models.Occurrence, error)

	// Characters
	GetCharacter(ctx context.Context, owner string) (models.Character, error)
	AddCharacter(ctx context.Context, c models.Character) error
	// UpdateCharacter writes c only if the stored version still equals
	// c.Version, and returns c with the bumped version. A lost race yields
	// ErrConflict.
	UpdateCharacter(ctx context.Context, c models.Character) (models.Character, error)
}

type Provider interface {
	Repository

	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// WithTx runs fn against a repository bound to one transaction, which
	// is committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(Repository) error) error

	// Utils
	GetConfigPath() string
	Dialect() string
}
