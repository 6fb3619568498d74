package models

import (
	"time"

	apperrors "github.com/chadspratt/do-again-list/internal/errors"
)

// Occurrence is one performed (or in-progress, or scheduled) instance of a habit.
type Occurrence struct {
	ID        string     `json:"id"`
	HabitID   string     `json:"habit_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	NextTime  *time.Time `json:"next_time"`
	CreatedAt time.Time  `json:"created_at"`
}

// Validate enforces that an occurrence is anchored to a start or a scheduled time.
func (o Occurrence) Validate() error {
	if o.HabitID == "" {
		return &apperrors.ConstraintViolation{Msg: "occurrence has no habit"}
	}
	if o.StartTime == nil && o.NextTime == nil {
		return &apperrors.ConstraintViolation{Msg: "occurrence needs a start time or a next time"}
	}
	if o.StartTime != nil && o.EndTime != nil && o.EndTime.Before(*o.StartTime) {
		return &apperrors.ConstraintViolation{Msg: "occurrence ends before it starts"}
	}
	return nil
}

// IsOpen reports whether the occurrence has not been ended yet.
func (o Occurrence) IsOpen() bool { return o.EndTime == nil }

// Started reports whether the occurrence has a start time.
func (o Occurrence) Started() bool { return o.StartTime != nil }

// Duration is the time from start to end; false when either is missing.
func (o Occurrence) Duration() (time.Duration, bool) {
	if o.StartTime == nil || o.EndTime == nil {
		return 0, false
	}
	return o.EndTime.Sub(*o.StartTime), true
}
