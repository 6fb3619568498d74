package models

import (
	"time"

	"github.com/chadspratt/do-again-list/internal/constants"
	"github.com/chadspratt/do-again-list/internal/offset"
)

// Habit is a recurring task template
type Habit struct {
	ID                   string     `json:"id"`
	OwnerID              string     `json:"owner_id"`
	Title                string     `json:"title"`
	StartTime            *time.Time `json:"start_time"`
	EndTime              *time.Time `json:"end_time"`
	NextTime             *time.Time `json:"next_time"`
	Ordering             int        `json:"ordering"`
	DefaultDuration      int        `json:"default_duration"` // minutes
	MinDuration          string     `json:"min_duration"`
	MaxDuration          string     `json:"max_duration"`
	MinTimeBetweenEvents string     `json:"min_time_between_events"`
	MaxTimeBetweenEvents string     `json:"max_time_between_events"`
	Value                float64    `json:"value"`
	Repeats              bool       `json:"repeats"`
	CreatedAt            time.Time  `json:"created_at"`
	DeletedAt            *time.Time `json:"deleted_at,omitempty"`
}

// Bounds is a min/max pair where either side may be unset.
type Bounds struct {
	Min *time.Duration
	Max *time.Duration
}

// HasMin reports whether a positive minimum is configured.
func (b Bounds) HasMin() bool { return b.Min != nil && *b.Min > 0 }

// HasMax reports whether a positive maximum is configured.
func (b Bounds) HasMax() bool { return b.Max != nil && *b.Max > 0 }

// BoundsFromOffsets parses a pair of compact offset strings.
func BoundsFromOffsets(min, max string) Bounds {
	var b Bounds
	if d, ok := offset.Parse(min); ok {
		b.Min = &d
	}
	if d, ok := offset.Parse(max); ok {
		b.Max = &d
	}
	return b
}

// GapBounds are the limits on the time between the end of one occurrence and the next.
func (h Habit) GapBounds() Bounds {
	return BoundsFromOffsets(h.MinTimeBetweenEvents, h.MaxTimeBetweenEvents)
}

// DurationBounds are the limits on how long a single occurrence lasts.
func (h Habit) DurationBounds() Bounds {
	return BoundsFromOffsets(h.MinDuration, h.MaxDuration)
}

// MoralQuality is decided only by which gap bounds are set: a habit that must
// not be left too long is good, one that must not come too soon is bad.
func (h Habit) MoralQuality() constants.MoralQuality {
	b := h.GapBounds()
	switch {
	case b.HasMax() && !b.HasMin():
		return constants.MoralGood
	case b.HasMin() && !b.HasMax():
		return constants.MoralBad
	default:
		return constants.MoralNeutral
	}
}

// InProgress reports whether the most recent occurrence has started but not ended.
func (h Habit) InProgress() bool {
	return h.StartTime != nil && h.EndTime == nil
}

// DefaultDurationOffset returns DefaultDuration as a time.Duration.
func (h Habit) DefaultDurationOffset() time.Duration {
	return time.Duration(h.DefaultDuration) * time.Minute
}

// NewHabit returns a habit with the column defaults applied.
func NewHabit(id, owner, title string, now time.Time) Habit {
	return Habit{
		ID:        id,
		OwnerID:   owner,
		Title:     title,
		Value:     1.0,
		Repeats:   true,
		CreatedAt: now,
	}
}
