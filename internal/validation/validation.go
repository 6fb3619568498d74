// Package validation checks habit definitions: hard errors that block a
// write, and softer conflicts that doctor reports.
package validation

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/models"
	"github.com/chadspratt/do-again-list/internal/offset"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateTitle       ConflictType = "duplicate_title"
	ConflictInvertedGapBounds    ConflictType = "inverted_gap_bounds"
	ConflictInvertedDuration     ConflictType = "inverted_duration_bounds"
	ConflictDefaultOutsideBounds ConflictType = "default_duration_outside_bounds"
	ConflictInvalidOffset        ConflictType = "invalid_offset"
)

// Conflict is a problem with one or more habits that does not block writes.
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // habit titles involved
	HabitIDs    []string
}

type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// ValidateHabit rejects a habit that must not be stored.
func ValidateHabit(h models.Habit) error {
	if strings.TrimSpace(h.Title) == "" {
		return apperrors.Validation("title", "title is required")
	}
	if h.DefaultDuration < 0 {
		return apperrors.Validation("default_duration", "default duration must not be negative")
	}
	if h.Value < 0 {
		return apperrors.Validation("value", "value must not be negative")
	}
	for _, f := range offsetFields(h) {
		if err := offset.Validate(f.value); err != nil {
			return apperrors.Validation(f.name, "%v", err)
		}
	}
	return nil
}

type field struct {
	name  string
	value string
}

func offsetFields(h models.Habit) []field {
	return []field{
		{"min_duration", h.MinDuration},
		{"max_duration", h.MaxDuration},
		{"min_time_between_events", h.MinTimeBetweenEvents},
		{"max_time_between_events", h.MaxTimeBetweenEvents},
	}
}

// Validator finds conflicts across a set of habits.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	var result ValidationResult

	byTitle := map[string][]models.Habit{}
	for _, h := range habits {
		key := strings.ToLower(strings.TrimSpace(h.Title))
		byTitle[key] = append(byTitle[key], h)
	}
	titles := make([]string, 0, len(byTitle))
	for k := range byTitle {
		titles = append(titles, k)
	}
	sort.Strings(titles)
	for _, k := range titles {
		group := byTitle[k]
		if len(group) < 2 {
			continue
		}
		c := Conflict{
			Type:        ConflictDuplicateTitle,
			Description: fmt.Sprintf("%d habits are titled %q", len(group), group[0].Title),
		}
		for _, h := range group {
			c.Items = append(c.Items, h.Title)
			c.HabitIDs = append(c.HabitIDs, h.ID)
		}
		result.Conflicts = append(result.Conflicts, c)
	}

	for _, h := range habits {
		result.Conflicts = append(result.Conflicts, v.habitConflicts(h)...)
	}
	return result
}

func (v *Validator) habitConflicts(h models.Habit) []Conflict {
	var out []Conflict
	single := func(t ConflictType, format string, args ...any) {
		out = append(out, Conflict{
			Type:        t,
			Description: fmt.Sprintf("%s: ", h.Title) + fmt.Sprintf(format, args...),
			Items:       []string{h.Title},
			HabitIDs:    []string{h.ID},
		})
	}

	for _, f := range offsetFields(h) {
		if err := offset.Validate(f.value); err != nil {
			single(ConflictInvalidOffset, "%s: %v", f.name, err)
		}
	}

	gap := h.GapBounds()
	if gap.HasMin() && gap.HasMax() && *gap.Min > *gap.Max {
		single(ConflictInvertedGapBounds, "minimum gap %s is longer than maximum gap %s, so it can never be on schedule",
			offset.Humanize(*gap.Min), offset.Humanize(*gap.Max))
	}

	dur := h.DurationBounds()
	if dur.HasMin() && dur.HasMax() && *dur.Min > *dur.Max {
		single(ConflictInvertedDuration, "minimum duration %s is longer than maximum duration %s",
			offset.Humanize(*dur.Min), offset.Humanize(*dur.Max))
	}

	if h.DefaultDuration > 0 {
		def := h.DefaultDurationOffset()
		if (dur.HasMin() && def < *dur.Min) || (dur.HasMax() && def > *dur.Max) {
			single(ConflictDefaultOutsideBounds, "default duration %s is outside the duration bounds", offset.Humanize(def))
		}
	}
	return out
}
