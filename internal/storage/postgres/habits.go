package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chadspratt/do-again-list/internal/models"
)

const habitColumns = `id, owner_id, title, start_time, end_time, next_time, ordering,
	default_duration, min_duration, max_duration, min_time_between_events,
	max_time_between_events, value, repeats, created_at, deleted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var start, end, next, deleted sql.NullTime

	err := row.Scan(&h.ID, &h.OwnerID, &h.Title, &start, &end, &next, &h.Ordering,
		&h.DefaultDuration, &h.MinDuration, &h.MaxDuration, &h.MinTimeBetweenEvents,
		&h.MaxTimeBetweenEvents, &h.Value, &h.Repeats, &h.CreatedAt, &deleted)
	if err != nil {
		return models.Habit{}, err
	}
	h.CreatedAt = h.CreatedAt.UTC()
	h.StartTime = timePtr(start)
	h.EndTime = timePtr(end)
	h.NextTime = timePtr(next)
	h.DeletedAt = timePtr(deleted)
	return h, nil
}

func (s *Store) AddHabit(ctx context.Context, h models.Habit) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		h.ID, h.OwnerID, h.Title, nullTime(h.StartTime), nullTime(h.EndTime), nullTime(h.NextTime),
		h.Ordering, h.DefaultDuration, h.MinDuration, h.MaxDuration, h.MinTimeBetweenEvents,
		h.MaxTimeBetweenEvents, h.Value, h.Repeats, h.CreatedAt.UTC(), nullTime(h.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1 AND deleted_at IS NULL`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err, "habit", id)
	}
	return h, nil
}

func (s *Store) GetHabits(ctx context.Context, owner string, includeDeleted bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id = $1`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	query += " ORDER BY ordering, created_at"

	rows, err := s.q.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE habits SET title = $1, start_time = $2, end_time = $3, next_time = $4, ordering = $5,
			default_duration = $6, min_duration = $7, max_duration = $8, min_time_between_events = $9,
			max_time_between_events = $10, value = $11, repeats = $12, deleted_at = $13
		WHERE id = $14`,
		h.Title, nullTime(h.StartTime), nullTime(h.EndTime), nullTime(h.NextTime), h.Ordering,
		h.DefaultDuration, h.MinDuration, h.MaxDuration, h.MinTimeBetweenEvents,
		h.MaxTimeBetweenEvents, h.Value, h.Repeats, nullTime(h.DeletedAt), h.ID)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return expectOne(res, "habit", h.ID)
}

// DeleteHabit soft-deletes the habit. Its occurrences are kept for history.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE habits SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return expectOne(res, "habit", id)
}
