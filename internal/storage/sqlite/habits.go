package sqlite

import (
	"context"
	"database/sql"
	"fmt"

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
	var start, end, next, deleted sql.NullString
	var created string

	err := row.Scan(&h.ID, &h.OwnerID, &h.Title, &start, &end, &next, &h.Ordering,
		&h.DefaultDuration, &h.MinDuration, &h.MaxDuration, &h.MinTimeBetweenEvents,
		&h.MaxTimeBetweenEvents, &h.Value, &h.Repeats, &created, &deleted)
	if err != nil {
		return models.Habit{}, err
	}

	if h.CreatedAt, err = parseTime("created_at", created); err != nil {
		return models.Habit{}, err
	}
	if h.StartTime, err = parseNullTime("start_time", start); err != nil {
		return models.Habit{}, err
	}
	if h.EndTime, err = parseNullTime("end_time", end); err != nil {
		return models.Habit{}, err
	}
	if h.NextTime, err = parseNullTime("next_time", next); err != nil {
		return models.Habit{}, err
	}
	if h.DeletedAt, err = parseNullTime("deleted_at", deleted); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) AddHabit(ctx context.Context, h models.Habit) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.OwnerID, h.Title, nullTime(h.StartTime), nullTime(h.EndTime), nullTime(h.NextTime),
		h.Ordering, h.DefaultDuration, h.MinDuration, h.MaxDuration, h.MinTimeBetweenEvents,
		h.MaxTimeBetweenEvents, h.Value, h.Repeats, formatTime(h.CreatedAt), nullTime(h.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ? AND deleted_at IS NULL`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err, "habit", id)
	}
	return h, nil
}

func (s *Store) GetHabits(ctx context.Context, owner string, includeDeleted bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id = ?`
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
		UPDATE habits SET title = ?, start_time = ?, end_time = ?, next_time = ?, ordering = ?,
			default_duration = ?, min_duration = ?, max_duration = ?, min_time_between_events = ?,
			max_time_between_events = ?, value = ?, repeats = ?, deleted_at = ?
		WHERE id = ?`,
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
		"UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		formatTime(nowUTC()), id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return expectOne(res, "habit", id)
}
