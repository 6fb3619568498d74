package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/models"
)

const occurrenceColumns = "id, habit_id, start_time, end_time, next_time, created_at"

func scanOccurrence(row scanner) (models.Occurrence, error) {
	var o models.Occurrence
	var start, end, next sql.NullString
	var created string

	if err := row.Scan(&o.ID, &o.HabitID, &start, &end, &next, &created); err != nil {
		return models.Occurrence{}, err
	}

	var err error
	if o.CreatedAt, err = parseTime("created_at", created); err != nil {
		return models.Occurrence{}, err
	}
	if o.StartTime, err = parseNullTime("start_time", start); err != nil {
		return models.Occurrence{}, err
	}
	if o.EndTime, err = parseNullTime("end_time", end); err != nil {
		return models.Occurrence{}, err
	}
	if o.NextTime, err = parseNullTime("next_time", next); err != nil {
		return models.Occurrence{}, err
	}
	return o, nil
}

func (s *Store) AddOccurrence(ctx context.Context, o models.Occurrence) error {
	if err := o.Validate(); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO occurrences (`+occurrenceColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.HabitID, nullTime(o.StartTime), nullTime(o.EndTime), nullTime(o.NextTime), formatTime(o.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return &apperrors.ConstraintViolation{Msg: fmt.Sprintf("habit %s already has an open occurrence", o.HabitID)}
		}
		return fmt.Errorf("failed to add occurrence: %w", err)
	}
	return nil
}

func (s *Store) UpdateOccurrence(ctx context.Context, o models.Occurrence) error {
	if err := o.Validate(); err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx,
		"UPDATE occurrences SET start_time = ?, end_time = ?, next_time = ? WHERE id = ?",
		nullTime(o.StartTime), nullTime(o.EndTime), nullTime(o.NextTime), o.ID)
	if err != nil {
		return fmt.Errorf("failed to update occurrence: %w", err)
	}
	return expectOne(res, "occurrence", o.ID)
}

func (s *Store) DeleteOccurrence(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM occurrences WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete occurrence: %w", err)
	}
	return expectOne(res, "occurrence", id)
}

func (s *Store) GetOpenOccurrence(ctx context.Context, habitID string) (models.Occurrence, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+occurrenceColumns+` FROM occurrences WHERE habit_id = ? AND end_time IS NULL`, habitID)
	o, err := scanOccurrence(row)
	if err != nil {
		return models.Occurrence{}, notFound(err, "open occurrence", habitID)
	}
	return o, nil
}

func (s *Store) GetLastCompletedOccurrence(ctx context.Context, habitID string) (models.Occurrence, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+occurrenceColumns+` FROM occurrences
		WHERE habit_id = ? AND end_time IS NOT NULL
		ORDER BY end_time DESC LIMIT 1`, habitID)
	o, err := scanOccurrence(row)
	if err != nil {
		return models.Occurrence{}, notFound(err, "completed occurrence", habitID)
	}
	return o, nil
}

func (s *Store) GetOccurrences(ctx context.Context, habitID string, limit int) ([]models.Occurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM occurrences WHERE habit_id = ?
		ORDER BY COALESCE(start_time, next_time) DESC, created_at DESC`
	args := []any{habitID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Occurrence{}
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
