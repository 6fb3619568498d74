package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/models"
	"github.com/chadspratt/do-again-list/internal/storage"
)

func (s *Store) GetCharacter(ctx context.Context, owner string) (models.Character, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, owner_id, xp, gold, level, base_attack, base_defense, base_speed,
			best_distance, streak, hero_hp, items, version, updated_at
		FROM characters WHERE owner_id = ?`, owner)

	var c models.Character
	var items, updated string
	err := row.Scan(&c.ID, &c.OwnerID, &c.XP, &c.Gold, &c.Level, &c.BaseAttack, &c.BaseDefense,
		&c.BaseSpeed, &c.BestDistance, &c.Streak, &c.HeroHP, &items, &c.Version, &updated)
	if err != nil {
		return models.Character{}, notFound(err, "character", owner)
	}

	if err := json.Unmarshal([]byte(items), &c.Items); err != nil {
		return models.Character{}, fmt.Errorf("failed to parse items: %w", err)
	}
	if c.Items == nil {
		c.Items = []string{}
	}
	if c.UpdatedAt, err = parseTime("updated_at", updated); err != nil {
		return models.Character{}, err
	}
	return c, nil
}

func (s *Store) AddCharacter(ctx context.Context, c models.Character) error {
	items, err := encodeItems(c.Items)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO characters (id, owner_id, xp, gold, level, base_attack, base_defense, base_speed,
			best_distance, streak, hero_hp, items, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.XP, c.Gold, c.Level, c.BaseAttack, c.BaseDefense, c.BaseSpeed,
		c.BestDistance, c.Streak, c.HeroHP, items, c.Version, formatTime(c.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("character for %s: %w", c.OwnerID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to add character: %w", err)
	}
	return nil
}

func (s *Store) UpdateCharacter(ctx context.Context, c models.Character) (models.Character, error) {
	items, err := encodeItems(c.Items)
	if err != nil {
		return models.Character{}, err
	}
	c.UpdatedAt = nowUTC()

	res, err := s.q.ExecContext(ctx, `
		UPDATE characters SET xp = ?, gold = ?, level = ?, base_attack = ?, base_defense = ?,
			base_speed = ?, best_distance = ?, streak = ?, hero_hp = ?, items = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		c.XP, c.Gold, c.Level, c.BaseAttack, c.BaseDefense, c.BaseSpeed, c.BestDistance,
		c.Streak, c.HeroHP, items, formatTime(c.UpdatedAt), c.ID, c.Version)
	if err != nil {
		return models.Character{}, fmt.Errorf("failed to update character: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.Character{}, err
	}
	if n == 0 {
		var exists int
		err := s.q.QueryRowContext(ctx, "SELECT 1 FROM characters WHERE id = ?", c.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Character{}, apperrors.NotFound("character", c.ID)
		}
		return models.Character{}, storage.ErrConflict
	}

	c.Version++
	return c, nil
}

func encodeItems(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode items: %w", err)
	}
	return string(b), nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound(kind, id)
	}
	return nil
}
