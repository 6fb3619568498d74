package postgres

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
		FROM characters WHERE owner_id = $1`, owner)

	var c models.Character
	var items string
	err := row.Scan(&c.ID, &c.OwnerID, &c.XP, &c.Gold, &c.Level, &c.BaseAttack, &c.BaseDefense,
		&c.BaseSpeed, &c.BestDistance, &c.Streak, &c.HeroHP, &items, &c.Version, &c.UpdatedAt)
	if err != nil {
		return models.Character{}, notFound(err, "character", owner)
	}
	if err := json.Unmarshal([]byte(items), &c.Items); err != nil {
		return models.Character{}, fmt.Errorf("failed to parse items: %w", err)
	}
	if c.Items == nil {
		c.Items = []string{}
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ID, c.OwnerID, c.XP, c.Gold, c.Level, c.BaseAttack, c.BaseDefense, c.BaseSpeed,
		c.BestDistance, c.Streak, c.HeroHP, items, c.Version, c.UpdatedAt.UTC())
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
	c.UpdatedAt = time.Now().UTC()

	res, err := s.q.ExecContext(ctx, `
		UPDATE characters SET xp = $1, gold = $2, level = $3, base_attack = $4, base_defense = $5,
			base_speed = $6, best_distance = $7, streak = $8, hero_hp = $9, items = $10,
			version = version + 1, updated_at = $11
		WHERE id = $12 AND version = $13`,
		c.XP, c.Gold, c.Level, c.BaseAttack, c.BaseDefense, c.BaseSpeed, c.BestDistance,
		c.Streak, c.HeroHP, items, c.UpdatedAt, c.ID, c.Version)
	if err != nil {
		return models.Character{}, fmt.Errorf("failed to update character: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.Character{}, err
	}
	if n == 0 {
		var exists int
		err := s.q.QueryRowContext(ctx, "SELECT 1 FROM characters WHERE id = $1", c.ID).Scan(&exists)
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
