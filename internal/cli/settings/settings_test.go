package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/constants"
	apperrors "github.com/chadspratt/do-again-list/internal/errors"
	"github.com/chadspratt/do-again-list/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	ctx := cli.NewContext(store, constants.DefaultOwner)
	if err := store.Init(ctx.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, cleanup
}

func TestSettingsCmd_List(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &SettingsCmd{List: true}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	gold := 0
	policy := string(constants.EnemyLevelHoursSince)
	bonus := true
	cmd := &SettingsCmd{
		BaselineGold:     &gold,
		EnemyLevelPolicy: &policy,
		DurationBonus:    &bonus,
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	got, err := ctx.Service.Settings(ctx.Background())
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	if got.BaselineGold != 0 || got.EnemyLevelPolicy != constants.EnemyLevelHoursSince || !got.DurationBonus {
		t.Errorf("settings not saved: %+v", got)
	}
	if got.NeutralSpeedBonus != constants.DefaultNeutralSpeedBonus {
		t.Errorf("untouched setting changed: %+v", got)
	}
}

func TestSettingsCmd_RejectsInvalid(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	policy := "coin-flip"
	err := (&SettingsCmd{EnemyLevelPolicy: &policy}).Run(ctx)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := ctx.Service.Settings(ctx.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.EnemyLevelPolicy != constants.DefaultEnemyLevelPolicy {
		t.Errorf("invalid policy was stored: %q", got.EnemyLevelPolicy)
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Errorf("empty settings command failed: %v", err)
	}
}
