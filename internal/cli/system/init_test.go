package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/models"
	"github.com/chadspratt/do-again-list/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return cli.NewContext(store, "alice"), dbPath
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestInitDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _ := setupTestInitDB(t)
	bg := context.Background()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if _, _, err := ctx.Service.CreateHabit(bg, "alice", activity.HabitInput{Title: "Floss"}); err != nil {
		t.Fatal(err)
	}
	settings := models.DefaultSettings()
	settings.BaselineGold = 0
	if err := ctx.Store.SaveSettings(bg, settings); err != nil {
		t.Fatal(err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}

	habits, err := ctx.Store.GetHabits(bg, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 0 {
		t.Errorf("expected a wiped database, found %d habits", len(habits))
	}
	got, err := ctx.Store.GetSettings(bg)
	if err != nil {
		t.Fatal(err)
	}
	if got != models.DefaultSettings() {
		t.Errorf("settings not reset: %+v", got)
	}
}

func TestInitCmd_ForceWithNonExistentDatabase(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath := setupTestInitDB(t)

	if err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx); err == nil {
		t.Error("expected error when source and destination are the same")
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	bg := context.Background()
	srcPath := filepath.Join(t.TempDir(), "source.db")
	src := sqlite.NewStore(srcPath)
	if err := src.Init(bg); err != nil {
		t.Fatal(err)
	}
	srcSvc := activity.New(src)
	h, _, err := srcSvc.CreateHabit(bg, "alice", activity.HabitInput{Title: "Floss", MaxTimeBetweenEvents: "1d"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := srcSvc.StartActivity(bg, h.ID, h.CreatedAt); err != nil {
		t.Fatal(err)
	}
	srcChar, err := srcSvc.GetCharacter(bg, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}

	ctx, _ := setupTestInitDB(t)
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	got, err := ctx.Service.GetHabit(bg, h.ID)
	if err != nil {
		t.Fatalf("habit not copied: %v", err)
	}
	if !got.InProgress() {
		t.Errorf("copied habit lost its running state: %+v", got)
	}
	occs, err := ctx.Service.History(bg, h.ID, 0)
	if err != nil || len(occs) != 1 {
		t.Errorf("History() = %d occurrences, %v; want 1", len(occs), err)
	}
	char, err := ctx.Store.GetCharacter(bg, "alice")
	if err != nil {
		t.Fatalf("hero not copied: %v", err)
	}
	if char.BaseAttack != srcChar.BaseAttack {
		t.Errorf("copied BaseAttack = %d, want %d", char.BaseAttack, srcChar.BaseAttack)
	}
}
