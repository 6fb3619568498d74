package system

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/backup"
	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/migration"
	"github.com/chadspratt/do-again-list/internal/storage/sqlite"
	"github.com/chadspratt/do-again-list/migrations"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *sqlite.Store) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return cli.NewContext(store, "alice"), store
}

func versionRunner(t *testing.T, store *sqlite.Store) *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("failed to access sqlite migrations: %v", err)
	}
	return migration.NewRunner(store.GetDB(), subFS, migration.SQLite)
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)

	if _, _, err := ctx.Service.CreateHabit(ctx.Background(), "alice", activity.HabitInput{Title: "Floss", MaxTimeBetweenEvents: "1d"}); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Service.StartActivity(ctx.Background(), mustFind(t, ctx, "Floss"), time.Time{}); err != nil {
		t.Fatal(err)
	}

	// missing backups only warn
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)

	if _, err := backup.NewManager(ctx.Store.GetConfigPath()).Create(ctx.Background()); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := checkBackupsPresent(ctx); err != nil {
		t.Errorf("checkBackupsPresent() = %v", err)
	}
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed with backups present: %v", err)
	}
}

func TestDoctorCmd_NewerSchema(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	if err := versionRunner(t, store).SetVersion(context.Background(), 999); err != nil {
		t.Fatal(err)
	}
	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with a schema from a newer binary")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	if err := checkMigrationsComplete(ctx); err != nil {
		t.Fatalf("fresh database should be fully migrated: %v", err)
	}
	if err := versionRunner(t, store).SetVersion(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}
}

func TestCheckHabits_DuplicateTitles(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)

	for i := 0; i < 2; i++ {
		if _, _, err := ctx.Service.CreateHabit(ctx.Background(), "alice", activity.HabitInput{Title: "Run"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := checkHabits(ctx); err == nil {
		t.Error("checkHabits should report duplicate titles")
	}
}

func TestCheckOccurrences_InProgressMismatch(t *testing.T) {
	ctx, store := setupTestDoctorDB(t)

	h, _, err := ctx.Service.CreateHabit(ctx.Background(), "alice", activity.HabitInput{Title: "Read"})
	if err != nil {
		t.Fatal(err)
	}
	if err := checkOccurrences(ctx); err != nil {
		t.Fatalf("clean habit flagged: %v", err)
	}

	started := time.Now()
	h.StartTime = &started
	if err := store.UpdateHabit(context.Background(), h); err != nil {
		t.Fatal(err)
	}
	if err := checkOccurrences(ctx); err == nil {
		t.Error("checkOccurrences should flag a running habit with no open occurrence")
	}
}

func TestCheckClockTimezone(t *testing.T) {
	if err := checkClockTimezone(); err != nil {
		t.Errorf("clock/timezone check failed: %v", err)
	}
}

func mustFind(t *testing.T, ctx *cli.Context, title string) string {
	t.Helper()
	id, err := ctx.FindHabit(title)
	if err != nil {
		t.Fatal(err)
	}
	return id
}
