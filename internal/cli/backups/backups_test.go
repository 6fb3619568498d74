package backups

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chadspratt/do-again-list/internal/activity"
	"github.com/chadspratt/do-again-list/internal/backup"
	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/storage/postgres"
	"github.com/chadspratt/do-again-list/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, string) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	ctx := cli.NewContext(store, "alice")
	if err := store.Init(ctx.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return ctx, dbPath
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, dbPath := setupTestDB(t)

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}

	list, err := backup.NewManager(dbPath).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 backup, got %d", len(list))
	}
}

func TestBackupRejectsPostgres(t *testing.T) {
	ctx := cli.NewContext(postgres.New("postgres://me@localhost/doagain"), "alice")

	err := (&BackupCreateCmd{}).Run(ctx)
	if !errors.Is(err, errSQLiteOnly) {
		t.Errorf("expected SQLite-only error, got %v", err)
	}
}

func TestBackupRestoreCancelled(t *testing.T) {
	ctx, dbPath := setupTestDB(t)
	path, err := backup.NewManager(dbPath).Create(ctx.Background())
	if err != nil {
		t.Fatal(err)
	}

	cmd := &BackupRestoreCmd{BackupFile: path, in: strings.NewReader("n\n")}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("cancelled restore returned error: %v", err)
	}
	if _, err := ctx.Service.ListHabits(ctx.Background(), "alice"); err != nil {
		t.Errorf("store should still be open after a cancelled restore: %v", err)
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, dbPath := setupTestDB(t)
	mgr := backup.NewManager(dbPath)

	if _, _, err := ctx.Service.CreateHabit(ctx.Background(), "alice", activity.HabitInput{Title: "Floss"}); err != nil {
		t.Fatal(err)
	}
	path, err := mgr.Create(ctx.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ctx.Service.CreateHabit(ctx.Background(), "alice", activity.HabitInput{Title: "Run"}); err != nil {
		t.Fatal(err)
	}

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(path), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(ctx.Background()); err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	habits, err := store.GetHabits(ctx.Background(), "alice", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 || habits[0].Title != "Floss" {
		t.Errorf("restored habits = %+v, want only Floss", habits)
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	name := "doagain-20240301-093000.db"
	if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
		t.Fatal(err)
	}

	got, err := locate(name, dir)
	if err != nil || got != filepath.Join(dir, name) {
		t.Errorf("locate(name) = %q, %v", got, err)
	}
	if _, err := locate("missing.db", dir); err == nil {
		t.Error("expected error for a missing backup")
	}
}
