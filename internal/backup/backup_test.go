package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chadspratt/do-again-list/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "doagain.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	return dbPath
}

func managerAt(dbPath string, ts time.Time) *Manager {
	m := NewManager(dbPath)
	m.now = func() time.Time { return ts }
	return m
}

func countHabits(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	m := managerAt(dbPath, time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local))

	path, err := m.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if filepath.Base(path) != "doagain-20240301-093000.db" {
		t.Errorf("backup name = %s", filepath.Base(path))
	}
	if err := verify(context.Background(), path); err != nil {
		t.Errorf("backup is not a valid database: %v", err)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := m.Create(context.Background()); err == nil {
		t.Error("Create() succeeded without a database")
	}
}

func TestUniqueNames(t *testing.T) {
	dbPath := setupTestDB(t)
	m := managerAt(dbPath, time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		path, err := m.Create(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Errorf("len(List()) = %d, want 3", len(backups))
	}
}

func TestListOrderAndFiltering(t *testing.T) {
	dbPath := setupTestDB(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		if _, err := managerAt(dbPath, base.Add(time.Duration(i)*time.Hour)).Create(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	m := NewManager(dbPath)
	if err := os.WriteFile(filepath.Join(m.Dir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(m.Dir(), FilePrefix+"garbage"+FileSuffix), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not newest first: %v", backups)
		}
	}
}

func TestListEmpty(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "doagain.db"))
	backups, err := m.List()
	if err != nil || len(backups) != 0 {
		t.Errorf("List() = %v, %v", backups, err)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < MaxBackups+3; i++ {
		if _, err := managerAt(dbPath, base.AddDate(0, 0, i)).Create(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := NewManager(dbPath).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != MaxBackups {
		t.Fatalf("len(List()) = %d, want %d", len(backups), MaxBackups)
	}
	oldest := backups[len(backups)-1].Timestamp
	if !oldest.Equal(base.AddDate(0, 0, 3)) {
		t.Errorf("oldest kept backup = %v", oldest)
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	ctx := context.Background()
	m := managerAt(dbPath, time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))

	path, err := m.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`INSERT INTO habits (id, owner_id, title, created_at) VALUES ('h1', 'local', 'Run', '2024-03-01T10:00:00.000000000Z')`)
	db.Close()
	if err != nil {
		t.Fatal(err)
	}
	if countHabits(t, dbPath) != 1 {
		t.Fatal("setup insert missing")
	}

	m.now = func() time.Time { return time.Date(2024, 3, 1, 11, 0, 0, 0, time.Local) }
	if err := m.Restore(ctx, path); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if n := countHabits(t, dbPath); n != 0 {
		t.Errorf("habits after restore = %d, want 0", n)
	}

	backups, _ := m.List()
	if len(backups) != 2 {
		t.Errorf("len(List()) = %d, want a pre-restore backup too", len(backups))
	}
}

func TestRestoreRejectsCorruptBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	bad := filepath.Join(t.TempDir(), "bad.db")
	if err := os.WriteFile(bad, []byte(strings.Repeat("not sqlite ", 100)), 0600); err != nil {
		t.Fatal(err)
	}

	err := NewManager(dbPath).Restore(context.Background(), bad)
	if err == nil || !strings.Contains(err.Error(), "corrupted") {
		t.Errorf("Restore() error = %v", err)
	}
	if err := NewManager(dbPath).Restore(context.Background(), bad+".missing"); err == nil {
		t.Error("Restore() of a missing file succeeded")
	}
}
