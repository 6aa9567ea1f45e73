package backup

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "oncotrack.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Set(ctx, "users/local/medications/m1", map[string]any{"name": "Tamoxifen"}); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	return dbPath
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func countDocuments(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		t.Fatalf("failed to count documents in %s: %v", path, err)
	}
	return n
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local))

	path, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Base(path) != "oncotrack-20240301-0930.db" {
		t.Errorf("backup name = %s", filepath.Base(path))
	}
	if n := countDocuments(t, path); n != 1 {
		t.Errorf("backup has %d documents, want 1", n)
	}
	if err := Verify(context.Background(), path); err != nil {
		t.Errorf("Verify() failed on fresh backup: %v", err)
	}
}

func TestCreateUniqueNames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local))

	want := []string{
		"oncotrack-20240301-0930.db",
		"oncotrack-20240301-093015.db",
		"oncotrack-20240301-093015-1.db",
		"oncotrack-20240301-093015-2.db",
	}
	for _, name := range want {
		path, err := mgr.Create(context.Background())
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if filepath.Base(path) != name {
			t.Errorf("backup name = %s, want %s", filepath.Base(path), name)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != len(want) {
		t.Errorf("List() returned %d backups, want %d", len(backups), len(want))
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(context.Background()); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Create() error = %v, want %v", err, ErrNoDatabase)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.keep = 3

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		mgr.now = fixedClock(start.AddDate(0, 0, i))
		if _, err := mgr.Create(context.Background()); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("List() returned %d backups, want 3", len(backups))
	}
	if !backups[0].Timestamp.Equal(start.AddDate(0, 0, 4)) {
		t.Errorf("newest backup = %v, want %v", backups[0].Timestamp, start.AddDate(0, 0, 4))
	}
	if !backups[2].Timestamp.Equal(start.AddDate(0, 0, 2)) {
		t.Errorf("oldest kept backup = %v, want %v", backups[2].Timestamp, start.AddDate(0, 0, 2))
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.BackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "oncotrack-garbage.db", "oncotrack-20240301-0930-x.db"} {
		if err := os.WriteFile(filepath.Join(mgr.BackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %v, want none", backups)
	}
}

func TestListMissingDir(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "oncotrack.db"))
	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %v, want empty", backups)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"oncotrack-20240301-0930.db", time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local), true},
		{"oncotrack-20240301-093015.db", time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local), true},
		{"oncotrack-20240301-093015-7.db", time.Date(2024, 3, 1, 9, 30, 15, 0, time.Local), true},
		{"other-20240301-0930.db", time.Time{}, false},
		{"oncotrack-20240301-0930.sql", time.Time{}, false},
		{"oncotrack-2024-0930.db", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := parseName(tt.name)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("parseName(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))

	backupPath, err := mgr.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "users/local/medications/m2", map[string]any{"name": "Letrozole"}); err != nil {
		t.Fatal(err)
	}
	store.Close()
	if n := countDocuments(t, dbPath); n != 2 {
		t.Fatalf("database has %d documents before restore, want 2", n)
	}

	mgr.now = fixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local))
	safety, err := mgr.Restore(ctx, backupPath)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if safety == "" {
		t.Fatal("Restore() should back up the current database")
	}
	if n := countDocuments(t, safety); n != 2 {
		t.Errorf("safety backup has %d documents, want 2", n)
	}
	if n := countDocuments(t, dbPath); n != 1 {
		t.Errorf("restored database has %d documents, want 1", n)
	}

	restored := sqlite.NewStore(dbPath)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("Load() after restore failed: %v", err)
	}
	defer restored.Close()
	if _, err := restored.Get(ctx, "users/local/medications/m2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get(m2) error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestRestoreRejectsInvalidBackups(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.db")
	if err := os.WriteFile(garbage, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}

	foreign := filepath.Join(dir, "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE notes (id TEXT)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	newer := filepath.Join(dir, "newer.db")
	if err := copyFile(dbPath, newer); err != nil {
		t.Fatal(err)
	}
	db, err = sql.Open("sqlite", newer)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	for _, path := range []string{garbage, foreign, newer} {
		if _, err := mgr.Restore(ctx, path); !errors.Is(err, ErrInvalidBackup) {
			t.Errorf("Restore(%s) error = %v, want %v", filepath.Base(path), err, ErrInvalidBackup)
		}
	}
	if _, err := mgr.Restore(ctx, filepath.Join(dir, "missing.db")); err == nil {
		t.Error("Restore() of missing file should fail")
	}
	if n := countDocuments(t, dbPath); n != 1 {
		t.Errorf("database changed after rejected restores: %d documents", n)
	}
}
