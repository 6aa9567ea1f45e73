package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "oncotrack.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return newTestStore(t)
	})
}

func TestInitIsRepeatable(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}

	var version int
	if err := s.GetDB().QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("reading schema_version failed: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := s.Load(context.Background()); err == nil {
		t.Error("Load should fail before Init")
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "oncotrack.db")

	s := NewStore(path)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.Set(ctx, "notifications/h1", map[string]string{"title": "Aspirin"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	reopened := NewStore(path)
	if err := reopened.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	docs, err := reopened.Query(ctx, "notifications")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID() != "h1" {
		t.Errorf("expected the saved notification after reopen, got %+v", docs)
	}
}

func TestRepositoryOnSQLite(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(newTestStore(t))

	got, err := repo.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	got.Evening = "21:00"
	if err := repo.SaveSettings(ctx, "u1", got); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	again, err := repo.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if again.Evening != "21:00" {
		t.Errorf("Evening = %q, want 21:00", again.Evening)
	}
}

func TestSchemaVersion(t *testing.T) {
	s := newTestStore(t)
	current, latest, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current != 1 {
		t.Errorf("SchemaVersion = %d, %d; want 1, 1", current, latest)
	}

	if _, _, err := NewStore(filepath.Join(t.TempDir(), "x.db")).SchemaVersion(context.Background()); err != storage.ErrNotLoaded {
		t.Errorf("unloaded store error = %v, want %v", err, storage.ErrNotLoaded)
	}
}
