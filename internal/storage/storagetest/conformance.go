// Package storagetest holds behaviour checks shared by every storage.Provider.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Run exercises the document operations against a freshly initialized
// provider returned by open.
func Run(t *testing.T, open func(t *testing.T) storage.Provider) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		p := open(t)
		if err := p.Set(ctx, "users/u1/medications/m1", record{Name: "Aspirin", Count: 2}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		doc, err := p.Get(ctx, "users/u1/medications/m1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		var got record
		if err := doc.Decode(&got); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got.Name != "Aspirin" || got.Count != 2 {
			t.Errorf("got %+v", got)
		}
		if doc.ID() != "m1" {
			t.Errorf("ID() = %q, want m1", doc.ID())
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		p := open(t)
		_ = p.Set(ctx, "notifications/h1", record{Name: "a", Count: 1})
		if err := p.Set(ctx, "notifications/h1", record{Name: "b"}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		doc, err := p.Get(ctx, "notifications/h1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		var got record
		_ = doc.Decode(&got)
		if got.Name != "b" || got.Count != 0 {
			t.Errorf("got %+v, want overwritten record", got)
		}
	})

	t.Run("missing document", func(t *testing.T) {
		p := open(t)
		if _, err := p.Get(ctx, "users/u1/medications/nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get: expected ErrNotFound, got %v", err)
		}
		if err := p.Delete(ctx, "users/u1/medications/nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Delete: expected ErrNotFound, got %v", err)
		}
		if err := p.Update(ctx, "users/u1/medications/nope", map[string]any{"count": 1}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Update: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update merges fields", func(t *testing.T) {
		p := open(t)
		_ = p.Set(ctx, "users/u1/medications/m1", record{Name: "Aspirin", Count: 2})
		if err := p.Update(ctx, "users/u1/medications/m1", map[string]any{"count": 5}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		doc, _ := p.Get(ctx, "users/u1/medications/m1")
		var got record
		_ = doc.Decode(&got)
		if got.Name != "Aspirin" || got.Count != 5 {
			t.Errorf("got %+v, want name kept and count 5", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		p := open(t)
		_ = p.Set(ctx, "notifications/h1", record{Name: "a"})
		if err := p.Delete(ctx, "notifications/h1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := p.Get(ctx, "notifications/h1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("query direct children only", func(t *testing.T) {
		p := open(t)
		_ = p.Set(ctx, "users/u1/medications/b", record{Name: "b"})
		_ = p.Set(ctx, "users/u1/medications/a", record{Name: "a"})
		_ = p.Set(ctx, "users/u2/medications/c", record{Name: "c"})
		_ = p.Set(ctx, "users/u1/appointments/d", record{Name: "d"})

		docs, err := p.Query(ctx, "users/u1/medications")
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(docs))
		}
		if docs[0].ID() != "a" || docs[1].ID() != "b" {
			t.Errorf("expected ordering a, b; got %s, %s", docs[0].ID(), docs[1].ID())
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		p := open(t)
		if err := p.Set(ctx, "users/u1/medications", record{}); !errors.Is(err, storage.ErrInvalidPath) {
			t.Errorf("expected ErrInvalidPath for a collection path, got %v", err)
		}
	})
}
