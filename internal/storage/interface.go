package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrNotLoaded   = errors.New("storage not loaded")
	ErrInvalidPath = errors.New("invalid document path")
)

// Document is a JSON record addressed by a slash separated path such as
// users/{uid}/medications/{id}. Its collection is the path without the
// final segment.
type Document struct {
	Path      string          `json:"path"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// ID is the final path segment.
func (d Document) ID() string {
	_, id, _ := Split(d.Path)
	return id
}

// Provider is a document store.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Documents
	Get(ctx context.Context, path string) (Document, error)
	Set(ctx context.Context, path string, data any) error
	// Update merges fields into the top level of an existing document.
	Update(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	// Query returns the documents directly inside collection, ordered by path.
	Query(ctx context.Context, collection string) ([]Document, error)

	// Utils
	GetConfigPath() string
}

// SchemaReporter is implemented by stores with versioned SQL schemas.
type SchemaReporter interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}
