// Package sqlite is the default document store, a single modernc sqlite
// file holding every document as JSON text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
	"github.com/TheVortexX/OncoTrack-sub000/internal/migration"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
	"github.com/TheVortexX/OncoTrack-sub000/migrations"
)

var (
	_ storage.Provider       = (*Store)(nil)
	_ storage.SchemaReporter = (*Store)(nil)
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) open() error {
	// busy_timeout lets the notify tick and an interactive session share the file.
	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(ctx, func(msg string) { logger.Info(msg, "store", "sqlite") }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'oncotrack init' first")
	}
	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.Validate(ctx)
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite), nil
}

// SchemaVersion reports the applied and latest migration versions.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, storage.ErrNotLoaded
	}
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	return runner.Status(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Get(ctx context.Context, path string) (storage.Document, error) {
	if s.db == nil {
		return storage.Document{}, storage.ErrNotLoaded
	}
	if _, _, err := storage.Split(path); err != nil {
		return storage.Document{}, err
	}

	var data, updated string
	err := s.db.QueryRowContext(ctx, "SELECT data, updated_at FROM documents WHERE path = ?", path).Scan(&data, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Document{}, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	if err != nil {
		return storage.Document{}, err
	}
	return toDocument(path, data, updated)
}

func (s *Store) Set(ctx context.Context, path string, data any) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	collection, _, err := storage.Split(path)
	if err != nil {
		return err
	}
	body, err := storage.Marshal(data)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, collection, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		path, collection, string(body), now())
	return err
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, "SELECT data FROM documents WHERE path = ?", path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	if err != nil {
		return err
	}

	merged, err := storage.Merge([]byte(data), fields)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE documents SET data = ?, updated_at = ? WHERE path = ?", string(merged), now(), path); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE path = ?", path)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string) ([]storage.Document, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	rows, err := s.db.QueryContext(ctx, "SELECT path, data, updated_at FROM documents WHERE collection = ? ORDER BY path", collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Document
	for rows.Next() {
		var path, data, updated string
		if err := rows.Scan(&path, &data, &updated); err != nil {
			return nil, err
		}
		doc, err := toDocument(path, data, updated)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func toDocument(path, data, updated string) (storage.Document, error) {
	at, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return storage.Document{}, fmt.Errorf("invalid updated_at for %s: %w", path, err)
	}
	return storage.Document{Path: path, Data: []byte(data), UpdatedAt: at}, nil
}
