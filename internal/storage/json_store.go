package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type jsonFile struct {
	Version   int                 `json:"version"`
	Documents map[string]Document `json:"documents"`
}

// JSONStore keeps every document in a single JSON file, rewritten on each
// change. With an empty path it lives only in memory.
type JSONStore struct {
	path string

	mu   sync.RWMutex
	docs map[string]Document
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{path: configPath}
}

// NewMemoryStore returns a loaded JSONStore that never touches disk.
func NewMemoryStore() *JSONStore {
	return &JSONStore{docs: make(map[string]Document)}
}

func (s *JSONStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.docs == nil {
			s.docs = make(map[string]Document)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.docs = make(map[string]Document)
	return s.save()
}

func (s *JSONStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.docs == nil {
			s.docs = make(map[string]Document)
		}
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'oncotrack init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	var f jsonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	s.docs = f.Documents
	if s.docs == nil {
		s.docs = make(map[string]Document)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(jsonFile{Version: 1, Documents: s.docs}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Get(ctx context.Context, path string) (Document, error) {
	if _, _, err := Split(path); err != nil {
		return Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.docs == nil {
		return Document{}, ErrNotLoaded
	}
	doc, ok := s.docs[path]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return doc, nil
}

func (s *JSONStore) Set(ctx context.Context, path string, data any) error {
	if _, _, err := Split(path); err != nil {
		return err
	}
	body, err := Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs == nil {
		return ErrNotLoaded
	}
	s.docs[path] = Document{Path: path, Data: body, UpdatedAt: time.Now().UTC()}
	return s.save()
}

func (s *JSONStore) Update(ctx context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs == nil {
		return ErrNotLoaded
	}
	doc, ok := s.docs[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	body, err := Merge(doc.Data, fields)
	if err != nil {
		return err
	}
	s.docs[path] = Document{Path: path, Data: body, UpdatedAt: time.Now().UTC()}
	return s.save()
}

func (s *JSONStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs == nil {
		return ErrNotLoaded
	}
	if _, ok := s.docs[path]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	delete(s.docs, path)
	return s.save()
}

func (s *JSONStore) Query(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.docs == nil {
		return nil, ErrNotLoaded
	}

	var out []Document
	for path, doc := range s.docs {
		if c, _, err := Split(path); err == nil && c == collection {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
