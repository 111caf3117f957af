package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/userfolio/accounts-api/internal/domain"
)

// document is the full on-disk shape: one JSON object with a users array.
type document struct {
	Users []domain.User `json:"users"`
}

// FileStore persists all records as a single JSON document. Every operation
// reads the whole document, scans linearly, and writers rewrite it in full.
// A mutex serializes the read-modify-write cycle; the platform may run
// handlers concurrently but only one of them touches the document at a time.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("FindByEmail: %w", err)
	}
	for i := range doc.Users {
		if doc.Users[i].Email == email {
			u := doc.Users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("FindByEmail: %w", domain.ErrNotFound)
}

func (s *FileStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("FindByID: %w", err)
	}
	for i := range doc.Users {
		if doc.Users[i].ID == id {
			u := doc.Users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("FindByID: %w", domain.ErrNotFound)
}

func (s *FileStore) Insert(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	for i := range doc.Users {
		if doc.Users[i].Email == user.Email {
			return fmt.Errorf("Insert: %w", domain.ErrEmailTaken)
		}
	}
	doc.Users = append(doc.Users, *user)

	if err := s.persist(doc); err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (s *FileStore) Update(_ context.Context, email string, patch domain.Patch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	for i := range doc.Users {
		if doc.Users[i].Email != email {
			continue
		}
		patch.Apply(&doc.Users[i])
		if err := s.persist(doc); err != nil {
			return nil, fmt.Errorf("Update: %w", err)
		}
		u := doc.Users[i]
		return &u, nil
	}
	return nil, fmt.Errorf("Update: %w", domain.ErrNotFound)
}

func (s *FileStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	for i := range doc.Users {
		if doc.Users[i].ID != id {
			continue
		}
		doc.Users = append(doc.Users[:i], doc.Users[i+1:]...)
		if err := s.persist(doc); err != nil {
			return fmt.Errorf("Remove: %w", err)
		}
		return nil
	}
	return fmt.Errorf("Remove: %w", domain.ErrNotFound)
}

func (s *FileStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return doc.Users, nil
}

// load reads the full document from disk. A missing file is an empty store.
func (s *FileStore) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &document{Users: []domain.User{}}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if doc.Users == nil {
		doc.Users = []domain.User{}
	}
	return &doc, nil
}

// persist rewrites the whole document via a temp file and rename, so a crash
// mid-write never leaves a truncated store behind.
func (s *FileStore) persist(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
