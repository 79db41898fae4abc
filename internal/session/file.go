package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the session record in a JSON file, the headless
// counterpart of browser local storage.
type FileStore struct {
	path string
	mu   sync.Mutex
	notifier
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) SetToken(token string) error {
	return s.update(func(r *Record) { r.AccessToken = token })
}

func (s *FileStore) SetProfile(firstName, lastName string) error {
	return s.update(func(r *Record) {
		r.FirstName = firstName
		r.LastName = lastName
	})
}

func (s *FileStore) SetTheme(theme string) error {
	return s.update(func(r *Record) { r.Theme = theme })
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.mu.Unlock()
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.mu.Unlock()
	s.publish(Record{})
	return nil
}

func (s *FileStore) update(mutate func(*Record)) error {
	s.mu.Lock()
	rec, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	mutate(&rec)
	if err := s.write(rec); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.publish(rec)
	return nil
}

func (s *FileStore) read() (Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read session file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rec, nil
}

func (s *FileStore) write(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session dir: %w", err)
		}
	}
	// The token is a credential; keep the file private.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
