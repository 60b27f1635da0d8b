package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Write stores payload as indented JSON, replacing any previous entry. The
// file is written to a temp path and renamed into place. Identical content is
// not rewritten, but its modification time is refreshed so the entry counts
// as fresh.
func (s *FSStore) Write(filename string, payload any) error {
	if s == nil {
		return errors.New("cache store not configured")
	}
	target := s.Path(filename)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		now := s.now()
		return os.Chtimes(target, now, now)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Invalidate removes an entry. Missing entries are not an error.
func (s *FSStore) Invalidate(filename string) error {
	err := os.Remove(s.Path(filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
