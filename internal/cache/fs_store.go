package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// DefaultTTL is how long a cache entry stays valid.
const DefaultTTL = 24 * time.Hour

// FSStore reads and writes JSON cache entries under a directory. Entry age
// comes from the file modification time.
type FSStore struct {
	basePath string
	ttl      time.Duration
	now      func() time.Time
}

// NewFSStore constructs a cache rooted at basePath. A non-positive ttl uses DefaultTTL.
func NewFSStore(basePath string, ttl time.Duration) *FSStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FSStore{basePath: basePath, ttl: ttl, now: time.Now}
}

// BasePath exposes the cache root.
func (s *FSStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Path returns the file backing the named entry.
func (s *FSStore) Path(filename string) string {
	return EntryPath(s.basePath, filename)
}

// Age reports how old the entry is. ok is false when the entry does not exist.
func (s *FSStore) Age(filename string) (age time.Duration, ok bool, err error) {
	info, err := os.Stat(s.Path(filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return s.now().Sub(info.ModTime()), true, nil
}

// Load decodes a fresh entry into payload. It returns false, without an
// error, when the entry is missing or at least ttl old.
func (s *FSStore) Load(filename string, payload any) (bool, error) {
	if s == nil {
		return false, errors.New("cache store not configured")
	}
	age, ok, err := s.Age(filename)
	if err != nil || !ok {
		return false, err
	}
	if age >= s.ttl {
		return false, nil
	}
	if err := s.decodeFile(s.Path(filename), payload); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FSStore) decodeFile(path string, payload any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(payload); err != nil {
		return fmt.Errorf("decode cache %s: %w", path, err)
	}
	return nil
}
