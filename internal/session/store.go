// Package session persists the login session (bearer token and role) across
// CLI invocations.
//
// The store is a single JSON file under the user config directory. It is an
// explicit object injected into the API client and the command layer rather
// than ambient global state, so tests can substitute their own store.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ndasurveying/dashctl/internal/domain"
)

const (
	// FileName is the session file name inside the dashctl config directory.
	FileName = "session.json"

	// dirPerm/filePerm keep the token readable only by the owning user.
	dirPerm  = 0o700
	filePerm = 0o600
)

// Store reads and writes the persisted session.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the conventional session file location,
// e.g. ~/.config/dashctl/session.json on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "dashctl", FileName), nil
}

// Load reads the persisted session. A missing file yields the anonymous
// session with no error; a corrupt file is an error so the caller can tell
// the user to log in again rather than silently discarding credentials.
func (s *Store) Load() (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Session{}, nil
		}
		return domain.Session{}, domain.Internal(err, "session.load", "read session file")
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, domain.Wrap(err, domain.EINVALID, "session.load", "session file is corrupt")
	}
	sess.Role = domain.ParseRole(string(sess.Role))
	return sess, nil
}

// Save persists the session atomically (temp file + rename) with 0600 perms.
func (s *Store) Save(sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return domain.Internal(err, "session.save", "create config dir")
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return domain.Internal(err, "session.save", "encode session")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".tmp*")
	if err != nil {
		return domain.Internal(err, "session.save", "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domain.Internal(err, "session.save", "write session file")
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return domain.Internal(err, "session.save", "set session file mode")
	}
	if err := tmp.Close(); err != nil {
		return domain.Internal(err, "session.save", "close session file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return domain.Internal(err, "session.save", "replace session file")
	}
	return nil
}

// Clear removes the persisted session. Clearing an absent session is not an
// error (logout is idempotent).
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.Internal(err, "session.clear", "remove session file")
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}
