// Package cache keeps a local snapshot of the last successful overview and
// jobs fetches so the dashboard can still render (clearly marked as stale)
// when the backend is unreachable.
//
// Backed by a single SQLite file next to the session file. The pure-Go
// driver keeps the client free of cgo.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ndasurveying/dashctl/internal/domain"
)

// Snapshot section keys.
const (
	sectionOverview = "overview"
	sectionJobs     = "jobs"
)

// ErrMiss is returned when no snapshot exists for a section.
var ErrMiss = errors.New("cache: no snapshot")

// Store is the snapshot cache.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// DefaultPath returns the conventional cache location,
// e.g. ~/.config/dashctl/snapshots.db.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "dashctl", "snapshots.db"), nil
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		section    TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) put(section string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", section, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO snapshots (section, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(section) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		section, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store %s snapshot: %w", section, err)
	}
	return nil
}

func (s *Store) get(section string, v interface{}) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		payload   string
		fetchedAt int64
	)
	err := s.db.QueryRow(
		`SELECT payload, fetched_at FROM snapshots WHERE section = ?`, section,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s snapshot: %w", section, err)
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return time.Time{}, fmt.Errorf("decode %s snapshot: %w", section, err)
	}
	return time.Unix(fetchedAt, 0), nil
}

// PutOverview stores the latest overview payload.
func (s *Store) PutOverview(overview *domain.DashboardOverview) error {
	return s.put(sectionOverview, overview)
}

// Overview returns the cached overview and when it was fetched.
func (s *Store) Overview() (*domain.DashboardOverview, time.Time, error) {
	overview := &domain.DashboardOverview{}
	fetchedAt, err := s.get(sectionOverview, overview)
	if err != nil {
		return nil, time.Time{}, err
	}
	return overview, fetchedAt, nil
}

// PutJobs stores the latest jobs list.
func (s *Store) PutJobs(jobs []domain.Job) error {
	return s.put(sectionJobs, jobs)
}

// Jobs returns the cached jobs list and when it was fetched.
func (s *Store) Jobs() ([]domain.Job, time.Time, error) {
	var jobs []domain.Job
	fetchedAt, err := s.get(sectionJobs, &jobs)
	if err != nil {
		return nil, time.Time{}, err
	}
	return jobs, fetchedAt, nil
}
