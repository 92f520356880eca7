package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ndasurveying/dashctl/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "dashctl", FileName))
}

func TestLoadMissingFileIsAnonymous(t *testing.T) {
	s := testStore(t)

	sess, err := s.Load()
	if err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if sess.Authenticated() {
		t.Errorf("missing session file should load as anonymous, got %+v", sess)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)

	want := domain.Session{Token: "tok-123", Role: domain.RoleStaff}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save(): %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestSaveRestrictsFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	s := testStore(t)

	if err := s.Save(domain.Session{Token: "tok", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("Save(): %v", err)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("Stat(): %v", err)
	}
	if perm := info.Mode().Perm(); perm != filePerm {
		t.Errorf("session file mode = %o, want %o", perm, filePerm)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := testStore(t)

	if err := s.Save(domain.Session{Token: "tok", Role: domain.RoleClient}); err != nil {
		t.Fatalf("Save(): %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear(): %v", err)
	}
	// Second clear with nothing on disk must also succeed.
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() on empty store: %v", err)
	}

	sess, err := s.Load()
	if err != nil {
		t.Fatalf("Load() after clear: %v", err)
	}
	if sess.Authenticated() {
		t.Errorf("session survived Clear(): %+v", sess)
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	s := testStore(t)

	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Load(); err == nil {
		t.Error("Load() on corrupt file should fail")
	} else if domain.ErrorCode(err) != domain.EINVALID {
		t.Errorf("Load() error code = %q, want %q", domain.ErrorCode(err), domain.EINVALID)
	}
}
