package cache

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ndasurveying/dashctl/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOverviewMissBeforeFirstPut(t *testing.T) {
	store := testStore(t)

	if _, _, err := store.Overview(); !errors.Is(err, ErrMiss) {
		t.Fatalf("Overview() on empty cache = %v, want ErrMiss", err)
	}
}

func TestOverviewRoundTrip(t *testing.T) {
	store := testStore(t)

	want := &domain.DashboardOverview{
		Metrics: domain.OverviewMetrics{
			TotalContractValue: 250000,
			ActiveJobsCount:    3,
		},
		Alerts: []domain.Alert{
			{ID: 7, Message: "Labour at 92%", Severity: domain.SeverityHigh},
		},
		LastUpdated: "2025-03-01T10:00:00",
	}
	if err := store.PutOverview(want); err != nil {
		t.Fatalf("PutOverview(): %v", err)
	}

	got, fetchedAt, err := store.Overview()
	if err != nil {
		t.Fatalf("Overview(): %v", err)
	}
	if fetchedAt.IsZero() {
		t.Error("fetchedAt is zero")
	}
	if got.Metrics.TotalContractValue != want.Metrics.TotalContractValue {
		t.Errorf("TotalContractValue = %v, want %v", got.Metrics.TotalContractValue, want.Metrics.TotalContractValue)
	}
	if len(got.Alerts) != 1 || got.Alerts[0].Severity != domain.SeverityHigh {
		t.Errorf("alerts did not survive the round trip: %+v", got.Alerts)
	}
}

func TestJobsSnapshotReplacedOnPut(t *testing.T) {
	store := testStore(t)

	first := []domain.Job{{ID: 1, JobCode: "NDA-001"}}
	second := []domain.Job{{ID: 1, JobCode: "NDA-001"}, {ID: 2, JobCode: "NDA-002"}}

	if err := store.PutJobs(first); err != nil {
		t.Fatalf("PutJobs(first): %v", err)
	}
	if err := store.PutJobs(second); err != nil {
		t.Fatalf("PutJobs(second): %v", err)
	}

	jobs, _, err := store.Jobs()
	if err != nil {
		t.Fatalf("Jobs(): %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2 (latest snapshot should win)", len(jobs))
	}
	if jobs[1].JobCode != "NDA-002" {
		t.Errorf("jobs[1].JobCode = %q", jobs[1].JobCode)
	}
}
