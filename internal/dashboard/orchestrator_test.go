package dashboard

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndasurveying/dashctl/internal/cache"
	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/reports"
)

// mockAPI is a hand-rolled backend double. Per-job gates let a test hold a
// details fetch in flight while the selection moves on.
type mockAPI struct {
	mu           sync.Mutex
	overviewCalls int
	jobsCalls     int
	detailsCalls  int
	budgetCalls   int

	overviewErr error
	uploadErr   error
	resolveErr  error
	checkMsg    string
	uploadMsg   string

	detailsGate map[int64]chan struct{}
	detailsDone chan int64
}

func newMockAPI() *mockAPI {
	return &mockAPI{
		detailsGate: make(map[int64]chan struct{}),
		detailsDone: make(chan int64, 8),
		checkMsg:    "Budget check completed. 0 alerts generated.",
		uploadMsg:   "P&L report processed successfully.",
	}
}

func (m *mockAPI) Overview(ctx context.Context) (*domain.DashboardOverview, error) {
	m.mu.Lock()
	m.overviewCalls++
	err := m.overviewErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &domain.DashboardOverview{
		Metrics:     domain.OverviewMetrics{ActiveJobsCount: 2},
		LastUpdated: "2025-03-01T10:00:00",
	}, nil
}

func (m *mockAPI) Jobs(ctx context.Context) ([]domain.Job, error) {
	m.mu.Lock()
	m.jobsCalls++
	m.mu.Unlock()
	return []domain.Job{
		{ID: 1, JobCode: "NDA-001"},
		{ID: 2, JobCode: "NDA-002"},
	}, nil
}

func (m *mockAPI) JobDetails(ctx context.Context, jobID int64) (*domain.JobDetails, error) {
	m.mu.Lock()
	m.detailsCalls++
	gate := m.detailsGate[jobID]
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	defer func() { m.detailsDone <- jobID }()
	return &domain.JobDetails{
		JobInfo: domain.JobInfo{ID: jobID, JobCode: "NDA-00" + string(rune('0'+jobID))},
	}, nil
}

func (m *mockAPI) BudgetStatus(ctx context.Context, jobID int64) (*domain.BudgetStatus, error) {
	m.mu.Lock()
	m.budgetCalls++
	m.mu.Unlock()
	return &domain.BudgetStatus{JobID: jobID}, nil
}

func (m *mockAPI) CheckAllBudgets(ctx context.Context) (string, error) {
	return m.checkMsg, nil
}

func (m *mockAPI) Upload(ctx context.Context, kind reports.Kind, filename string, content io.Reader) (string, error) {
	m.mu.Lock()
	err := m.uploadErr
	m.mu.Unlock()
	if err != nil {
		return "", err
	}
	return m.uploadMsg, nil
}

func (m *mockAPI) ResolveAlert(ctx context.Context, alertID int64) error {
	return m.resolveErr
}

func (m *mockAPI) calls() (overview, jobs, details, budget int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overviewCalls, m.jobsCalls, m.detailsCalls, m.budgetCalls
}

func newTestOrchestrator(t *testing.T, api API, snapshots Snapshots) *Orchestrator {
	t.Helper()
	orch, err := New(Config{
		API:       api,
		Snapshots: snapshots,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return orch
}

// waitEvent drains the event stream until a matching section+phase arrives.
func waitEvent(t *testing.T, orch *Orchestrator, section Section, phase Phase) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-orch.Events():
			if ev.Section == section && ev.Phase == phase {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s/%s", section, phase)
		}
	}
}

func waitDetailsReturn(t *testing.T, api *mockAPI, jobID int64) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case id := <-api.detailsDone:
			if id == jobID {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for details call on job %d to return", jobID)
		}
	}
}

func TestStartLoadsOverviewAndJobsConcurrently(t *testing.T) {
	api := newMockAPI()
	orch := newTestOrchestrator(t, api, nil)

	orch.Start(context.Background())
	waitEvent(t, orch, SectionOverview, PhaseReady)
	waitEvent(t, orch, SectionJobs, PhaseReady)

	state := orch.Snapshot()
	require.NotNil(t, state.OverviewData)
	assert.Equal(t, 2, state.OverviewData.Metrics.ActiveJobsCount)
	require.Len(t, state.JobsData, 2)
	assert.Equal(t, PhaseUnloaded, state.Details.Phase)
	assert.Equal(t, PhaseUnloaded, state.Budget.Phase)
}

func TestStaleDetailsCompletionIsDiscarded(t *testing.T) {
	api := newMockAPI()
	// Hold job 1's details fetch in flight.
	gate := make(chan struct{})
	api.detailsGate[1] = gate

	orch := newTestOrchestrator(t, api, nil)
	ctx := context.Background()

	jobA := domain.Job{ID: 1, JobCode: "NDA-001"}
	jobB := domain.Job{ID: 2, JobCode: "NDA-002"}

	orch.Select(ctx, jobA)
	// Switch away while job 1's response is still pending.
	orch.Select(ctx, jobB)
	waitEvent(t, orch, SectionDetails, PhaseReady)

	state := orch.Snapshot()
	require.NotNil(t, state.DetailsData)
	assert.Equal(t, int64(2), state.DetailsData.JobInfo.ID)

	// Now let the slow job 1 response land. It must be discarded, not
	// applied over job 2's data.
	close(gate)
	waitDetailsReturn(t, api, 1)

	state = orch.Snapshot()
	require.NotNil(t, state.DetailsData)
	assert.Equal(t, int64(2), state.DetailsData.JobInfo.ID,
		"delayed completion for the previous selection overwrote the current one")
	assert.Equal(t, PhaseReady, state.Details.Phase)
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	// Minimal zip local-file-header magic so the content sniff accepts it.
	path := filepath.Join(t.TempDir(), "march_pnl.xlsx")
	data := append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 64)...)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUploadRefreshesOverviewOnceAndDetailsWhenSelected(t *testing.T) {
	api := newMockAPI()
	orch := newTestOrchestrator(t, api, nil)
	ctx := context.Background()

	orch.Select(ctx, domain.Job{ID: 2, JobCode: "NDA-002"})
	waitEvent(t, orch, SectionDetails, PhaseReady)
	waitEvent(t, orch, SectionBudget, PhaseReady)

	overviewBefore, _, detailsBefore, budgetBefore := api.calls()

	msg, err := orch.Upload(ctx, reports.KindPnL, writeWorkbook(t))
	require.NoError(t, err)
	assert.Contains(t, msg, "processed successfully")

	waitEvent(t, orch, SectionOverview, PhaseReady)
	waitEvent(t, orch, SectionDetails, PhaseReady)

	overview, _, details, budget := api.calls()
	assert.Equal(t, overviewBefore+1, overview, "overview should refresh exactly once")
	assert.Equal(t, detailsBefore+1, details, "details should refresh exactly once")
	assert.Equal(t, budgetBefore, budget, "budget should not refresh on upload")
}

func TestUploadWithoutSelectionSkipsDetails(t *testing.T) {
	api := newMockAPI()
	orch := newTestOrchestrator(t, api, nil)

	_, err := orch.Upload(context.Background(), reports.KindInvoices, writeWorkbook(t))
	require.NoError(t, err)
	waitEvent(t, orch, SectionOverview, PhaseReady)

	_, _, details, _ := api.calls()
	assert.Zero(t, details)
}

func TestUploadFailureRefreshesNothing(t *testing.T) {
	api := newMockAPI()
	api.uploadErr = domain.Remote("api.upload", "Error processing file")
	orch := newTestOrchestrator(t, api, nil)

	_, err := orch.Upload(context.Background(), reports.KindPnL, writeWorkbook(t))
	require.Error(t, err)

	// Give any stray refresh goroutine a moment to show up.
	time.Sleep(50 * time.Millisecond)
	overview, jobs, details, budget := api.calls()
	assert.Zero(t, overview)
	assert.Zero(t, jobs)
	assert.Zero(t, details)
	assert.Zero(t, budget)
}

func TestUploadRejectsNonWorkbookBeforeAnyNetworkCall(t *testing.T) {
	api := newMockAPI()
	orch := newTestOrchestrator(t, api, nil)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	_, err := orch.Upload(context.Background(), reports.KindPnL, path)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	overview, _, _, _ := api.calls()
	assert.Zero(t, overview)
}

func TestResolveAlertFailureStillRefreshesOverview(t *testing.T) {
	api := newMockAPI()
	api.resolveErr = domain.NotFound("api.resolve_alert", "alert", "12")
	orch := newTestOrchestrator(t, api, nil)

	err := orch.ResolveAlert(context.Background(), 12)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	// The overview still refreshes: the server-side alert list may have
	// changed even though this resolve failed.
	waitEvent(t, orch, SectionOverview, PhaseReady)
	overview, _, _, _ := api.calls()
	assert.Equal(t, 1, overview)
}

func TestCheckBudgetsRefreshesBudgetWhenSelected(t *testing.T) {
	api := newMockAPI()
	orch := newTestOrchestrator(t, api, nil)
	ctx := context.Background()

	orch.Select(ctx, domain.Job{ID: 1, JobCode: "NDA-001"})
	waitEvent(t, orch, SectionBudget, PhaseReady)
	_, _, _, budgetBefore := api.calls()

	msg, err := orch.CheckBudgets(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg, "Budget check completed")

	waitEvent(t, orch, SectionOverview, PhaseReady)
	waitEvent(t, orch, SectionBudget, PhaseReady)

	_, _, _, budget := api.calls()
	assert.Equal(t, budgetBefore+1, budget)
}

func TestOverviewFailureThenRetry(t *testing.T) {
	api := newMockAPI()
	api.overviewErr = domain.Unavailable(context.DeadlineExceeded, "api.overview")
	orch := newTestOrchestrator(t, api, nil)
	ctx := context.Background()

	orch.Start(ctx)
	ev := waitEvent(t, orch, SectionOverview, PhaseFailed)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(ev.Err))

	state := orch.Snapshot()
	assert.Equal(t, PhaseFailed, state.Overview.Phase)
	assert.Nil(t, state.OverviewData)

	api.mu.Lock()
	api.overviewErr = nil
	api.mu.Unlock()

	orch.Retry(ctx, SectionOverview)
	waitEvent(t, orch, SectionOverview, PhaseReady)

	state = orch.Snapshot()
	assert.Equal(t, PhaseReady, state.Overview.Phase)
	require.NotNil(t, state.OverviewData)
}

func TestOverviewFailureFallsBackToSnapshotCache(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.PutOverview(&domain.DashboardOverview{
		Metrics:     domain.OverviewMetrics{ActiveJobsCount: 5},
		LastUpdated: "2025-02-28T18:00:00",
	}))

	api := newMockAPI()
	api.overviewErr = domain.Unavailable(context.DeadlineExceeded, "api.overview")
	orch := newTestOrchestrator(t, api, store)

	orch.Start(context.Background())
	ev := waitEvent(t, orch, SectionOverview, PhaseReady)
	require.Error(t, ev.Err, "cache-backed Ready still carries the fetch error")

	state := orch.Snapshot()
	assert.True(t, state.Overview.FromCache)
	require.NotNil(t, state.OverviewData)
	assert.Equal(t, 5, state.OverviewData.Metrics.ActiveJobsCount)
}

func TestDeselectClearsJobSections(t *testing.T) {
	api := newMockAPI()
	orch := newTestOrchestrator(t, api, nil)
	ctx := context.Background()

	orch.Select(ctx, domain.Job{ID: 1})
	waitEvent(t, orch, SectionDetails, PhaseReady)

	orch.Deselect()
	state := orch.Snapshot()
	assert.Nil(t, state.Selected)
	assert.Nil(t, state.DetailsData)
	assert.Nil(t, state.BudgetData)
	assert.Equal(t, PhaseUnloaded, state.Details.Phase)
	assert.Equal(t, PhaseUnloaded, state.Budget.Phase)
}
