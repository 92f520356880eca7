// Package dashboard coordinates the concurrent fetches behind the dashboard
// view: the portfolio overview, the job list, and the per-job detail and
// budget sections.
//
// Job-scoped fetches are tagged with a selection generation. Selecting a new
// job bumps the generation, and any in-flight completion carrying an older
// tag is discarded instead of applied, so a slow response for job A can never
// overwrite the view of job B.
package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ndasurveying/dashctl/internal/cache"
	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/metrics"
	"github.com/ndasurveying/dashctl/internal/reports"
)

// API is the slice of the backend client the orchestrator drives.
type API interface {
	Overview(ctx context.Context) (*domain.DashboardOverview, error)
	Jobs(ctx context.Context) ([]domain.Job, error)
	JobDetails(ctx context.Context, jobID int64) (*domain.JobDetails, error)
	BudgetStatus(ctx context.Context, jobID int64) (*domain.BudgetStatus, error)
	CheckAllBudgets(ctx context.Context) (string, error)
	Upload(ctx context.Context, kind reports.Kind, filename string, content io.Reader) (string, error)
	ResolveAlert(ctx context.Context, alertID int64) error
}

// Snapshots is the optional offline fallback for the overview and jobs
// sections. *cache.Store satisfies it.
type Snapshots interface {
	PutOverview(overview *domain.DashboardOverview) error
	Overview() (*domain.DashboardOverview, time.Time, error)
	PutJobs(jobs []domain.Job) error
	Jobs() ([]domain.Job, time.Time, error)
}

// Config carries the orchestrator's dependencies.
type Config struct {
	API       API
	Snapshots Snapshots // may be nil; disables the cache fallback
	Logger    *slog.Logger
}

// Orchestrator owns the dashboard state machine. All exported methods are
// safe for concurrent use.
type Orchestrator struct {
	api       API
	snapshots Snapshots
	logger    *slog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	events     chan Event
}

// New builds an orchestrator. Nothing is fetched until Start.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.API == nil {
		return nil, errors.New("dashboard: API is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		api:       cfg.API,
		snapshots: cfg.Snapshots,
		logger:    logger,
		events:    make(chan Event, 64),
	}, nil
}

// Events returns the phase-change stream. Events are dropped, not blocked
// on, if the consumer falls behind.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Snapshot returns a copy of the current dashboard state. The data pointers
// inside are shared and read-only.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Start kicks off the initial overview and jobs fetches concurrently.
func (o *Orchestrator) Start(ctx context.Context) {
	go o.refreshOverview(ctx, "initial")
	go o.refreshJobs(ctx, "initial")
}

// Refresh re-fetches the overview and jobs sections, plus the job-scoped
// sections when a job is selected.
func (o *Orchestrator) Refresh(ctx context.Context) {
	go o.refreshOverview(ctx, "manual")
	go o.refreshJobs(ctx, "manual")

	o.mu.Lock()
	selected := o.state.Selected
	gen := o.generation
	o.mu.Unlock()
	if selected != nil {
		go o.fetchDetails(ctx, selected.ID, gen, "manual")
		go o.fetchBudget(ctx, selected.ID, gen, "manual")
	}
}

// Select switches the job-scoped sections to job. Any fetch still in flight
// for the previous selection is invalidated by the generation bump and its
// result will be discarded on arrival.
func (o *Orchestrator) Select(ctx context.Context, job domain.Job) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.state.Selected = &job
	o.state.DetailsData = nil
	o.state.BudgetData = nil
	o.state.Details = SectionState{Phase: PhaseLoading}
	o.state.Budget = SectionState{Phase: PhaseLoading}
	o.mu.Unlock()

	o.emit(Event{Section: SectionDetails, Phase: PhaseLoading})
	o.emit(Event{Section: SectionBudget, Phase: PhaseLoading})

	go o.fetchDetails(ctx, job.ID, gen, "select")
	go o.fetchBudget(ctx, job.ID, gen, "select")
}

// Deselect clears the job-scoped sections.
func (o *Orchestrator) Deselect() {
	o.mu.Lock()
	o.generation++
	o.state.Selected = nil
	o.state.DetailsData = nil
	o.state.BudgetData = nil
	o.state.Details = SectionState{}
	o.state.Budget = SectionState{}
	o.mu.Unlock()

	o.emit(Event{Section: SectionDetails, Phase: PhaseUnloaded})
	o.emit(Event{Section: SectionBudget, Phase: PhaseUnloaded})
}

// Retry re-issues the fetch for a failed section against the current
// selection.
func (o *Orchestrator) Retry(ctx context.Context, section Section) {
	o.mu.Lock()
	selected := o.state.Selected
	gen := o.generation
	o.mu.Unlock()

	switch section {
	case SectionOverview:
		go o.refreshOverview(ctx, "retry")
	case SectionJobs:
		go o.refreshJobs(ctx, "retry")
	case SectionDetails:
		if selected != nil {
			go o.fetchDetails(ctx, selected.ID, gen, "retry")
		}
	case SectionBudget:
		if selected != nil {
			go o.fetchBudget(ctx, selected.ID, gen, "retry")
		}
	}
}

// Upload validates and sends a report workbook. On success the overview is
// refreshed, and the detail section too when a job is selected, exactly once
// each. A failed upload refreshes nothing.
func (o *Orchestrator) Upload(ctx context.Context, kind reports.Kind, path string) (string, error) {
	if err := reports.ValidateFile(path); err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", domain.Wrap(err, domain.EINVALID, "dashboard.upload", "open workbook")
	}
	defer file.Close()

	msg, err := o.api.Upload(ctx, kind, path, file)
	if err != nil {
		return "", err
	}

	go o.refreshOverview(ctx, "upload")

	o.mu.Lock()
	selected := o.state.Selected
	gen := o.generation
	o.mu.Unlock()
	if selected != nil {
		go o.fetchDetails(ctx, selected.ID, gen, "upload")
	}
	return msg, nil
}

// CheckBudgets triggers the backend budget sweep, then refreshes the
// overview and, when a job is selected, its budget section. The backend's
// summary message is returned for display.
func (o *Orchestrator) CheckBudgets(ctx context.Context) (string, error) {
	msg, err := o.api.CheckAllBudgets(ctx)
	if err != nil {
		return "", err
	}

	go o.refreshOverview(ctx, "budget_check")

	o.mu.Lock()
	selected := o.state.Selected
	gen := o.generation
	o.mu.Unlock()
	if selected != nil {
		go o.fetchBudget(ctx, selected.ID, gen, "budget_check")
	}
	return msg, nil
}

// ResolveAlert marks an alert handled. The overview is refreshed whether or
// not the resolve succeeded, because the alert list may have changed
// server-side either way; the resolve error itself is returned so the UI can
// surface it.
func (o *Orchestrator) ResolveAlert(ctx context.Context, alertID int64) error {
	err := o.api.ResolveAlert(ctx, alertID)
	go o.refreshOverview(ctx, "resolve_alert")
	return err
}

func (o *Orchestrator) refreshOverview(ctx context.Context, trigger string) {
	o.setPhase(SectionOverview, PhaseLoading, nil, false)

	overview, err := o.api.Overview(ctx)
	if err != nil {
		metrics.SectionRefreshesTotal.WithLabelValues("overview", trigger, "failure").Inc()
		o.logger.Warn("Overview fetch failed", "trigger", trigger, "error", err)

		if cached, ok := o.cachedOverview(); ok {
			o.mu.Lock()
			o.state.OverviewData = cached
			o.mu.Unlock()
			o.setPhase(SectionOverview, PhaseReady, err, true)
			return
		}
		o.setPhase(SectionOverview, PhaseFailed, err, false)
		return
	}

	metrics.SectionRefreshesTotal.WithLabelValues("overview", trigger, "success").Inc()
	o.storeOverviewSnapshot(overview)

	o.mu.Lock()
	o.state.OverviewData = overview
	o.mu.Unlock()
	o.setPhase(SectionOverview, PhaseReady, nil, false)
}

func (o *Orchestrator) refreshJobs(ctx context.Context, trigger string) {
	o.setPhase(SectionJobs, PhaseLoading, nil, false)

	jobs, err := o.api.Jobs(ctx)
	if err != nil {
		metrics.SectionRefreshesTotal.WithLabelValues("jobs", trigger, "failure").Inc()
		o.logger.Warn("Jobs fetch failed", "trigger", trigger, "error", err)

		if cached, ok := o.cachedJobs(); ok {
			o.mu.Lock()
			o.state.JobsData = cached
			o.mu.Unlock()
			o.setPhase(SectionJobs, PhaseReady, err, true)
			return
		}
		o.setPhase(SectionJobs, PhaseFailed, err, false)
		return
	}

	metrics.SectionRefreshesTotal.WithLabelValues("jobs", trigger, "success").Inc()
	o.storeJobsSnapshot(jobs)

	o.mu.Lock()
	o.state.JobsData = jobs
	o.mu.Unlock()
	o.setPhase(SectionJobs, PhaseReady, nil, false)
}

func (o *Orchestrator) fetchDetails(ctx context.Context, jobID int64, gen uint64, trigger string) {
	details, err := o.api.JobDetails(ctx, jobID)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		metrics.StaleCompletionsDiscarded.Inc()
		o.logger.Debug("Discarded stale details completion", "job_id", jobID, "generation", gen)
		return
	}
	if err != nil {
		o.state.Details = SectionState{Phase: PhaseFailed, Err: err, UpdatedAt: time.Now()}
		o.mu.Unlock()
		metrics.SectionRefreshesTotal.WithLabelValues("details", trigger, "failure").Inc()
		o.emit(Event{Section: SectionDetails, Phase: PhaseFailed, Err: err})
		return
	}
	o.state.DetailsData = details
	o.state.Details = SectionState{Phase: PhaseReady, UpdatedAt: time.Now()}
	o.mu.Unlock()

	metrics.SectionRefreshesTotal.WithLabelValues("details", trigger, "success").Inc()
	o.emit(Event{Section: SectionDetails, Phase: PhaseReady})
}

func (o *Orchestrator) fetchBudget(ctx context.Context, jobID int64, gen uint64, trigger string) {
	status, err := o.api.BudgetStatus(ctx, jobID)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		metrics.StaleCompletionsDiscarded.Inc()
		o.logger.Debug("Discarded stale budget completion", "job_id", jobID, "generation", gen)
		return
	}
	if err != nil {
		o.state.Budget = SectionState{Phase: PhaseFailed, Err: err, UpdatedAt: time.Now()}
		o.mu.Unlock()
		metrics.SectionRefreshesTotal.WithLabelValues("budget", trigger, "failure").Inc()
		o.emit(Event{Section: SectionBudget, Phase: PhaseFailed, Err: err})
		return
	}
	o.state.BudgetData = status
	o.state.Budget = SectionState{Phase: PhaseReady, UpdatedAt: time.Now()}
	o.mu.Unlock()

	metrics.SectionRefreshesTotal.WithLabelValues("budget", trigger, "success").Inc()
	o.emit(Event{Section: SectionBudget, Phase: PhaseReady})
}

func (o *Orchestrator) setPhase(section Section, phase Phase, err error, fromCache bool) {
	state := SectionState{Phase: phase, Err: err, UpdatedAt: time.Now(), FromCache: fromCache}

	o.mu.Lock()
	switch section {
	case SectionOverview:
		o.state.Overview = state
	case SectionJobs:
		o.state.Jobs = state
	}
	o.mu.Unlock()

	o.emit(Event{Section: section, Phase: phase, Err: err})
}

func (o *Orchestrator) cachedOverview() (*domain.DashboardOverview, bool) {
	if o.snapshots == nil {
		return nil, false
	}
	overview, fetchedAt, err := o.snapshots.Overview()
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			o.logger.Warn("Overview snapshot read failed", "error", err)
		}
		return nil, false
	}
	metrics.CacheFallbacks.Inc()
	o.logger.Info("Serving overview from snapshot cache", "fetched_at", fetchedAt)
	return overview, true
}

func (o *Orchestrator) cachedJobs() ([]domain.Job, bool) {
	if o.snapshots == nil {
		return nil, false
	}
	jobs, fetchedAt, err := o.snapshots.Jobs()
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			o.logger.Warn("Jobs snapshot read failed", "error", err)
		}
		return nil, false
	}
	metrics.CacheFallbacks.Inc()
	o.logger.Info("Serving jobs from snapshot cache", "fetched_at", fetchedAt)
	return jobs, true
}

func (o *Orchestrator) storeOverviewSnapshot(overview *domain.DashboardOverview) {
	if o.snapshots == nil {
		return
	}
	if err := o.snapshots.PutOverview(overview); err != nil {
		o.logger.Warn("Overview snapshot write failed", "error", err)
	}
}

func (o *Orchestrator) storeJobsSnapshot(jobs []domain.Job) {
	if o.snapshots == nil {
		return
	}
	if err := o.snapshots.PutJobs(jobs); err != nil {
		o.logger.Warn("Jobs snapshot write failed", "error", err)
	}
}

func (o *Orchestrator) emit(ev Event) {
	select {
	case o.events <- ev:
	default:
		o.logger.Debug("Dropped dashboard event", "section", ev.Section, "phase", ev.Phase)
	}
}
