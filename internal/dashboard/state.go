package dashboard

import (
	"time"

	"github.com/ndasurveying/dashctl/internal/domain"
)

// Section identifies one independently-loading pane of the dashboard.
type Section string

const (
	SectionOverview Section = "overview"
	SectionJobs     Section = "jobs"
	SectionDetails  Section = "details"
	SectionBudget   Section = "budget"
)

// Phase is the lifecycle of a section. Details and Budget start Unloaded and
// only begin loading once a job is selected.
type Phase int

const (
	PhaseUnloaded Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnloaded:
		return "unloaded"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SectionState tracks one section's phase and provenance.
//
// Err is set both when the section failed outright (PhaseFailed) and when it
// is Ready from the snapshot cache after a fetch failure. In the latter case
// FromCache is true and Err explains why live data is missing.
type SectionState struct {
	Phase     Phase
	Err       error
	UpdatedAt time.Time
	FromCache bool
}

// State is a point-in-time view of the whole dashboard. Sections complete
// independently; a State where the jobs list is Ready while the overview is
// still Loading is a normal transient.
//
// The data pointers are shared with the orchestrator and must be treated as
// read-only.
type State struct {
	Overview     SectionState
	OverviewData *domain.DashboardOverview

	Jobs     SectionState
	JobsData []domain.Job

	Selected *domain.Job

	Details     SectionState
	DetailsData *domain.JobDetails

	Budget     SectionState
	BudgetData *domain.BudgetStatus
}

// Event announces a section phase change. The TUI and tests consume these
// instead of polling Snapshot.
type Event struct {
	Section Section
	Phase   Phase
	Err     error
}
