package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ndasurveying/dashctl/internal/auth"
	"github.com/ndasurveying/dashctl/internal/dashboard"
	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/format"
)

// refreshInterval is how often the watch view re-fetches on its own.
const refreshInterval = 60 * time.Second

type eventMsg dashboard.Event

type tickMsg time.Time

type actionDoneMsg struct {
	label string
	msg   string
	err   error
}

// App is the bubbletea model for the live dashboard.
type App struct {
	ctx    context.Context
	orch   *dashboard.Orchestrator
	sess   domain.Session
	styles Styles

	spinner  spinner.Model
	progress progress.Model

	state  dashboard.State
	cursor int
	width  int
	height int
	status string
}

// NewApp builds the watch model. The orchestrator must not be started yet;
// Init kicks off the first fetches.
func NewApp(ctx context.Context, orch *dashboard.Orchestrator, sess domain.Session) App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return App{
		ctx:      ctx,
		orch:     orch,
		sess:     sess,
		styles:   DefaultStyles(),
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (a App) Init() tea.Cmd {
	a.orch.Start(a.ctx)
	return tea.Batch(a.spinner.Tick, a.waitForEvent(), tickAfter())
}

func (a App) waitForEvent() tea.Cmd {
	events := a.orch.Events()
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}

func tickAfter() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.progress.Width = min(msg.Width-20, 50)
		return a, nil

	case eventMsg:
		a.state = a.orch.Snapshot()
		a.clampCursor()
		return a, a.waitForEvent()

	case tickMsg:
		a.orch.Refresh(a.ctx)
		return a, tickAfter()

	case actionDoneMsg:
		if msg.err != nil {
			a.status = a.styles.Error.Render(fmt.Sprintf("%s failed: %s", msg.label, domain.ErrorMessage(msg.err)))
		} else {
			a.status = a.styles.Status.Render(msg.msg)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "r":
		a.status = ""
		a.orch.Refresh(a.ctx)
		return a, nil

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "down", "j":
		if a.cursor < len(a.state.JobsData)-1 {
			a.cursor++
		}
		return a, nil

	case "enter":
		if a.cursor < len(a.state.JobsData) {
			a.orch.Select(a.ctx, a.state.JobsData[a.cursor])
			a.state = a.orch.Snapshot()
		}
		return a, nil

	case "esc":
		a.orch.Deselect()
		a.state = a.orch.Snapshot()
		return a, nil

	case "c":
		if !auth.IsAuthorized(a.sess, domain.RoleAdmin, domain.RoleStaff) {
			a.status = a.styles.Error.Render("budget checks require the admin or staff role")
			return a, nil
		}
		a.status = a.styles.Status.Render("running budget check...")
		return a, func() tea.Msg {
			msg, err := a.orch.CheckBudgets(a.ctx)
			return actionDoneMsg{label: "budget check", msg: msg, err: err}
		}

	case "x":
		if !auth.IsAuthorized(a.sess, domain.RoleAdmin, domain.RoleStaff) {
			a.status = a.styles.Error.Render("resolving alerts requires the admin or staff role")
			return a, nil
		}
		alert, ok := a.topAlert()
		if !ok {
			return a, nil
		}
		return a, func() tea.Msg {
			err := a.orch.ResolveAlert(a.ctx, alert.ID)
			return actionDoneMsg{label: "resolve alert", msg: fmt.Sprintf("alert %d resolved", alert.ID), err: err}
		}
	}
	return a, nil
}

func (a *App) clampCursor() {
	if a.cursor >= len(a.state.JobsData) {
		a.cursor = len(a.state.JobsData) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) topAlert() (domain.Alert, bool) {
	if a.state.OverviewData == nil || len(a.state.OverviewData.Alerts) == 0 {
		return domain.Alert{}, false
	}
	return a.state.OverviewData.Alerts[0], true
}

func (a App) View() string {
	var sb strings.Builder

	sb.WriteString(a.styles.Title.Render("NDA Surveying · live dashboard"))
	sb.WriteString("  ")
	sb.WriteString(a.styles.Muted.Render(string(a.sess.Role)))
	sb.WriteString("\n\n")

	sb.WriteString(a.viewOverview())
	sb.WriteString("\n")
	sb.WriteString(a.viewJobs())

	if a.state.Selected != nil {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, a.viewDetails(), " ", a.viewBudget()))
	}

	sb.WriteString("\n")
	sb.WriteString(a.viewAlerts())
	sb.WriteString("\n\n")

	if a.status != "" {
		sb.WriteString(a.status)
		sb.WriteString("\n")
	}
	sb.WriteString(a.styles.Muted.Render("↑/↓ select · enter open · esc close · r refresh · c check budgets · x resolve top alert · q quit"))
	return sb.String()
}

func (a App) sectionNotice(st dashboard.SectionState) string {
	switch {
	case st.Phase == dashboard.PhaseLoading:
		return a.spinner.View() + " loading"
	case st.Phase == dashboard.PhaseFailed:
		return a.styles.Error.Render("unavailable: "+domain.ErrorMessage(st.Err)) +
			a.styles.Muted.Render("  (r to retry)")
	case st.FromCache:
		return a.styles.Stale.Render(fmt.Sprintf("showing cached data from %s (backend unreachable)",
			st.UpdatedAt.Format("15:04")))
	}
	return ""
}

func (a App) viewOverview() string {
	if notice := a.sectionNotice(a.state.Overview); notice != "" && a.state.OverviewData == nil {
		return a.styles.Panel.Render(a.styles.Header.Render("Overview") + "\n" + notice)
	}
	ov := a.state.OverviewData
	if ov == nil {
		return ""
	}

	m := ov.Metrics
	lines := []string{
		a.styles.Header.Render("Overview"),
		fmt.Sprintf("Contract value  %s    Invoiced  %s    Costs  %s",
			a.styles.Bold.Render(format.Currency(m.TotalContractValue)),
			format.Currency(m.TotalInvoiced),
			format.Currency(m.TotalCosts)),
		fmt.Sprintf("Projected margin  %s    Unpaid invoices  %s",
			a.marginStyle(m.ProjectedMargin).Render(format.Currency(m.ProjectedMargin)),
			format.Currency(m.UnpaidInvoices)),
		fmt.Sprintf("Active jobs  %d    Completed  %d", m.ActiveJobsCount, m.CompletedJobsCount),
	}
	if notice := a.sectionNotice(a.state.Overview); notice != "" {
		lines = append(lines, notice)
	}
	return a.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (a App) marginStyle(margin float64) lipgloss.Style {
	if margin < 0 {
		return a.styles.Critical
	}
	return a.styles.OK
}

func (a App) viewJobs() string {
	if notice := a.sectionNotice(a.state.Jobs); notice != "" && len(a.state.JobsData) == 0 {
		return a.styles.Header.Render("Jobs") + "\n" + notice
	}

	table := NewTable("Jobs", "Code", "Name", "Client", "Status", "Progress")
	table.Selected = a.cursor
	for _, job := range a.state.JobsData {
		table.AddRow(
			job.JobCode,
			job.JobName,
			job.Client,
			string(job.Status),
			format.Percentage(job.ProgressPercentage),
		)
	}
	out := table.View(a.styles)
	if notice := a.sectionNotice(a.state.Jobs); notice != "" {
		out += "\n" + notice
	}
	return out
}

func (a App) viewDetails() string {
	header := a.styles.Header.Render("Job " + a.state.Selected.JobCode)
	if notice := a.sectionNotice(a.state.Details); notice != "" {
		return a.styles.Panel.Render(header + "\n" + notice)
	}
	d := a.state.DetailsData
	if d == nil {
		return ""
	}

	lines := []string{
		header,
		a.styles.Bold.Render(d.JobInfo.JobName) + a.styles.Muted.Render("  ·  "+d.JobInfo.Client),
		"Progress  " + a.progress.ViewAs(d.JobInfo.ProgressPercentage/100),
		fmt.Sprintf("Contract  %s    Amended  %s",
			format.Currency(d.Metrics.ContractValue), format.Currency(d.Metrics.AmendedValue)),
		fmt.Sprintf("Invoiced  %s    Costs  %s",
			format.Currency(d.Metrics.InvoicedAmount), format.Currency(d.Metrics.TotalCosts)),
		fmt.Sprintf("Margin  %s (%s)",
			a.marginStyle(d.Metrics.ProjectedMargin).Render(format.Currency(d.Metrics.ProjectedMargin)),
			format.Percentage(d.Metrics.MarginPercentage)),
		fmt.Sprintf("Invoices  %d (%d unpaid)    Variations  %d",
			d.Invoices.TotalCount, d.Invoices.UnpaidCount, len(d.Variations)),
	}
	return a.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (a App) viewBudget() string {
	header := a.styles.Header.Render("Budget")
	if notice := a.sectionNotice(a.state.Budget); notice != "" {
		return a.styles.Panel.Render(header + "\n" + notice)
	}
	b := a.state.BudgetData
	if b == nil {
		return ""
	}

	categories := make([]string, 0, len(b.Categories))
	for category := range b.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	lines := []string{header}
	for _, category := range categories {
		status := b.Categories[category]
		sev := format.BudgetSeverity(status.PercentageUsed)
		style := a.styles.BudgetStyle(sev)
		lines = append(lines, fmt.Sprintf("%-12s %s of %s  %s",
			category,
			format.Currency(status.ActualAmount),
			format.Currency(status.BudgetAmount),
			style.Render(format.Percentage(status.PercentageUsed)),
		))
	}
	return a.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (a App) viewAlerts() string {
	if a.state.OverviewData == nil {
		return ""
	}
	alerts := a.state.OverviewData.Alerts
	if len(alerts) == 0 {
		return a.styles.Muted.Render("No active alerts")
	}

	lines := []string{a.styles.Header.Render(fmt.Sprintf("Alerts (%d)", len(alerts)))}
	for _, alert := range alerts {
		style := a.styles.AlertStyle(alert.Severity)
		lines = append(lines, fmt.Sprintf("%s %s %s",
			style.Render(format.AlertIndicator(alert.Severity)),
			a.styles.Muted.Render(alert.JobCode),
			alert.Message,
		))
	}
	return strings.Join(lines, "\n")
}
