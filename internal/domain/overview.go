package domain

// OverviewMetrics aggregates key financial figures across all jobs.
type OverviewMetrics struct {
	TotalContractValue float64 `json:"total_contract_value"`
	TotalInvoiced      float64 `json:"total_invoiced"`
	TotalCosts         float64 `json:"total_costs"`
	ProjectedMargin    float64 `json:"projected_margin"`
	PendingInvoices    float64 `json:"pending_invoices"`
	UnpaidInvoices     float64 `json:"unpaid_invoices"`
	ActiveJobsCount    int     `json:"active_jobs_count"`
	CompletedJobsCount int     `json:"completed_jobs_count"`
}

// DashboardOverview is the main command-center payload: aggregate metrics,
// active alerts in backend order, and the jobs summary table.
type DashboardOverview struct {
	Metrics     OverviewMetrics `json:"metrics"`
	JobsSummary []Job           `json:"jobs_summary"`
	Alerts      []Alert         `json:"alerts"`
	LastUpdated string          `json:"last_updated"`
}
