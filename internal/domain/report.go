package domain

// BreakdownEntry is a count/value pair within a report grouping.
type BreakdownEntry struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// JobSummaryReport is the executive-level overview of all projects.
type JobSummaryReport struct {
	ReportDate string `json:"report_date"`
	TotalJobs  int    `json:"total_jobs"`
	Jobs       []Job  `json:"jobs"`
}

// FinancialSummaryReport breaks the portfolio down by job status and client.
type FinancialSummaryReport struct {
	ReportDate      string                    `json:"report_date"`
	OverallMetrics  OverviewMetrics           `json:"overall_metrics"`
	StatusBreakdown map[string]BreakdownEntry `json:"status_breakdown"`
	ClientBreakdown map[string]BreakdownEntry `json:"client_breakdown"`
}
