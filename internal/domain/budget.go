package domain

// CategoryStatus is the budget-vs-actual position for one cost category.
//
// PercentageUsed is actual as a percentage of budget and is not guaranteed
// to stay at or below 100.
type CategoryStatus struct {
	BudgetAmount    float64 `json:"budget_amount"`
	ActualAmount    float64 `json:"actual_amount"`
	PercentageUsed  float64 `json:"percentage_used"`
	RemainingBudget float64 `json:"remaining_budget"`
	AlertLevel      string  `json:"alert_level"`
	OverBudget      bool    `json:"over_budget"`
}

// BudgetStatus maps each budgeted category of a job to its spend position.
type BudgetStatus struct {
	JobID       int64                     `json:"job_id"`
	JobCode     string                    `json:"job_code"`
	Categories  map[string]CategoryStatus `json:"budget_status"`
	LastUpdated string                    `json:"last_updated"`
}
