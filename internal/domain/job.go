package domain

// JobStatus represents the lifecycle state of a job as reported by the backend.
type JobStatus string

const (
	JobStatusActive         JobStatus = "active"
	JobStatusNearCompletion JobStatus = "near_completion"
	JobStatusCompleted      JobStatus = "completed"
	JobStatusOnHold         JobStatus = "on_hold"
)

// Job is a row of the jobs summary table on the dashboard overview, and the
// reduced form returned by the jobs list endpoint (financial fields zero
// there). The client holds a read-only copy per fetch; the backend owns it.
//
// All monetary fields are non-negative except ProjectedMargin, which may be
// negative on loss-making jobs.
type Job struct {
	ID                 int64     `json:"id"`
	JobCode            string    `json:"job_code"`
	JobName            string    `json:"job_name"`
	Client             string    `json:"client"`
	Status             JobStatus `json:"status"`
	ProgressPercentage float64   `json:"progress_percentage"`
	ContractValue      float64   `json:"contract_value"`
	TotalCosts         float64   `json:"total_costs"`
	ProjectedMargin    float64   `json:"projected_margin"`
	MarginPercentage   float64   `json:"margin_percentage"`
	UnpaidInvoices     float64   `json:"unpaid_invoices"`
}

// JobInfo is the descriptive block of a job detail response.
//
// Date fields are the backend's ISO-8601 strings (no timezone designator),
// kept as strings for display.
type JobInfo struct {
	ID                 int64     `json:"id"`
	JobCode            string    `json:"job_code"`
	JobName            string    `json:"job_name"`
	Client             string    `json:"client"`
	Status             JobStatus `json:"status"`
	ProgressPercentage float64   `json:"progress_percentage"`
	StartDate          string    `json:"start_date"`
	ExpectedCompletion string    `json:"expected_completion"`
}

// JobMetrics holds the per-job financial analysis figures.
type JobMetrics struct {
	ContractValue    float64 `json:"contract_value"`
	AmendedValue     float64 `json:"amended_value"`
	InvoicedAmount   float64 `json:"invoiced_amount"`
	TotalCosts       float64 `json:"total_costs"`
	ProjectedMargin  float64 `json:"projected_margin"`
	MarginPercentage float64 `json:"margin_percentage"`
	UnpaidInvoices   float64 `json:"unpaid_invoices"`
}

// Expense is a single cost entry within a job.
type Expense struct {
	ID          int64   `json:"id"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

// ExpenseSummary breaks a job's costs down by category with recent entries.
type ExpenseSummary struct {
	Total      int                `json:"total"`
	ByCategory map[string]float64 `json:"by_category"`
	Recent     []Expense          `json:"recent"`
}

// Invoice is a single sales invoice raised against a job.
type Invoice struct {
	ID            int64   `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	DueDate       string  `json:"due_date"`
	IsPaid        bool    `json:"is_paid"`
}

// InvoiceSummary holds invoice counts and recent entries for a job.
type InvoiceSummary struct {
	TotalCount  int       `json:"total_count"`
	UnpaidCount int       `json:"unpaid_count"`
	Recent      []Invoice `json:"recent"`
}

// VariationStatus is the approval state of a contract variation.
type VariationStatus string

const (
	VariationPending  VariationStatus = "pending"
	VariationApproved VariationStatus = "approved"
	VariationRejected VariationStatus = "rejected"
)

// Variation tracks a change to the original contract scope.
type Variation struct {
	ID              int64           `json:"id"`
	VariationNumber string          `json:"variation_number"`
	Description     string          `json:"description"`
	Amount          float64         `json:"amount"`
	Status          VariationStatus `json:"status"`
	SubmittedDate   string          `json:"submitted_date"`
	ApprovedDate    string          `json:"approved_date"`
}

// BudgetLine is a planned allocation for one cost category of a job,
// compared against actual spend.
type BudgetLine struct {
	ID             int64   `json:"id"`
	Category       string  `json:"category"`
	BudgetedAmount float64 `json:"budgeted_amount"`
	ActualSpent    float64 `json:"actual_spent"`
	Variance       float64 `json:"variance"`
}

// JobDetails is the full per-job analysis returned by the job detail endpoint.
type JobDetails struct {
	JobInfo    JobInfo        `json:"job_info"`
	Metrics    JobMetrics     `json:"metrics"`
	Expenses   ExpenseSummary `json:"expenses"`
	Invoices   InvoiceSummary `json:"invoices"`
	Variations []Variation    `json:"variations"`
	Budgets    []BudgetLine   `json:"budgets"`
	Alerts     []Alert        `json:"alerts"`
}

// JobCreateParams holds the fields required to register a new job.
// Creating jobs requires the admin or staff role.
type JobCreateParams struct {
	JobCode       string  `json:"job_code"`
	JobName       string  `json:"job_name"`
	Client        string  `json:"client"`
	ContractValue float64 `json:"contract_value"`
	StartDate     string  `json:"start_date,omitempty"`
}
