package domain

// AlertSeverity classifies how urgently an alert needs attention.
// The backend emits high/medium/low; anything else is treated as low.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert is a budget or invoice warning raised by the backend's monitoring.
//
// CreatedAt is the backend's ISO-8601 string without a timezone designator,
// so it is carried as a string rather than parsed into time.Time.
type Alert struct {
	ID         int64         `json:"id"`
	JobID      int64         `json:"job_id"`
	JobCode    string        `json:"job_code"`
	Type       string        `json:"type"`
	Message    string        `json:"message"`
	Severity   AlertSeverity `json:"severity"`
	CreatedAt  string        `json:"created_at"`
	IsResolved bool          `json:"is_resolved"`
}
