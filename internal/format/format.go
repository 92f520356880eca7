// Package format holds the pure presentation helpers shared by the CLI
// output and the live dashboard: currency rendering and the severity
// bucketing used for budget percentages and alerts.
package format

import (
	"github.com/ndasurveying/dashctl/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is locale-fixed: the business reports in GBP regardless of the
// machine's locale.
var printer = message.NewPrinter(language.BritishEnglish)

// Currency renders a monetary amount as pounds with thousands grouping,
// e.g. 1234.5 -> "£1,234.50". Negative amounts render as "-£1,234.50".
func Currency(amount float64) string {
	if amount < 0 {
		return "-£" + printer.Sprintf("%.2f", -amount)
	}
	return "£" + printer.Sprintf("%.2f", amount)
}

// Severity is the display bucket for a budget percentage.
type Severity string

const (
	SeverityNominal  Severity = "nominal"
	SeverityCaution  Severity = "caution"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// BudgetSeverity buckets a percentage-used figure into a display severity.
// Thresholds: >=90 critical, >=80 warning, >=70 caution, else nominal.
func BudgetSeverity(percentage float64) Severity {
	switch {
	case percentage >= 90:
		return SeverityCritical
	case percentage >= 80:
		return SeverityWarning
	case percentage >= 70:
		return SeverityCaution
	default:
		return SeverityNominal
	}
}

// AlertIndicator maps an alert severity to its urgency marker.
func AlertIndicator(severity domain.AlertSeverity) string {
	switch severity {
	case domain.SeverityHigh:
		return "▲"
	case domain.SeverityMedium:
		return "◆"
	default:
		return "●"
	}
}

// Percentage renders a percentage figure with one decimal place,
// e.g. 87.25 -> "87.3%".
func Percentage(p float64) string {
	return printer.Sprintf("%.1f%%", p)
}
