// Package ui renders the interactive dashboard for long-running watch
// sessions. Colors follow the NDA Surveying web dashboard palette.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/format"
)

var (
	colorPrimary  = lipgloss.Color("#1e3a5f") // NDA navy
	colorAccent   = lipgloss.Color("#2e86ab")
	colorMuted    = lipgloss.Color("245")
	colorBorder   = lipgloss.Color("240")
	colorOK       = lipgloss.Color("#2e7d32")
	colorCaution  = lipgloss.Color("#f9a825")
	colorWarning  = lipgloss.Color("#ef6c00")
	colorCritical = lipgloss.Color("#c62828")
)

// Styles holds every style the dashboard view uses.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Bold     lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Stale    lipgloss.Style

	OK       lipgloss.Style
	Caution  lipgloss.Style
	Warning  lipgloss.Style
	Critical lipgloss.Style
}

// DefaultStyles builds the standard style set.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Bold:     lipgloss.NewStyle().Bold(true),
		Body:     lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Selected: lipgloss.NewStyle().Bold(true).Background(colorPrimary).Foreground(lipgloss.Color("231")),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		Status:   lipgloss.NewStyle().Foreground(colorAccent),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(colorCritical),
		Stale:    lipgloss.NewStyle().Italic(true).Foreground(colorCaution),
		OK:       lipgloss.NewStyle().Foreground(colorOK),
		Caution:  lipgloss.NewStyle().Foreground(colorCaution),
		Warning:  lipgloss.NewStyle().Foreground(colorWarning),
		Critical: lipgloss.NewStyle().Bold(true).Foreground(colorCritical),
	}
}

// BudgetStyle maps a budget severity bucket to its display style.
func (s Styles) BudgetStyle(sev format.Severity) lipgloss.Style {
	switch sev {
	case format.SeverityCritical:
		return s.Critical
	case format.SeverityWarning:
		return s.Warning
	case format.SeverityCaution:
		return s.Caution
	default:
		return s.OK
	}
}

// AlertStyle maps an alert severity to its display style.
func (s Styles) AlertStyle(sev domain.AlertSeverity) lipgloss.Style {
	switch sev {
	case domain.SeverityHigh:
		return s.Critical
	case domain.SeverityMedium:
		return s.Warning
	default:
		return s.Muted
	}
}
