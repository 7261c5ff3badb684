// Package risk builds the terrain risk table from delimited text and
// merges tabular, generic and authoritative risk assessments into a
// single ranked view.
package risk

import "strings"

// Severity is the coarse risk tier of a record or view.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ColorHint returns the display color associated with the severity.
// The palette follows the map UI's legend.
func (s Severity) ColorHint() string {
	switch s {
	case SeverityHigh:
		return "#e74c3c"
	case SeverityMedium:
		return "#f39c12"
	case SeverityLow:
		return "#27ae60"
	default:
		return "#7f8c8d"
	}
}

// ParseSeverity maps an evaluation cell to a severity. The source data
// uses single-kanji tiers; English synonyms are accepted for test
// fixtures and alternate data sources.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "高", "high":
		return SeverityHigh
	case "中", "medium", "mid":
		return SeverityMedium
	case "低", "low":
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// TierForScore maps an authoritative 0-100 score to a display tier.
func TierForScore(score float64) Severity {
	switch {
	case score >= 70:
		return SeverityHigh
	case score >= 40:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
