package risk

import "math"

// Score statuses reported by the authoritative scoring service.
const (
	StatusOK      = "ok"
	StatusNoMatch = "no_match"
)

// Score is the authoritative assessment for a point, as delivered by the
// external scoring service. OverallRisk is nil when no scored point
// matched.
type Score struct {
	Status          string   `json:"status"`
	OverallRisk     *float64 `json:"overall_risk"`
	RiskDescription string   `json:"risk_description"`
	Explanation     string   `json:"explanation"`
	Flood           bool     `json:"flood,omitempty"`
	Landslide       bool     `json:"landslide,omitempty"`
	Tsunami         bool     `json:"tsunami,omitempty"`
}

// Usable reports whether the score is well-formed enough to take
// authoritative precedence: status ok with a finite numeric value.
func (s *Score) Usable() bool {
	if s == nil || s.Status != StatusOK || s.OverallRisk == nil {
		return false
	}
	v := *s.OverallRisk
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ViewSource tags which assessment produced a View.
type ViewSource int

const (
	SourceGeneric ViewSource = iota
	SourceTabular
	SourceAuthoritative
)

// String implements fmt.Stringer.
func (s ViewSource) String() string {
	switch s {
	case SourceAuthoritative:
		return "authoritative"
	case SourceTabular:
		return "tabular"
	default:
		return "generic"
	}
}

// View is the merged risk assessment shown to the caller. Constructed
// fresh per resolution and never persisted here.
type View struct {
	SeverityText string     `json:"severity"`
	Tier         Severity   `json:"-"`
	Explanation  string     `json:"explanation"`
	NumericScore *float64   `json:"numeric_score,omitempty"`
	Source       ViewSource `json:"-"`
	ColorHint    string     `json:"color_hint,omitempty"`
}

// Generic is the fixed fallback record used when the table has no entry
// for a terrain label.
func Generic() Record {
	return Record{
		Name:        "",
		Evaluation:  "不明",
		Severity:    SeverityUnknown,
		Description: DefaultGuidance,
		Label:       "disaster risk",
	}
}

// Fuse merges the available assessments under the fixed precedence:
// a usable authoritative score always wins and suppresses the others;
// otherwise a tabular record beats the generic fallback.
func Fuse(tabular *Record, authoritative *Score) View {
	if authoritative.Usable() {
		score := *authoritative.OverallRisk
		tier := TierForScore(score)
		explanation := authoritative.Explanation
		if explanation == "" {
			explanation = authoritative.RiskDescription
		}
		return View{
			SeverityText: tier.String(),
			Tier:         tier,
			Explanation:  explanation,
			NumericScore: &score,
			Source:       SourceAuthoritative,
			ColorHint:    tier.ColorHint(),
		}
	}

	rec := Generic()
	source := SourceGeneric
	if tabular != nil {
		rec = *tabular
		source = SourceTabular
	}
	return View{
		SeverityText: rec.Evaluation,
		Tier:         rec.Severity,
		Explanation:  rec.Description,
		Source:       source,
		ColorHint:    rec.Severity.ColorHint(),
	}
}
