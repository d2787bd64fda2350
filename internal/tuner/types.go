package tuner

// Severity classifies a single finding.
type Severity string

const (
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warning"
	SeverityInfo Severity = "info"
)

// Section groups findings for report layout.
type Section string

const (
	SectionGeneral Section = "General Statistics"
	SectionEngines Section = "Storage Engine Statistics"
	SectionMetrics Section = "Performance Metrics"
)

// Finding is one classified, severity-tagged observation about a derived
// metric.
type Finding struct {
	Metric   string
	Section  Section
	Severity Severity
	Message  string
}

// RecommendationSet collects the advice emitted during classification.
// Both lists are append-only, keep insertion order, and may contain
// duplicates.
type RecommendationSet struct {
	// General holds operational advice ("Reduce or eliminate persistent
	// connections...").
	General []string
	// Adjustments holds specific variable changes ("key_buffer_size (> 64M)").
	Adjustments []string
}

// Empty reports whether no recommendations of either kind were produced.
func (r *RecommendationSet) Empty() bool {
	return len(r.General) == 0 && len(r.Adjustments) == 0
}

// OptInt is a truncated integer metric that may be absent when the activity
// it measures never occurred. Absence is meaningful downstream and must not
// collapse to zero.
type OptInt struct {
	Int int64
	OK  bool
}

// OptFloat is a one-decimal percentage metric that may be absent, same rules
// as OptInt.
type OptFloat struct {
	Float float64
	OK    bool
}
