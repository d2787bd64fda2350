package tuner

import (
	"fmt"
	"io"
	"strings"

	"github.com/jasherai/mysqltuner/utils"
)

const headerWidth = 78

// Report is the final, read-only product of a run: the ordered findings, the
// aggregated recommendations, and whether the configured memory ceiling
// already exceeds physical RAM.
type Report struct {
	Findings       []Finding
	Recs           RecommendationSet
	MemoryExceeded bool
}

// RenderOptions are the presentation toggles layered over the report. The
// three visibility filters are independent; recommendations always render.
type RenderOptions struct {
	HideOK   bool
	HideWarn bool
	HideInfo bool
	NoColor  bool
}

// NewReport assembles a report from the classifier output and the derived
// memory headroom.
func NewReport(findings []Finding, recs RecommendationSet, derived *DerivedMetrics) *Report {
	return &Report{
		Findings:       findings,
		Recs:           recs,
		MemoryExceeded: derived.PctPhysicalMemory > memoryUsageMax,
	}
}

// Render writes the multi-section textual report. Section order and the
// finding order within each section are fixed by classification order.
func (r *Report) Render(w io.Writer, opts RenderOptions) {
	for _, section := range []Section{SectionGeneral, SectionEngines, SectionMetrics} {
		r.renderSection(w, section, opts)
	}
	r.renderRecommendations(w, opts)
}

func (r *Report) renderSection(w io.Writer, section Section, opts RenderOptions) {
	writeHeader(w, string(section))
	for _, f := range r.Findings {
		if f.Section != section {
			continue
		}
		if hidden(f.Severity, opts) {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", prefix(f.Severity, opts.NoColor), f.Message)
	}
}

func (r *Report) renderRecommendations(w io.Writer, opts RenderOptions) {
	writeHeader(w, "Recommendations")

	if r.Recs.Empty() {
		fmt.Fprintln(w, "No additional performance recommendations are available.")
		return
	}

	if len(r.Recs.General) > 0 {
		fmt.Fprintln(w, "General recommendations:")
		for _, rec := range r.Recs.General {
			fmt.Fprintf(w, "    %s\n", rec)
		}
	}

	if len(r.Recs.Adjustments) > 0 {
		fmt.Fprintln(w, "Variables to adjust:")
		if r.MemoryExceeded {
			banner := "*** MySQL's maximum memory usage is dangerously high ***\n" +
				"  *** Add RAM before increasing MySQL buffer variables ***"
			if !opts.NoColor {
				banner = utils.WarnStyle.Render(banner)
			}
			fmt.Fprintf(w, "  %s\n", banner)
		}
		for _, rec := range r.Recs.Adjustments {
			fmt.Fprintf(w, "    %s\n", rec)
		}
	}
}

func hidden(severity Severity, opts RenderOptions) bool {
	switch severity {
	case SeverityOK:
		return opts.HideOK
	case SeverityWarn:
		return opts.HideWarn
	case SeverityInfo:
		return opts.HideInfo
	}
	return false
}

func prefix(severity Severity, noColor bool) string {
	var tag string
	switch severity {
	case SeverityOK:
		tag = "[OK]"
		if !noColor {
			tag = utils.GoodStyle.Render(tag)
		}
	case SeverityWarn:
		tag = "[!!]"
		if !noColor {
			tag = utils.WarnStyle.Render(tag)
		}
	default:
		tag = "[--]"
		if !noColor {
			tag = utils.InfoStyle.Render(tag)
		}
	}
	return tag
}

func writeHeader(w io.Writer, name string) {
	dashes := headerWidth - len(name) - 10
	if dashes < 4 {
		dashes = 4
	}
	fmt.Fprintf(w, "-------- %s %s\n", name, strings.Repeat("-", dashes))
}
