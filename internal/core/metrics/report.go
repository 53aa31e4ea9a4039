package metrics

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// ProgressBarWidth is the character width of the completion bar
	ProgressBarWidth = 50

	// GeneratedLayout formats the report timestamp
	GeneratedLayout = "2006-01-02 15:04:05"

	ruleWide   = 80
	ruleNarrow = 40
)

// PriorityOrder is the fixed iteration order of the priority-wise section
var PriorityOrder = []string{"P0", "P1", "P2"}

var priorityNames = map[string]string{
	"P0": "Critical - Security & Data Loss",
	"P1": "High - Core Functionality",
	"P2": "Medium - User Experience",
}

// PriorityName returns the descriptive name of a priority code, or the code
// itself when it has none.
func PriorityName(priority string) string {
	if name, ok := priorityNames[priority]; ok {
		return name
	}
	return priority
}

// ReportOptions carries the values the report does not derive from the data
type ReportOptions struct {
	Project     string
	GeneratedAt time.Time
}

// ProgressBar renders a ProgressBarWidth bar for executed out of total and
// returns it with the number of filled cells.
func ProgressBar(executed, total int) (string, int) {
	filled := 0
	if total > 0 {
		filled = int(math.Round(float64(ProgressBarWidth) * float64(executed) / float64(total)))
	}
	filled = max(0, min(ProgressBarWidth, filled))
	return strings.Repeat("█", filled) + strings.Repeat("-", ProgressBarWidth-filled), filled
}

type reportWriter struct {
	lines []string
}

func (w *reportWriter) line(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

// text appends s verbatim
func (w *reportWriter) text(s string) {
	w.lines = append(w.lines, s)
}

func (w *reportWriter) blank() {
	w.lines = append(w.lines, "")
}

func (w *reportWriter) section(title string) {
	w.text(title)
	w.text(strings.Repeat("-", ruleNarrow))
}

func (w *reportWriter) bucket(label string, b Bucket) {
	w.line("%s:", label)
	w.line("  Total: %d | Executed: %d (%.1f%%)", b.Total, b.Executed, b.ExecutionRate())
	w.line("  Pass Rate: %.2f%% | Pass: %d | Fail: %d", b.PassRate, b.Pass, b.Fail)
	w.blank()
}

func (w *reportWriter) breakdown(title string, g Breakdown) {
	w.section(title)
	for _, key := range g.Sorted() {
		w.bucket(key, g.Buckets[key])
	}
}

// RenderReport formats a as the plain-text metrics report. The output only
// depends on a and opts.
func RenderReport(a *Analysis, opts ReportOptions) string {
	w := &reportWriter{}
	overall := a.Overall

	w.text(strings.Repeat("=", ruleWide))
	w.line("TEST METRICS REPORT - %s", opts.Project)
	w.text(strings.Repeat("=", ruleWide))
	w.line("Generated: %s", opts.GeneratedAt.Format(GeneratedLayout))
	w.line("Data Source: %s", a.Source)
	w.blank()

	w.section("📊 OVERALL TEST EXECUTION SUMMARY")
	w.line("Total Test Cases: %d", overall.Total)
	w.line("Executed Tests: %d", overall.Executed)
	w.line("Not Executed: %d", overall.NotExecuted)
	w.line("Pass Rate: %.2f%%", overall.PassRate)
	w.blank()
	w.line("Test Results Breakdown:")
	w.line("  ✅ Passed: %d", overall.Pass)
	w.line("  ❌ Failed: %d", overall.Fail)
	w.line("  🚫 Blocked: %d", overall.Blocked)
	w.line("  ⏸️  Skipped: %d", overall.Skipped)
	w.line("  🔄 In Progress: %d", overall.InProgress)
	w.blank()

	w.section("🎯 PRIORITY DISTRIBUTION")
	for _, pc := range a.Distribution {
		share := 0.0
		if overall.Total > 0 {
			share = float64(pc.Count) / float64(overall.Total) * 100
		}
		w.line("%s: %d tests (%.1f%%)", pc.Priority, pc.Count, share)
	}
	w.blank()

	if failures := a.CriticalFailures(); len(failures) > 0 {
		w.section("🚨 CRITICAL P0 FAILURES")
		for _, f := range failures {
			w.line("Feature: %s", f.Feature)
			w.line("Issue: %s", f.Description)
			if f.Ticket != "" {
				w.line("Ticket: %s", f.Ticket)
			}
			w.blank()
		}
	}

	w.breakdown("🔍 FEATURE COVERAGE ANALYSIS", a.Features)
	w.breakdown("👥 ROLE-BASED COVERAGE", a.Roles)
	w.breakdown("📱 DEVICE SIZE COVERAGE", a.Devices)

	w.section("⚡ PRIORITY-WISE ANALYSIS")
	for _, priority := range PriorityOrder {
		b, ok := a.Priorities.Get(priority)
		if !ok {
			continue
		}
		w.bucket(fmt.Sprintf("%s (%s)", priority, PriorityName(priority)), b)
	}

	w.section("💡 RECOMMENDATIONS")
	for _, rec := range Recommendations(a) {
		w.line("• %s", rec)
	}
	w.blank()

	w.section("📈 TEST COMPLETION TRACKING")
	completion := overall.ExecutionRate()
	bar, _ := ProgressBar(overall.Executed, overall.Total)
	w.line("Overall Completion: %.1f%%", completion)
	w.line("Progress: |%s| %.1f%%", bar, completion)
	w.blank()

	w.text(strings.Repeat("=", ruleWide))

	return strings.Join(w.lines, "\n")
}
