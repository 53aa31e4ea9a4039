package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderReport(t *testing.T) {
	a := Analyze(exampleRecords(), "test-matrix.csv")
	opts := ReportOptions{
		Project:     "FLAT EXPENSE MANAGEMENT SYSTEM",
		GeneratedAt: time.Date(2026, 10, 17, 9, 30, 5, 0, time.UTC),
	}

	want := strings.Join([]string{
		strings.Repeat("=", 80),
		"TEST METRICS REPORT - FLAT EXPENSE MANAGEMENT SYSTEM",
		strings.Repeat("=", 80),
		"Generated: 2026-10-17 09:30:05",
		"Data Source: test-matrix.csv",
		"",
		"📊 OVERALL TEST EXECUTION SUMMARY",
		strings.Repeat("-", 40),
		"Total Test Cases: 4",
		"Executed Tests: 3",
		"Not Executed: 0",
		"Pass Rate: 66.67%",
		"",
		"Test Results Breakdown:",
		"  ✅ Passed: 2",
		"  ❌ Failed: 1",
		"  🚫 Blocked: 1",
		"  ⏸️  Skipped: 0",
		"  🔄 In Progress: 0",
		"",
		"🎯 PRIORITY DISTRIBUTION",
		strings.Repeat("-", 40),
		"P1: 2 tests (50.0%)",
		"P0: 1 tests (25.0%)",
		"P2: 1 tests (25.0%)",
		"",
		"🚨 CRITICAL P0 FAILURES",
		strings.Repeat("-", 40),
		"Feature: FeatureB",
		"Issue: Bill split rounding",
		"Ticket: BUG-12",
		"",
		"🔍 FEATURE COVERAGE ANALYSIS",
		strings.Repeat("-", 40),
		"FeatureA:",
		"  Total: 3 | Executed: 2 (66.7%)",
		"  Pass Rate: 100.00% | Pass: 2 | Fail: 0",
		"",
		"FeatureB:",
		"  Total: 1 | Executed: 1 (100.0%)",
		"  Pass Rate: 0.00% | Pass: 0 | Fail: 1",
		"",
		"👥 ROLE-BASED COVERAGE",
		strings.Repeat("-", 40),
		"Admin:",
		"  Total: 1 | Executed: 1 (100.0%)",
		"  Pass Rate: 0.00% | Pass: 0 | Fail: 1",
		"",
		"Resident:",
		"  Total: 3 | Executed: 2 (66.7%)",
		"  Pass Rate: 100.00% | Pass: 2 | Fail: 0",
		"",
		"📱 DEVICE SIZE COVERAGE",
		strings.Repeat("-", 40),
		"All:",
		"  Total: 3 | Executed: 2 (66.7%)",
		"  Pass Rate: 100.00% | Pass: 2 | Fail: 0",
		"",
		"Mobile:",
		"  Total: 1 | Executed: 1 (100.0%)",
		"  Pass Rate: 0.00% | Pass: 0 | Fail: 1",
		"",
		"⚡ PRIORITY-WISE ANALYSIS",
		strings.Repeat("-", 40),
		"P0 (Critical - Security & Data Loss):",
		"  Total: 1 | Executed: 1 (100.0%)",
		"  Pass Rate: 0.00% | Pass: 0 | Fail: 1",
		"",
		"P1 (High - Core Functionality):",
		"  Total: 2 | Executed: 2 (100.0%)",
		"  Pass Rate: 100.00% | Pass: 2 | Fail: 0",
		"",
		"P2 (Medium - User Experience):",
		"  Total: 1 | Executed: 0 (0.0%)",
		"  Pass Rate: 0.00% | Pass: 0 | Fail: 0",
		"",
		"💡 RECOMMENDATIONS",
		strings.Repeat("-", 40),
		"• URGENT: Address 1 P0 failures before proceeding with other tests",
		"• Focus on improving pass rate - currently below 90%",
		"• Increase device-specific testing - many tests only cover 'All' devices",
		"",
		"📈 TEST COMPLETION TRACKING",
		strings.Repeat("-", 40),
		"Overall Completion: 75.0%",
		"Progress: |" + strings.Repeat("█", 38) + strings.Repeat("-", 12) + "| 75.0%",
		"",
		strings.Repeat("=", 80),
	}, "\n")

	assert.Equal(t, want, RenderReport(a, opts))
}

func TestRenderReportOmitsEmptySections(t *testing.T) {
	records := repeat(3, Record{Status: "Pass", Priority: "P1", Feature: "Auth", Role: "Admin", DeviceSize: "Mobile"})
	report := RenderReport(Analyze(records, "m.csv"), ReportOptions{Project: "X"})

	assert.NotContains(t, report, "CRITICAL P0 FAILURES")
	assert.NotContains(t, report, "P0 (Critical")
	assert.NotContains(t, report, "P2 (Medium")
	assert.Contains(t, report, "P1 (High - Core Functionality):")
	assert.Contains(t, report, "💡 RECOMMENDATIONS\n"+strings.Repeat("-", 40)+"\n\n📈")
	assert.Contains(t, report, "Progress: |"+strings.Repeat("█", 50)+"| 100.0%")
}

func TestRenderReportTicketLineOnlyWhenPresent(t *testing.T) {
	records := []Record{{Status: "Fail", Priority: "P0", Feature: "Auth", Description: "Token leak"}}
	report := RenderReport(Analyze(records, "m.csv"), ReportOptions{Project: "X"})

	assert.Contains(t, report, "Feature: Auth\nIssue: Token leak\n\n")
	assert.NotContains(t, report, "Ticket:")
}

func TestRenderReportEmptyData(t *testing.T) {
	report := RenderReport(Analyze(nil, "empty.csv"), ReportOptions{Project: "X"})

	assert.Contains(t, report, "Total Test Cases: 0")
	assert.Contains(t, report, "Overall Completion: 0.0%")
	assert.Contains(t, report, "Progress: |"+strings.Repeat("-", 50)+"| 0.0%")
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		executed, total int
		filled          int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{3, 4, 38},
		{1, 3, 17},
		{2, 3, 33},
		{1, 200, 0},
		{3, 200, 1},
		{10, 10, 50},
		{12, 10, 50},
		{-1, 10, 0},
	}

	for _, tt := range tests {
		bar, filled := ProgressBar(tt.executed, tt.total)
		assert.Equal(t, tt.filled, filled, "executed=%d total=%d", tt.executed, tt.total)
		assert.Equal(t, ProgressBarWidth, len([]rune(bar)))
		assert.Equal(t, tt.filled, strings.Count(bar, "█"))
	}
}

func TestPriorityName(t *testing.T) {
	assert.Equal(t, "Critical - Security & Data Loss", PriorityName("P0"))
	assert.Equal(t, "P3", PriorityName("P3"))
}

func TestRenderReportKeepsPercentSigns(t *testing.T) {
	records := []Record{{Status: StatusPass, Priority: "P1", Feature: "Split 100%", Role: "Admin", DeviceSize: "All"}}
	out := RenderReport(Analyze(records, "m%d.csv"), ReportOptions{Project: "QA %s 100%"})

	assert.Contains(t, out, "TEST METRICS REPORT - QA %s 100%\n")
	assert.Contains(t, out, "Data Source: m%d.csv\n")
	assert.Contains(t, out, "\nSplit 100%:\n")
	assert.NotContains(t, out, "%!")
}

func TestReportWriterTextIsVerbatim(t *testing.T) {
	w := &reportWriter{}
	w.section("50% DONE %d")
	w.line("%d%%", 7)

	assert.Equal(t, []string{"50% DONE %d", strings.Repeat("-", ruleNarrow), "7%"}, w.lines)
}
