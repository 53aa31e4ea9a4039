package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Octrafic/qakit/internal/clierr"
	"github.com/Octrafic/qakit/internal/core/metrics"
	"github.com/Octrafic/qakit/internal/infra/logger"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matrix = `Status,Priority,Feature,Role,Device Size,Test Case Description,Ticket Link
Pass,P1,FeatureA,Admin,Mobile,Create flat,
Pass,P1,FeatureA,Member,Desktop,Invite member,
Fail,P0,FeatureB,Admin,All,Bill split rounding,BUG-12
Blocked,P2,FeatureA,Member,Mobile,Dark mode,
`

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func pinNow(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 10, 17, 9, 30, 5, 0, time.Local)
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
	return at
}

func TestRunWritesReport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	pinNow(t)
	require.NoError(t, os.WriteFile("test-matrix.csv", []byte(matrix), 0o644))

	out, err := execute(t)
	require.NoError(t, err)

	reportPath := filepath.Join(".", "test-metrics-report-20261017-093005.txt")
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	report := string(data)

	assert.True(t, strings.HasPrefix(out, "🔍 Analyzing test metrics...\n✅ Loaded 4 test cases from test-matrix.csv\n"))
	assert.Contains(t, out, "✅ Analysis complete! Report saved to: test-metrics-report-20261017-093005.txt\n\n"+report)
	assert.Contains(t, report, "TEST METRICS REPORT - FLAT EXPENSE MANAGEMENT SYSTEM")
	assert.Contains(t, report, "Pass Rate: 66.67%")
	assert.Contains(t, report, "Generated: 2026-10-17 09:30:05")
}

func TestRunFlagsAndJSON(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	pinNow(t)

	csvPath := filepath.Join(dir, "matrix.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(matrix), 0o644))
	outDir := filepath.Join(dir, "reports")
	jsonPath := filepath.Join(dir, "out", "analysis.json")

	_, err := execute(t, "--csv", csvPath, "--out-dir", outDir, "--json", jsonPath)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "test-metrics-report-20261017-093005.txt"))

	var a metrics.Analysis
	readJSON(t, jsonPath, &a)
	assert.Equal(t, 4, a.Overall.Total)
	assert.Equal(t, 66.67, a.Overall.PassRate)
	assert.Equal(t, []string{"FeatureA", "FeatureB"}, a.Features.Order)
	require.Len(t, a.Priorities.Buckets["P0"].CriticalFailures, 1)
}

func TestRunProjectNameFromConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	pinNow(t)
	require.NoError(t, os.WriteFile("test-matrix.csv", []byte(matrix), 0o644))
	require.NoError(t, os.WriteFile("qakit.yaml", []byte("metrics:\n  project_name: ROOMMATES\n"), 0o644))

	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "TEST METRICS REPORT - ROOMMATES")
}

func TestRunMissingCSV(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t)
	require.Error(t, err)
	assert.Equal(t, 1, clierr.ExitCodeOf(err))
	assert.Contains(t, out, "❌ Error: test-matrix.csv not found!")
}

func TestRunMissingColumns(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("test-matrix.csv", []byte("Status,Priority\nPass,P1\n"), 0o644))

	out, err := execute(t)
	require.Error(t, err)
	assert.Equal(t, 1, clierr.ExitCodeOf(err))
	assert.Contains(t, out, "❌ Error loading CSV: ")
	assert.ErrorIs(t, err, metrics.ErrMissingColumns)
}

func TestRejectsArguments(t *testing.T) {
	_, err := execute(t, "extra")
	require.Error(t, err)
}

func TestRunIgnoresContractSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	pinNow(t)
	t.Setenv("QAKIT_BASE_URL", "localhost:3001")
	t.Setenv("QAKIT_HEALTH_TIMEOUT", "0")
	require.NoError(t, os.WriteFile("test-matrix.csv", []byte(matrix), 0o644))

	_, err := execute(t)
	require.NoError(t, err)
	assert.FileExists(t, "test-metrics-report-20261017-093005.txt")
}

func TestRunEmptyCSVPathFromConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("qakit.yaml", []byte("metrics:\n  csv_path: \" \"\n"), 0o644))

	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRunDebugFileRecordsPassRate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	pinNow(t)
	t.Cleanup(func() { _ = logger.Init(false, "") })
	require.NoError(t, os.WriteFile("test-matrix.csv", []byte(matrix), 0o644))
	logPath := filepath.Join(dir, "debug.log")

	_, err := execute(t, "--debug-file", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Report written"`)
	assert.Contains(t, string(data), `"pass_rate":66.67`)
}
