package parsers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScanSARIF(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "stackhawk-results.sarif"))
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	result, err := ParseScanSARIF(content, now)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, SARIFImportScanID, result.Scan.ID)
	assert.Equal(t, "completed", result.Scan.Status)
	assert.Equal(t, "2026-03-01T12:00:00Z", result.Scan.StartedAt)
	require.Len(t, result.Findings, 4)

	first := result.Findings[0]
	assert.Equal(t, "10038", first.ID)
	assert.Equal(t, "10038", first.CWE)
	assert.Equal(t, "HIGH", first.Severity)
	assert.Equal(t, "https://app.example.com/login", first.URL)
	assert.Equal(t, "Content Security Policy (CSP) Header Not Set", first.Title)

	assert.Equal(t, "LOW", result.Findings[1].Severity)
	assert.Equal(t, models.NotAvailable, result.Findings[1].URL)
	assert.Equal(t, "INFO", result.Findings[2].Severity)
	assert.Equal(t, "MEDIUM", result.Findings[3].Severity)
}

func TestParseScanSARIF_NoResults(t *testing.T) {
	result, err := ParseScanSARIF([]byte(`{"runs":[{"results":[]}]}`), time.Now())
	require.NoError(t, err)
	assert.Nil(t, result)

	_, err = ParseScanSARIF([]byte(`{`), time.Now())
	assert.Error(t, err)
}

func TestParseScanSARIF_TitleTruncated(t *testing.T) {
	long := strings.Repeat("é", 150)
	doc := `{"runs":[{"results":[{"ruleId":"1","message":{"text":"` + long + `"}}]}]}`

	result, err := ParseScanSARIF([]byte(doc), time.Now())
	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, 100, len([]rune(result.Findings[0].Title)))
	assert.Equal(t, long, result.Findings[0].Description)
}

func TestParseScanSARIF_TitleFallsBackToRuleID(t *testing.T) {
	doc := `{"runs":[{"results":[
		{"ruleId":"10202","level":"warning","message":{"text":""}},
		{"ruleId":"10021","level":"note"},
		{"level":"note"}
	]}]}`

	result, err := ParseScanSARIF([]byte(doc), time.Now())
	require.NoError(t, err)
	require.Len(t, result.Findings, 3)

	assert.Equal(t, "10202", result.Findings[0].Title)
	assert.Equal(t, models.NotAvailable, result.Findings[0].Description)
	assert.Equal(t, "10021", result.Findings[1].Title)
	assert.Equal(t, models.NotAvailable, result.Findings[2].Title)
}

func TestScanLevelToSeverity(t *testing.T) {
	assert.Equal(t, models.SeverityHigh, ScanLevelToSeverity("error"))
	assert.Equal(t, models.SeverityMedium, ScanLevelToSeverity("warning"))
	assert.Equal(t, models.SeverityLow, ScanLevelToSeverity("note"))
	assert.Equal(t, models.SeverityInfo, ScanLevelToSeverity("None"))
	assert.Equal(t, models.SeverityMedium, ScanLevelToSeverity("other"))
}
