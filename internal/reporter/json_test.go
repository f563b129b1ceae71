package reporter

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONReporter(t *testing.T) {
	out, err := (&JSONReporter{}).Report(sampleRows())
	require.NoError(t, err)

	var doc struct {
		Summary struct {
			TotalFindings   int            `json:"total_findings"`
			FixableFindings int            `json:"fixable_findings"`
			BySeverity      map[string]int `json:"by_severity"`
			ByTool          map[string]int `json:"by_tool"`
		} `json:"summary"`
		Findings []models.Row `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, 3, doc.Summary.TotalFindings)
	assert.Equal(t, 2, doc.Summary.FixableFindings)
	assert.Equal(t, map[string]int{"HIGH": 2, "INFO": 1}, doc.Summary.BySeverity)
	assert.Equal(t, 1, doc.Summary.ByTool["gosec"])
	require.Len(t, doc.Findings, 3)
	assert.Equal(t, "pkg/db.go", doc.Findings[0].FilePath)
}

func TestJSONReporter_Empty(t *testing.T) {
	out, err := (&JSONReporter{}).Report(nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"findings": []`)
}

func TestScanReport(t *testing.T) {
	var scan models.Scan
	require.NoError(t, json.Unmarshal([]byte(`{"scanId":"s-1","status":"COMPLETED","application":{"name":"web"}}`), &scan))

	var findings []models.ScanFinding
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"1","title":"SQL Injection","severity":"High","paths":["/login"]},
		{"id":"2","title":"Cookie without SameSite","severity":"LOW"},
		{"id":"3","title":"Odd","severity":"Weird"},
		{"id":"4","title":"Unrated"}
	]`), &findings))

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	report := NewScanReport(models.ScanResult{Scan: &scan, Findings: findings}, now)

	var buf bytes.Buffer
	require.NoError(t, WriteScanJSON(&buf, report))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2026-03-04T05:06:07Z", doc["generated_at"])
	assert.NotContains(t, doc, "error")

	scanDoc := doc["scan"].(map[string]any)
	assert.Equal(t, "s-1", scanDoc["scanId"])
	assert.Contains(t, scanDoc, "application")

	summary := doc["summary"].(map[string]any)
	assert.Equal(t, float64(4), summary["total_findings"])
	assert.Equal(t, map[string]any{
		"HIGH":    float64(1),
		"LOW":     float64(1),
		"Weird":   float64(1),
		"UNKNOWN": float64(1),
	}, summary["severity_counts"])

	first := doc["findings"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"/login"}, first["paths"])
}

func TestScanReport_NoScan(t *testing.T) {
	report := NewScanReport(models.ScanResult{}, time.Now())
	report.Error = "No scan found"

	var buf bytes.Buffer
	require.NoError(t, WriteScanJSON(&buf, report))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Nil(t, doc["scan"])
	assert.Equal(t, []any{}, doc["findings"])
	assert.Equal(t, "No scan found", doc["error"])
	assert.Equal(t, map[string]any{
		"total_findings":  float64(0),
		"severity_counts": map[string]any{},
	}, doc["summary"])
}

func TestWriteAlertsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAlertsJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteAlertsJSON(&buf, []json.RawMessage{json.RawMessage(`{"number":1,"summary":"a < b"}`)}))
	assert.Contains(t, buf.String(), `"summary": "a < b"`)
}
