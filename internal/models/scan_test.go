package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_FallbackFields(t *testing.T) {
	var scan Scan
	require.NoError(t, json.Unmarshal([]byte(`{"scanId":"abc","status":"COMPLETED","startedAt":1700000000000,"updatedAt":"2024-01-02"}`), &scan))

	assert.Equal(t, "abc", scan.ID)
	assert.Equal(t, "COMPLETED", scan.Status)
	assert.Equal(t, "1700000000000", scan.StartedAt)
	assert.Equal(t, "2024-01-02", scan.CompletedAt)
}

func TestScan_MarshalKeepsDocument(t *testing.T) {
	doc := `{"id":"s1","extra":{"nested":true}}`
	var scan Scan
	require.NoError(t, json.Unmarshal([]byte(doc), &scan))

	out, err := json.Marshal(scan)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(out))
}

func TestScan_MarshalConstructed(t *testing.T) {
	scan := Scan{ID: "sarif-import", Status: "completed"}
	out, err := json.Marshal(scan)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"sarif-import","status":"completed","startedAt":"","completedAt":""}`, string(out))
}

func TestScanFinding_Fallbacks(t *testing.T) {
	var f ScanFinding
	require.NoError(t, json.Unmarshal([]byte(`{"pluginId":"10020","name":"Missing header","message":"desc","severity":"High","requestUrl":"https://x/y","cwe":1021}`), &f))

	assert.Equal(t, "10020", f.ID)
	assert.Equal(t, "Missing header", f.Title)
	assert.Equal(t, "desc", f.Description)
	assert.Equal(t, "https://x/y", f.URL)
	assert.Equal(t, "1021", f.CWE)

	sev, ok := f.Level()
	require.True(t, ok)
	assert.Equal(t, SeverityHigh, sev)
}

func TestScanResult_SeverityCounts(t *testing.T) {
	result := ScanResult{Findings: []ScanFinding{
		{Severity: "High"},
		{Severity: "HIGH"},
		{Severity: "Low"},
		{Severity: "weird"},
		{},
	}}

	assert.Equal(t, map[string]int{"HIGH": 2, "LOW": 1, "weird": 1, "UNKNOWN": 1}, result.SeverityCounts())
}
