package reporter

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// JSONReporter outputs findings rows in JSON format
type JSONReporter struct{}

// jsonOutput represents the JSON output structure
type jsonOutput struct {
	Summary  jsonSummary  `json:"summary"`
	Findings []models.Row `json:"findings"`
}

type jsonSummary struct {
	TotalFindings   int            `json:"total_findings"`
	FixableFindings int            `json:"fixable_findings"`
	BySeverity      map[string]int `json:"by_severity"`
	ByTool          map[string]int `json:"by_tool"`
}

// Report generates JSON output for the given rows
func (r *JSONReporter) Report(rows []models.Row) ([]byte, error) {
	output := jsonOutput{
		Summary: jsonSummary{
			TotalFindings: len(rows),
			BySeverity:    make(map[string]int),
			ByTool:        make(map[string]int),
		},
		Findings: rows,
	}
	if output.Findings == nil {
		output.Findings = []models.Row{}
	}

	for _, row := range rows {
		if row.Fixable {
			output.Summary.FixableFindings++
		}
		output.Summary.BySeverity[row.Severity.String()]++
		output.Summary.ByTool[row.Tool]++
	}

	return json.MarshalIndent(output, "", "  ")
}

// ScanReport is the JSON document written for a StackHawk scan
type ScanReport struct {
	Scan        *models.Scan         `json:"scan"`
	Findings    []models.ScanFinding `json:"findings"`
	Summary     ScanSummary          `json:"summary"`
	Error       string               `json:"error,omitempty"`
	GeneratedAt string               `json:"generated_at"`
}

// ScanSummary totals the findings of a scan
type ScanSummary struct {
	TotalFindings  int            `json:"total_findings"`
	SeverityCounts map[string]int `json:"severity_counts"`
}

// NewScanReport builds the report for result. result.Scan may be nil when
// no scan was found.
func NewScanReport(result models.ScanResult, now time.Time) ScanReport {
	findings := result.Findings
	if findings == nil {
		findings = []models.ScanFinding{}
	}
	return ScanReport{
		Scan:     result.Scan,
		Findings: findings,
		Summary: ScanSummary{
			TotalFindings:  len(findings),
			SeverityCounts: result.SeverityCounts(),
		},
		GeneratedAt: now.Format(time.RFC3339),
	}
}

// WriteScanJSON writes report as indented JSON. Non-ASCII text is written
// as is.
func WriteScanJSON(w io.Writer, report ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// WriteAlertsJSON writes the raw Dependabot alerts as an indented JSON
// array. An empty fetch is written as [].
func WriteAlertsJSON(w io.Writer, alerts []json.RawMessage) error {
	if alerts == nil {
		alerts = []json.RawMessage{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(alerts)
}
