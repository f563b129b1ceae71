package models

import "time"

// NotAvailable fills string fields the source document left out
const NotAvailable = "N/A"

// SourceKind tags the parser that produced a finding
type SourceKind string

const (
	SourceSARIF       SourceKind = "SARIF"
	SourceGosec       SourceKind = "gosec-json"
	SourceGovulncheck SourceKind = "govulncheck-json"
)

// Finding is one security issue extracted from a scanner report.
// String fields are never empty once a parser has produced the finding:
// absent values carry NotAvailable.
type Finding struct {
	Tool          string
	Severity      Severity
	RuleID        string
	Message       string
	FilePath      string // may be "Package: <name>" for dependency findings
	Line          int
	Column        int
	Configuration string // analysis category, empty when the source has none
	Source        SourceKind
	Timestamp     time.Time // set at normalization, not taken from the report
}

// Row is a normalized finding flattened for the generic findings report
type Row struct {
	Configuration string     `json:"configuration"`
	Language      string     `json:"language"`
	FilePath      string     `json:"file_path"`
	Detected      int        `json:"detected_vulnerabilities"`
	Fixable       bool       `json:"fixable_vulnerabilities"`
	Severity      Severity   `json:"severity"`
	RuleID        string     `json:"rule_id"`
	Message       string     `json:"message"`
	Line          int        `json:"line"`
	Column        int        `json:"column"`
	Tool          string     `json:"tool"`
	Source        SourceKind `json:"source"`
	Timestamp     time.Time  `json:"timestamp"`
}

// OrNA returns s, or NotAvailable when s is empty
func OrNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
