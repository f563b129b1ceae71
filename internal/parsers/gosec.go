package parsers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// GosecParser parses the JSON report of the gosec Go security linter
type GosecParser struct{}

// gosecReport represents `gosec -fmt json` output
type gosecReport struct {
	Issues []gosecIssue `json:"Issues"`
}

type gosecIssue struct {
	Severity   string         `json:"severity"`
	Confidence string         `json:"confidence"`
	RuleID     string         `json:"rule_id"`
	Details    string         `json:"details"`
	File       string         `json:"file"`
	Line       models.FlexInt `json:"line"`
	Column     models.FlexInt `json:"column"`
}

// Kind implements Parser
func (p *GosecParser) Kind() models.SourceKind {
	return models.SourceGosec
}

// CanParse returns true for *gosec*.json files
func (p *GosecParser) CanParse(filename string) bool {
	return filepath.Ext(filename) == ".json" && strings.Contains(filename, "gosec")
}

// Parse extracts one finding per gosec issue
func (p *GosecParser) Parse(path string, content []byte) ([]models.Finding, error) {
	var report gosecReport
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, fmt.Errorf("invalid gosec report: %w", err)
	}

	findings := make([]models.Finding, 0, len(report.Issues))
	for _, issue := range report.Issues {
		severity, err := models.ParseSeverity(issue.Severity)
		if err != nil {
			severity = models.SeverityLow
		}

		findings = append(findings, models.Finding{
			Tool:     "gosec",
			Severity: severity,
			RuleID:   models.OrNA(issue.RuleID),
			Message:  models.OrNA(issue.Details),
			FilePath: models.OrNA(issue.File),
			Line:     int(issue.Line),
			Column:   int(issue.Column),
			Source:   models.SourceGosec,
		})
	}

	return findings, nil
}
