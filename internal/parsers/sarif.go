package parsers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// SARIFParser parses SARIF 2.1.0 logs from any static-analysis tool
type SARIFParser struct{}

// SARIF structures, reduced to the fields we read
type sarifLog struct {
	Runs []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool struct {
		Driver struct {
			Name string `json:"name"`
		} `json:"driver"`
	} `json:"tool"`
	AutomationDetails *struct {
		ID string `json:"id"`
	} `json:"automationDetails"`
	Results []sarifResult `json:"results"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation struct {
		ArtifactLocation struct {
			URI string `json:"uri"`
		} `json:"artifactLocation"`
		Region struct {
			StartLine   int `json:"startLine"`
			StartColumn int `json:"startColumn"`
		} `json:"region"`
	} `json:"physicalLocation"`
}

// knownTools maps path substrings to the tool name assumed when a run does
// not declare its driver. Checked in order.
var knownTools = []struct {
	needle string
	name   string
}{
	{"gosec", "gosec"},
	{"stackhawk", "StackHawk"},
	{"semgrep", "Semgrep"},
	{"trivy", "Trivy"},
	{"codeql", "CodeQL"},
}

const defaultSARIFTool = "CodeQL"

// Kind implements Parser
func (p *SARIFParser) Kind() models.SourceKind {
	return models.SourceSARIF
}

// CanParse returns true for *.sarif files
func (p *SARIFParser) CanParse(filename string) bool {
	return filepath.Ext(filename) == ".sarif"
}

// Parse extracts one finding per result location
func (p *SARIFParser) Parse(path string, content []byte) ([]models.Finding, error) {
	var log sarifLog
	if err := json.Unmarshal(content, &log); err != nil {
		return nil, fmt.Errorf("invalid SARIF document: %w", err)
	}

	fallbackTool := guessTool(path)

	var findings []models.Finding
	for _, run := range log.Runs {
		tool := run.Tool.Driver.Name
		if tool == "" {
			tool = fallbackTool
		}

		var category string
		if run.AutomationDetails != nil {
			category = run.AutomationDetails.ID
		}

		for _, result := range run.Results {
			severity := LevelToSeverity(result.Level)
			ruleID := models.OrNA(result.RuleID)
			message := models.OrNA(result.Message.Text)

			for _, loc := range result.Locations {
				phys := loc.PhysicalLocation
				findings = append(findings, models.Finding{
					Tool:          tool,
					Severity:      severity,
					RuleID:        ruleID,
					Message:       message,
					FilePath:      models.OrNA(phys.ArtifactLocation.URI),
					Line:          phys.Region.StartLine,
					Column:        phys.Region.StartColumn,
					Configuration: category,
					Source:        models.SourceSARIF,
				})
			}
		}
	}

	return findings, nil
}

// LevelToSeverity maps a SARIF result level: error is HIGH, warning (also
// the SARIF default when the level is absent) is MEDIUM, anything else LOW.
func LevelToSeverity(level string) models.Severity {
	switch strings.ToLower(level) {
	case "error":
		return models.SeverityHigh
	case "warning", "":
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func guessTool(path string) string {
	lower := strings.ToLower(path)
	for _, t := range knownTools {
		if strings.Contains(lower, t.needle) {
			return t.name
		}
	}
	return defaultSARIFTool
}
