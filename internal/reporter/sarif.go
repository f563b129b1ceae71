package reporter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// SARIFReporter merges normalized rows into one SARIF 2.1.0 log with a run
// per tool, suitable for GitHub Code Scanning upload
type SARIFReporter struct{}

// SARIF structures
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string          `json:"id"`
	ShortDescription sarifText       `json:"shortDescription"`
	DefaultConfig    sarifRuleConfig `json:"defaultConfiguration"`
	Properties       sarifProperties `json:"properties"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifProperties struct {
	Tags             []string `json:"tags"`
	SecuritySeverity string   `json:"security-severity,omitempty"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifText         `json:"message"`
	Locations           []sarifLocation   `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// Report generates SARIF output for the given rows
func (r *SARIFReporter) Report(rows []models.Row) ([]byte, error) {
	byTool := make(map[string][]models.Row)
	for _, row := range rows {
		byTool[row.Tool] = append(byTool[row.Tool], row)
	}

	tools := make([]string, 0, len(byTool))
	for tool := range byTool {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	report := sarifReport{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    make([]sarifRun, 0, len(tools)),
	}
	for _, tool := range tools {
		rules, ruleIndexMap := r.buildRules(byTool[tool])
		report.Runs = append(report.Runs, sarifRun{
			Tool:    sarifTool{Driver: sarifDriver{Name: tool, Rules: rules}},
			Results: r.buildResults(byTool[tool], ruleIndexMap),
		})
	}

	return json.MarshalIndent(report, "", "  ")
}

// buildRules lists each rule once, in order of first appearance
func (r *SARIFReporter) buildRules(rows []models.Row) ([]sarifRule, map[string]int) {
	rules := make([]sarifRule, 0)
	ruleIndexMap := make(map[string]int)

	for _, row := range rows {
		if _, exists := ruleIndexMap[row.RuleID]; exists {
			continue
		}
		ruleIndexMap[row.RuleID] = len(rules)
		rules = append(rules, sarifRule{
			ID:               row.RuleID,
			ShortDescription: sarifText{Text: row.RuleID},
			DefaultConfig:    sarifRuleConfig{Level: sarifLevel(row.Severity)},
			Properties: sarifProperties{
				Tags:             []string{"security"},
				SecuritySeverity: securitySeverity(row.Severity),
			},
		})
	}

	return rules, ruleIndexMap
}

func (r *SARIFReporter) buildResults(rows []models.Row, ruleIndexMap map[string]int) []sarifResult {
	results := make([]sarifResult, 0, len(rows))

	for _, row := range rows {
		location := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifact{URI: row.FilePath},
			},
		}
		if row.Line > 0 {
			location.PhysicalLocation.Region = &sarifRegion{
				StartLine:   row.Line,
				StartColumn: row.Column,
			}
		}

		results = append(results, sarifResult{
			RuleID:    row.RuleID,
			RuleIndex: ruleIndexMap[row.RuleID],
			Level:     sarifLevel(row.Severity),
			Message:   sarifText{Text: row.Message},
			Locations: []sarifLocation{location},
			PartialFingerprints: map[string]string{
				"primaryLocationLineHash": fmt.Sprintf("%s:%s:%d", row.RuleID, row.FilePath, row.Line),
			},
		})
	}

	return results
}

// sarifLevel is the inverse of the level mapping applied when parsing
func sarifLevel(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical, models.SeverityHigh:
		return "error"
	case models.SeverityMedium:
		return "warning"
	case models.SeverityLow:
		return "note"
	default:
		return "none"
	}
}

// securitySeverity returns the GitHub security-severity score for sev
func securitySeverity(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical:
		return "9.5"
	case models.SeverityHigh:
		return "8.0"
	case models.SeverityMedium:
		return "5.5"
	case models.SeverityLow:
		return "2.0"
	default:
		return ""
	}
}
