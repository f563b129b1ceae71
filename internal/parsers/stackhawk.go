package parsers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// SARIFImportScanID identifies a scan built from a local SARIF file
const SARIFImportScanID = "sarif-import"

const maxTitleLength = 100

// ParseScanSARIF converts the SARIF file written by a StackHawk scan into
// a scan result. The first run holding results is used, one scan finding
// per result. A nil result with a nil error means the file holds no
// results and the caller should fall back to the API.
func ParseScanSARIF(content []byte, now time.Time) (*models.ScanResult, error) {
	var log sarifLog
	if err := json.Unmarshal(content, &log); err != nil {
		return nil, fmt.Errorf("invalid SARIF document: %w", err)
	}

	for _, run := range log.Runs {
		if len(run.Results) == 0 {
			continue
		}

		findings := make([]models.ScanFinding, 0, len(run.Results))
		for _, result := range run.Results {
			ruleID := models.OrNA(result.RuleID)
			text := models.OrNA(result.Message.Text)
			title := text
			if result.Message.Text == "" {
				title = ruleID
			}

			url := models.NotAvailable
			if len(result.Locations) > 0 {
				url = models.OrNA(result.Locations[0].PhysicalLocation.ArtifactLocation.URI)
			}

			findings = append(findings, models.ScanFinding{
				ID:          ruleID,
				Title:       truncate(title, maxTitleLength),
				Description: text,
				Severity:    ScanLevelToSeverity(result.Level).String(),
				URL:         url,
				CWE:         ruleID,
			})
		}

		stamp := now.Format(time.RFC3339)
		return &models.ScanResult{
			Scan: &models.Scan{
				ID:          SARIFImportScanID,
				Status:      "completed",
				StartedAt:   stamp,
				CompletedAt: stamp,
			},
			Findings: findings,
		}, nil
	}

	return nil, nil
}

// ScanLevelToSeverity maps SARIF levels for DAST imports: error is HIGH,
// warning MEDIUM, note LOW, none INFO. Unknown levels are MEDIUM.
func ScanLevelToSeverity(level string) models.Severity {
	switch strings.ToLower(level) {
	case "error":
		return models.SeverityHigh
	case "note":
		return models.SeverityLow
	case "none":
		return models.SeverityInfo
	default:
		return models.SeverityMedium
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
