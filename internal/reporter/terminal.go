package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// TerminalReporter outputs a human-readable summary of findings rows
type TerminalReporter struct{}

// Report generates the terminal summary for the given rows
func (r *TerminalReporter) Report(rows []models.Row) ([]byte, error) {
	var sb strings.Builder
	writeBanner(&sb)
	sb.WriteString(fmt.Sprintf("  Total findings: %d\n", len(rows)))

	if len(rows) > 0 {
		bySeverity := make(map[string]int)
		byTool := make(map[string]int)
		for _, row := range rows {
			bySeverity[row.Severity.String()]++
			byTool[row.Tool]++
		}

		sb.WriteString("\n  By Severity:\n")
		writeSeverityCounts(&sb, bySeverity)
		sb.WriteString("\n  By Tool:\n")
		writeCounts(&sb, byTool)
	}

	return []byte(sb.String()), nil
}

// FormatDependabotSummary renders alert totals by severity and ecosystem
func FormatDependabotSummary(alerts []models.DependabotAlert) string {
	var sb strings.Builder
	writeBanner(&sb)
	sb.WriteString(fmt.Sprintf("  Total alerts: %d\n", len(alerts)))

	if len(alerts) > 0 {
		bySeverity := make(map[string]int)
		byEcosystem := make(map[string]int)
		for _, a := range alerts {
			bySeverity[orUnknown(a.VulnerabilitySeverity())]++
			byEcosystem[orUnknown(a.Ecosystem())]++
		}

		sb.WriteString("\n  By Severity:\n")
		writeCounts(&sb, bySeverity)
		sb.WriteString("\n  By Ecosystem:\n")
		writeCounts(&sb, byEcosystem)
	}

	return sb.String()
}

// FormatScanSummary renders the finding totals of a scan
func FormatScanSummary(result models.ScanResult) string {
	var sb strings.Builder
	writeBanner(&sb)
	sb.WriteString(fmt.Sprintf("  Total findings: %d\n", len(result.Findings)))

	if len(result.Findings) > 0 {
		sb.WriteString("\n  By Severity:\n")
		writeSeverityCounts(&sb, result.SeverityCounts())
	}

	return sb.String()
}

// FilesGenerated lists the reports written by a run
func FilesGenerated(paths ...string) string {
	var sb strings.Builder
	sb.WriteString("\nFiles generated:\n")
	for _, p := range paths {
		sb.WriteString(fmt.Sprintf("  - %s\n", p))
	}
	return sb.String()
}

func writeBanner(sb *strings.Builder) {
	sb.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	sb.WriteString("Summary:\n")
}

// writeSeverityCounts lists the closed severity set in report order,
// skipping severities with no findings
func writeSeverityCounts(sb *strings.Builder, counts map[string]int) {
	for _, sev := range models.Severities() {
		if n := counts[sev.String()]; n > 0 {
			sb.WriteString(fmt.Sprintf("    %s: %d\n", sev, n))
		}
	}
}

// writeCounts lists counts from most to least frequent
func writeCounts(sb *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("    %s: %d\n", k, counts[k]))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
