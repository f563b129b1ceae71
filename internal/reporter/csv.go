package reporter

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// FindingsHeader is the column order of the generic findings CSV
var FindingsHeader = []string{
	"Configuration",
	"Language",
	"File Path",
	"Detected Vulnerabilities",
	"Fixable Vulnerabilities",
	"Severity",
	"Rule ID",
	"Message",
	"Line",
	"Column",
	"Tool",
	"Source",
}

// DependabotHeader is the column order of the Dependabot alerts CSV
var DependabotHeader = []string{
	"Alert Number",
	"State",
	"Package Name",
	"Ecosystem",
	"Manifest Path",
	"Scope",
	"Relationship",
	"Severity",
	"GHSA ID",
	"CVE ID",
	"Summary",
	"Vulnerable Version Range",
	"First Patched Version",
	"CVSS Score",
	"Published At",
	"Updated At",
	"HTML URL",
}

// CSVReporter outputs findings rows as CSV. The header is written even
// when there are no rows.
type CSVReporter struct{}

// Report generates CSV output for the given rows
func (r *CSVReporter) Report(rows []models.Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteFindingsCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFindingsCSV writes the generic findings CSV to w
func WriteFindingsCSV(w io.Writer, rows []models.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FindingsHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Configuration,
			row.Language,
			row.FilePath,
			strconv.Itoa(row.Detected),
			formatBool(row.Fixable),
			row.Severity.String(),
			row.RuleID,
			row.Message,
			strconv.Itoa(row.Line),
			strconv.Itoa(row.Column),
			row.Tool,
			string(row.Source),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDependabotCSV writes one row per alert. Values the API left out
// are written as empty cells.
func WriteDependabotCSV(w io.Writer, alerts []models.DependabotAlert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DependabotHeader); err != nil {
		return err
	}

	for _, a := range alerts {
		if err := cw.Write(dependabotRecord(a)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func dependabotRecord(a models.DependabotAlert) []string {
	var number, manifest, scope, relationship string
	if a.Number != nil {
		number = strconv.Itoa(*a.Number)
	}
	if d := a.Dependency; d != nil {
		manifest, scope, relationship = d.ManifestPath, d.Scope, d.Relationship
	}

	var ghsa, cve, summary, score, published string
	if adv := a.SecurityAdvisory; adv != nil {
		ghsa, summary, published = adv.GHSAID, adv.Summary, adv.PublishedAt
		if adv.CVEID != nil {
			cve = *adv.CVEID
		}
		if adv.CVSS != nil && adv.CVSS.Score != nil {
			score = strconv.FormatFloat(*adv.CVSS.Score, 'f', -1, 64)
		}
	}

	var versionRange, patched string
	if v := a.SecurityVulnerability; v != nil {
		versionRange = v.VulnerableVersionRange
		if v.FirstPatchedVersion != nil {
			patched = v.FirstPatchedVersion.Identifier
		}
	}

	return []string{
		number,
		a.State,
		a.PackageName(),
		a.Ecosystem(),
		manifest,
		scope,
		relationship,
		a.VulnerabilitySeverity(),
		ghsa,
		cve,
		summary,
		versionRange,
		patched,
		score,
		published,
		a.UpdatedAt,
		a.HTMLURL,
	}
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
