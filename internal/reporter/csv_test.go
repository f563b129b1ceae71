package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []models.Row {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []models.Row{
		{
			Configuration: "CodeQL",
			Language:      "Go",
			FilePath:      "pkg/db.go",
			Detected:      1,
			Fixable:       true,
			Severity:      models.SeverityHigh,
			RuleID:        "go/sql-injection",
			Message:       "tainted input, see \"docs\"",
			Line:          42,
			Column:        7,
			Tool:          "CodeQL",
			Source:        models.SourceSARIF,
			Timestamp:     ts,
		},
		{
			Configuration: "govulncheck",
			Language:      "Unknown",
			FilePath:      "Package: golang.org/x/net",
			Detected:      1,
			Fixable:       true,
			Severity:      models.SeverityHigh,
			RuleID:        "GO-2024-0001",
			Message:       "HTTP/2 rapid reset",
			Tool:          "govulncheck",
			Source:        models.SourceGovulncheck,
			Timestamp:     ts,
		},
		{
			Configuration: "gosec",
			Language:      "Go",
			FilePath:      "main.go",
			Detected:      1,
			Severity:      models.SeverityInfo,
			RuleID:        "G104",
			Message:       "Errors unhandled",
			Line:          10,
			Column:        2,
			Tool:          "gosec",
			Source:        models.SourceGosec,
			Timestamp:     ts,
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVReporter(t *testing.T) {
	out, err := (&CSVReporter{}).Report(sampleRows())
	require.NoError(t, err)

	records := readCSV(t, out)
	require.Len(t, records, 4)
	assert.Equal(t, FindingsHeader, records[0])
	assert.Equal(t, []string{
		"CodeQL", "Go", "pkg/db.go", "1", "TRUE", "HIGH", "go/sql-injection",
		"tainted input, see \"docs\"", "42", "7", "CodeQL", "SARIF",
	}, records[1])
	assert.Equal(t, "Package: golang.org/x/net", records[2][2])
	assert.Equal(t, "0", records[2][8])
	assert.Equal(t, "FALSE", records[3][4])
	assert.Equal(t, "gosec-json", records[3][11])
}

func TestCSVReporter_HeaderOnly(t *testing.T) {
	out, err := (&CSVReporter{}).Report(nil)
	require.NoError(t, err)
	assert.Equal(t,
		"Configuration,Language,File Path,Detected Vulnerabilities,Fixable Vulnerabilities,Severity,Rule ID,Message,Line,Column,Tool,Source\n",
		string(out))
}

func TestWriteDependabotCSV(t *testing.T) {
	raw := `[
	  {
	    "number": 12,
	    "state": "open",
	    "dependency": {
	      "package": {"ecosystem": "npm", "name": "lodash"},
	      "manifest_path": "web/package-lock.json",
	      "scope": "runtime",
	      "relationship": "transitive"
	    },
	    "security_advisory": {
	      "ghsa_id": "GHSA-xxxx-yyyy-zzzz",
	      "cve_id": "CVE-2021-23337",
	      "summary": "Command injection in lodash",
	      "severity": "high",
	      "cvss": {"score": 7.2, "vector_string": "CVSS:3.1/AV:N"},
	      "published_at": "2021-02-15T00:00:00Z"
	    },
	    "security_vulnerability": {
	      "severity": "high",
	      "vulnerable_version_range": "< 4.17.21",
	      "first_patched_version": {"identifier": "4.17.21"}
	    },
	    "updated_at": "2026-01-01T00:00:00Z",
	    "html_url": "https://github.com/acme/widgets/security/dependabot/12"
	  },
	  {
	    "number": 13,
	    "state": "open",
	    "dependency": null,
	    "security_advisory": {"ghsa_id": "GHSA-aaaa", "cve_id": null, "cvss": {"score": null}},
	    "security_vulnerability": {"severity": "low", "first_patched_version": null}
	  }
	]`
	var alerts []models.DependabotAlert
	require.NoError(t, json.Unmarshal([]byte(raw), &alerts))

	var buf bytes.Buffer
	require.NoError(t, WriteDependabotCSV(&buf, alerts))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, DependabotHeader, records[0])
	assert.Len(t, records[0], 17)
	assert.Equal(t, []string{
		"12", "open", "lodash", "npm", "web/package-lock.json", "runtime", "transitive", "high",
		"GHSA-xxxx-yyyy-zzzz", "CVE-2021-23337", "Command injection in lodash", "< 4.17.21", "4.17.21",
		"7.2", "2021-02-15T00:00:00Z", "2026-01-01T00:00:00Z",
		"https://github.com/acme/widgets/security/dependabot/12",
	}, records[1])
	assert.Equal(t, []string{
		"13", "open", "", "", "", "", "", "low", "GHSA-aaaa", "", "", "", "", "", "", "", "",
	}, records[2])
}

func TestWriteDependabotCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDependabotCSV(&buf, nil))
	assert.Equal(t, strings.Join(DependabotHeader, ",")+"\n", buf.String())
}
