package parsers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// GovulncheckParser parses govulncheck JSON output. Both the document form
// ({"Vulns":[{"OSV":...}]}) and the message stream written by
// `govulncheck -json` ({"osv":...} values) are accepted.
type GovulncheckParser struct{}

// govulncheckMessage is one top-level JSON value of a report.
// encoding/json matches keys case-insensitively, so "OSV" and "osv" both land in OSV.
type govulncheckMessage struct {
	Vulns []struct {
		OSV *osvEntry `json:"OSV"`
	} `json:"Vulns"`
	OSV *osvEntry `json:"osv"`
}

type osvEntry struct {
	ID       string        `json:"id"`
	Summary  string        `json:"summary"`
	Affected []osvAffected `json:"affected"`
}

type osvAffected struct {
	Packages []osvPackage `json:"packages"`
	Package  *osvPackage  `json:"package"`
}

type osvPackage struct {
	Name string `json:"name"`
}

// Kind implements Parser
func (p *GovulncheckParser) Kind() models.SourceKind {
	return models.SourceGovulncheck
}

// CanParse returns true for *govulncheck*.json files
func (p *GovulncheckParser) CanParse(filename string) bool {
	return filepath.Ext(filename) == ".json" && strings.Contains(filename, "govulncheck")
}

// Parse extracts one finding per vulnerability, affected entry and package
func (p *GovulncheckParser) Parse(path string, content []byte) ([]models.Finding, error) {
	dec := json.NewDecoder(bytes.NewReader(content))

	var findings []models.Finding
	values := 0
	for {
		var msg govulncheckMessage
		err := dec.Decode(&msg)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid govulncheck report: %w", err)
		}
		values++

		for _, v := range msg.Vulns {
			findings = appendOSV(findings, v.OSV)
		}
		findings = appendOSV(findings, msg.OSV)
	}

	if values == 0 {
		return nil, errors.New("invalid govulncheck report: empty document")
	}
	return findings, nil
}

func appendOSV(findings []models.Finding, osv *osvEntry) []models.Finding {
	if osv == nil {
		return findings
	}

	for _, aff := range osv.Affected {
		pkgs := aff.Packages
		if aff.Package != nil {
			pkgs = append(pkgs, *aff.Package)
		}

		for _, pkg := range pkgs {
			findings = append(findings, models.Finding{
				Tool:     "govulncheck",
				Severity: models.SeverityHigh,
				RuleID:   models.OrNA(osv.ID),
				Message:  models.OrNA(osv.Summary),
				FilePath: "Package: " + models.OrNA(pkg.Name),
				Source:   models.SourceGovulncheck,
			})
		}
	}
	return findings
}
