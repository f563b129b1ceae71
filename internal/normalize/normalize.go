// Package normalize turns parsed findings into report rows.
package normalize

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// Language labels for paths that cannot be classified
const (
	LanguageOther   = "Other"
	LanguageUnknown = "Unknown"
)

var languages = map[string]string{
	".go":   "Go",
	".js":   "JavaScript",
	".jsx":  "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript",
	".py":   "Python",
	".java": "Java",
	".rb":   "Ruby",
	".php":  "PHP",
	".cs":   "C#",
	".cpp":  "C++",
	".cc":   "C++",
	".cxx":  "C++",
	".c":    "C",
	".yaml": "YAML",
	".yml":  "YAML",
	".json": "JSON",
}

const packagePrefix = "Package: "

// Normalizer converts findings into rows relative to a repository root
type Normalizer struct {
	Root string
	Now  func() time.Time

	absRoot string
}

// New creates a Normalizer for the repository at root
func New(root string) *Normalizer {
	n := &Normalizer{Root: root, Now: time.Now}
	if abs, err := filepath.Abs(root); err == nil {
		n.absRoot = abs
	}
	return n
}

// Normalize maps one finding to its report row
func (n *Normalizer) Normalize(f models.Finding) models.Row {
	path := n.Path(f.FilePath)

	configuration := f.Configuration
	if configuration == "" {
		configuration = f.Tool
	}

	return models.Row{
		Configuration: configuration,
		Language:      Language(path),
		FilePath:      path,
		Detected:      1,
		Fixable:       Fixable(f.Severity),
		Severity:      f.Severity,
		RuleID:        models.OrNA(f.RuleID),
		Message:       models.OrNA(f.Message),
		Line:          f.Line,
		Column:        f.Column,
		Tool:          models.OrNA(f.Tool),
		Source:        f.Source,
		Timestamp:     n.Now(),
	}
}

// All normalizes a batch of findings, keeping their order
func (n *Normalizer) All(findings []models.Finding) []models.Row {
	rows := make([]models.Row, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, n.Normalize(f))
	}
	return rows
}

// Path strips a file:// scheme and leading slashes, then expresses the path
// relative to the repository root when it lies inside it. Paths outside the
// root are passed through with forward slashes. Package locations and the
// sentinel are returned as is.
func (n *Normalizer) Path(p string) string {
	if p == "" || p == models.NotAvailable || strings.HasPrefix(p, packagePrefix) {
		return models.OrNA(p)
	}

	p = strings.TrimPrefix(p, "file://")
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimLeft(p, "/")

	if n.absRoot != "" {
		root := strings.TrimLeft(filepath.ToSlash(n.absRoot), "/")
		if rel, err := filepath.Rel(filepath.FromSlash(root), filepath.FromSlash(p)); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return models.OrNA(p)
}

// Language derives the source language from the path's extension.
// Missing paths are Unknown and unlisted extensions Other.
func Language(path string) string {
	if path == "" || path == models.NotAvailable {
		return LanguageUnknown
	}
	if lang, ok := languages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LanguageOther
}

// Fixable reports whether a finding of this severity counts as fixable.
// Every severity the parsers emit today (HIGH, MEDIUM, LOW) is fixable.
func Fixable(sev models.Severity) bool {
	switch sev {
	case models.SeverityHigh, models.SeverityMedium, models.SeverityLow:
		return true
	default:
		return false
	}
}
