package parsers

import (
	"os"

	"github.com/ethanolivertroy/secreport/internal/models"
	"go.uber.org/zap"
)

// Parser is the interface for scanner report parsers
type Parser interface {
	// Kind identifies the report format handled by the parser
	Kind() models.SourceKind

	// CanParse returns true if this parser can handle the given filename
	CanParse(filename string) bool

	// Parse extracts findings from the report content
	Parse(filepath string, content []byte) ([]models.Finding, error)
}

// GetAllParsers returns all available parsers
func GetAllParsers() []Parser {
	return []Parser{
		&SARIFParser{},
		&GosecParser{},
		&GovulncheckParser{},
	}
}

// ParseFile reads and parses one report. A file that cannot be read or
// decoded is logged and contributes no findings, so one bad report never
// aborts the batch.
func ParseFile(logger *zap.SugaredLogger, p Parser, path string) []models.Finding {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Errorw("failed to read report", "path", path, "format", p.Kind(), "error", err)
		return nil
	}

	findings, err := p.Parse(path, content)
	if err != nil {
		logger.Errorw("failed to parse report", "path", path, "format", p.Kind(), "error", err)
		return nil
	}
	return findings
}
