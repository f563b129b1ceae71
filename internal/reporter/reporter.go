package reporter

import (
	"fmt"

	"github.com/ethanolivertroy/secreport/internal/models"
)

// Reporter is the interface for generic findings output formatters
type Reporter interface {
	// Report generates output for the given rows
	Report(rows []models.Row) ([]byte, error)
}

// Get returns a reporter for the specified format
func Get(format string) (Reporter, error) {
	switch format {
	case "csv":
		return &CSVReporter{}, nil
	case "json":
		return &JSONReporter{}, nil
	case "sarif":
		return &SARIFReporter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: csv, json, sarif)", format)
	}
}
