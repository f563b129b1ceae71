package scanner

import (
	"context"
	"fmt"

	"github.com/ethanolivertroy/secreport/internal/filter"
	"github.com/ethanolivertroy/secreport/internal/locator"
	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/ethanolivertroy/secreport/internal/normalize"
	"github.com/ethanolivertroy/secreport/internal/parsers"
	"go.uber.org/zap"
)

// Scanner orchestrates report extraction from the local tree
type Scanner struct {
	config     *models.Config
	parsers    []parsers.Parser
	normalizer *normalize.Normalizer
	filter     *filter.Filter
	logger     *zap.SugaredLogger
}

// Result is the outcome of one extraction run
type Result struct {
	// Reports lists the candidate files found per format
	Reports locator.Reports

	// Parsed counts findings before filtering
	Parsed int

	// Rows are the normalized rows that passed the filter
	Rows []models.Row
}

// New creates a new Scanner with the given configuration. An invalid
// filter expression is reported here, before any file is read.
func New(config *models.Config, logger *zap.SugaredLogger) (*Scanner, error) {
	f, err := filter.New(config.Filter)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Scanner{
		config:     config,
		parsers:    parsers.GetAllParsers(),
		normalizer: normalize.New(config.Root),
		filter:     f,
		logger:     logger,
	}, nil
}

// Scan locates every report under the configured root, parses them in
// format order and returns the normalized rows. Reports that fail to parse
// contribute nothing.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	// Step 1: Find candidate reports
	reports, err := locator.Locate(s.config.Root, s.parsers)
	if err != nil {
		return nil, fmt.Errorf("failed to locate reports: %w", err)
	}
	for _, p := range s.parsers {
		s.logger.Infow("located reports", "format", p.Kind(), "files", len(reports[p.Kind()]))
	}

	// Step 2: Parse each report, one format at a time
	var findings []models.Finding
	for _, p := range s.parsers {
		for _, path := range reports[p.Kind()] {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("extraction interrupted: %w", err)
			}

			parsed := parsers.ParseFile(s.logger, p, path)
			s.logger.Infow("processed report", "path", path, "format", p.Kind(), "findings", len(parsed))
			findings = append(findings, parsed...)
		}
	}

	// Step 3: Normalize and filter
	rows := s.normalizer.All(findings)
	if s.filter != nil {
		before := len(rows)
		rows = s.filter.Apply(rows, s.logger)
		s.logger.Infow("applied filter", "filter", s.filter.String(), "kept", len(rows), "dropped", before-len(rows))
	}

	return &Result{
		Reports: reports,
		Parsed:  len(findings),
		Rows:    rows,
	}, nil
}
