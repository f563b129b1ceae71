package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ethanolivertroy/secreport/internal/clients"
	"github.com/ethanolivertroy/secreport/internal/config"
	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/ethanolivertroy/secreport/internal/parsers"
	"github.com/ethanolivertroy/secreport/internal/reporter"
	"github.com/ethanolivertroy/secreport/internal/results"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	stackhawkSARIFFile = "stackhawk-results.sarif"
	stackhawkJSONFile  = "stackhawk-results.json"
	stackhawkPDFFile   = "stackhawk-security-report.pdf"

	noScanMessage = "No scan found. Make sure a scan has been completed in StackHawk platform."
)

var flagAppID string

var stackhawkCmd = &cobra.Command{
	Use:   "stackhawk",
	Short: "Build JSON and PDF reports for the latest StackHawk scan",
	Long: `stackhawk reports the findings of the latest StackHawk scan of an
application. When the output directory already holds the SARIF file of a
scan that just ran (stackhawk-results.sarif), it is used instead of the API.

The API key is read from STACKHAWK_API_KEY (or HAWK_API_KEY). The
application ID is taken from --app-id, STACKHAWK_APPLICATION_ID or
app.applicationId in stackhawk.yml.`,
	Args: cobra.NoArgs,
	RunE: runStackHawk,
}

func init() {
	stackhawkCmd.Flags().StringVar(&flagAppID, "app-id", "", "StackHawk application ID")
	rootCmd.AddCommand(stackhawkCmd)
}

func runStackHawk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, config.Overrides{ApplicationID: flagAppID})
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := config.RequireStackHawk(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(cmd, "StackHawk Results Fetcher and PDF Generator")
	fmt.Fprintf(out, "Application ID: %s\n", cfg.StackHawkAppID)

	store, err := results.New(cfg.OutputDir)
	if err != nil {
		return err
	}
	now := time.Now()

	result := importSARIF(store, now, logger)
	if result == nil {
		client := clients.NewStackHawkClient(cfg.StackHawkAPIKey,
			clients.WithBaseURL(cfg.StackHawkAPIURL),
			clients.WithTimeout(cfg.Timeout),
			clients.WithLogger(logger),
		)

		result, err = fetchScan(cmd.Context(), client, cfg.StackHawkAppID, logger)
		if errors.Is(err, clients.ErrScanNotFound) {
			logger.Warn("no scan found, creating empty report")
			report := reporter.NewScanReport(models.ScanResult{}, now)
			report.Error = noScanMessage
			if err := writeScanReport(store, report); err != nil {
				return err
			}
			fmt.Fprint(out, reporter.FilesGenerated(store.Path(stackhawkJSONFile)))
			return nil
		}
		if err != nil {
			return err
		}
	}

	if err := writeScanReport(store, reporter.NewScanReport(*result, now)); err != nil {
		logger.Errorw("error saving JSON report", "error", err)
		minimal := reporter.NewScanReport(models.ScanResult{Scan: result.Scan}, now)
		minimal.Error = err.Error()
		if err := writeScanReport(store, minimal); err != nil {
			return err
		}
	}

	// A scan without an ID has no findings to render
	if result.Scan != nil && result.Scan.ID != "" {
		if err := store.WriteWith(stackhawkPDFFile, func(w io.Writer) error {
			return reporter.WriteScanPDF(w, *result, now)
		}); err != nil {
			logger.Errorw("error generating PDF", "error", err)
			logger.Warn("PDF generation failed, but JSON report is available")
		}
	}

	fmt.Fprint(out, reporter.FormatScanSummary(*result))
	generated := []string{store.Path(stackhawkJSONFile)}
	if store.Exists(stackhawkPDFFile) {
		generated = append(generated, store.Path(stackhawkPDFFile))
	}
	fmt.Fprint(out, reporter.FilesGenerated(generated...))

	return nil
}

// importSARIF returns the scan recorded in the SARIF file of a local run,
// or nil when there is no usable file
func importSARIF(store *results.Store, now time.Time, logger *zap.SugaredLogger) *models.ScanResult {
	if !store.Exists(stackhawkSARIFFile) {
		return nil
	}

	logger.Infow("found SARIF file, parsing it for results", "path", store.Path(stackhawkSARIFFile))
	content, err := store.Read(stackhawkSARIFFile)
	if err != nil {
		logger.Warnw("could not read SARIF file, will try the API instead", "error", err)
		return nil
	}

	result, err := parsers.ParseScanSARIF(content, now)
	if err != nil {
		logger.Warnw("could not parse SARIF file, will try the API instead", "error", err)
		return nil
	}
	if result == nil {
		logger.Infow("SARIF file holds no results, will try the API instead")
		return nil
	}

	logger.Infow("imported findings from SARIF file", "findings", len(result.Findings))
	return result
}

// fetchScan fetches the latest scan of appID and, when it has an ID, its
// findings
func fetchScan(ctx context.Context, client *clients.StackHawkClient, appID string, logger *zap.SugaredLogger) (*models.ScanResult, error) {
	scan, err := client.FetchLatestScan(ctx, appID)
	if err != nil {
		return nil, err
	}

	result := &models.ScanResult{Scan: scan}
	if scan.ID == "" {
		logger.Error("scan ID not found, creating report with available data")
		return result, nil
	}

	result.Findings = client.FetchScanFindings(ctx, scan.ID)
	if len(result.Findings) == 0 {
		logger.Warn("no findings found for this scan")
	}
	return result, nil
}

func writeScanReport(store *results.Store, report reporter.ScanReport) error {
	if err := store.WriteWith(stackhawkJSONFile, func(w io.Writer) error {
		return reporter.WriteScanJSON(w, report)
	}); err != nil {
		return fmt.Errorf("failed to write scan report: %w", err)
	}
	return nil
}
