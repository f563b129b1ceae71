package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ethanolivertroy/secreport/internal/config"
	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/ethanolivertroy/secreport/internal/reporter"
	"github.com/ethanolivertroy/secreport/internal/results"
	"github.com/ethanolivertroy/secreport/internal/scanner"
	"github.com/spf13/cobra"
)

var (
	flagRoot    string
	flagOutput  string
	flagFormats []string
	flagFilter  string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract SARIF, gosec and govulncheck findings into one CSV",
	Long: `extract searches the repository root and its results directory for
*.sarif, *gosec*.json and *govulncheck*.json files, normalizes every
finding and writes them to a single CSV file. The CSV is written even
when no findings are found.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&flagRoot, "root", "", "Repository root to search (default: current directory)")
	extractCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "CSV file name inside the output directory (default: code-scanning-files-extracted.csv)")
	extractCmd.Flags().StringSliceVarP(&flagFormats, "format", "f", nil, "Additional outputs next to the CSV: json, sarif")
	extractCmd.Flags().StringVar(&flagFilter, "filter", "", `CEL expression selecting findings, e.g. 'severity == "HIGH"'`)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, config.Overrides{
		Root:       flagRoot,
		OutputFile: flagOutput,
		Formats:    flagFormats,
		Filter:     flagFilter,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Resolve extra formats before doing any work
	extras := make(map[string]reporter.Reporter, len(cfg.ExtraFormats))
	for _, format := range cfg.ExtraFormats {
		rep, err := reporter.Get(format)
		if err != nil {
			return err
		}
		extras[format] = rep
	}

	s, err := scanner.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scanner: %w", err)
	}

	out := cmd.OutOrStdout()
	printHeader(cmd, "Code Scanning Results CSV Extractor")

	result, err := s.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	fmt.Fprintf(out, "\nFound %d SARIF file(s)\n", len(result.Reports[models.SourceSARIF]))
	fmt.Fprintf(out, "Found %d gosec JSON file(s)\n", len(result.Reports[models.SourceGosec]))
	fmt.Fprintf(out, "Found %d govulncheck JSON file(s)\n", len(result.Reports[models.SourceGovulncheck]))

	store, err := results.New(cfg.OutputDir)
	if err != nil {
		return err
	}

	if err := store.WriteWith(cfg.OutputFile, func(w io.Writer) error {
		return reporter.WriteFindingsCSV(w, result.Rows)
	}); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	generated := []string{store.Path(cfg.OutputFile)}

	base := strings.TrimSuffix(cfg.OutputFile, filepath.Ext(cfg.OutputFile))
	for _, format := range cfg.ExtraFormats {
		name := base + "." + format
		if name == cfg.OutputFile {
			continue
		}

		data, err := extras[format].Report(result.Rows)
		if err != nil {
			return fmt.Errorf("failed to generate %s report: %w", format, err)
		}
		if err := store.Write(name, data); err != nil {
			return fmt.Errorf("failed to write %s report: %w", format, err)
		}
		generated = append(generated, store.Path(name))
	}

	summary, err := (&reporter.TerminalReporter{}).Report(result.Rows)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(summary))
	fmt.Fprint(out, reporter.FilesGenerated(generated...))

	return nil
}
