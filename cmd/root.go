package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethanolivertroy/secreport/internal/config"
	"github.com/ethanolivertroy/secreport/internal/logging"
	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig    string
	flagOutputDir string
	flagTimeout   time.Duration
	flagDebug     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "secreport",
	Short: "Turn security scan output into CSV, JSON and PDF reports",
	Long: `secreport collects the output of security scanners and rewrites it as
normalized reports for CI/CD pipelines.

Subcommands:
  extract     Parse SARIF, gosec and govulncheck reports found in the tree
  dependabot  Fetch open Dependabot alerts from GitHub
  stackhawk   Fetch the latest StackHawk scan and render JSON and PDF reports

Configuration is read from flags, then .secreport.toml, then the
environment (a .env file is loaded when present).

Examples:
  # Extract every scanner report under the current directory
  secreport extract

  # Keep only high-impact Go findings, and also write SARIF
  secreport extract --filter 'severity in ["CRITICAL","HIGH"] && language == "Go"' --format sarif

  # Fetch Dependabot alerts for a repository
  GITHUB_TOKEN=... secreport dependabot --owner acme --repo widgets

  # Build the StackHawk report
  STACKHAWK_API_KEY=... secreport stackhawk --app-id 0000-1111`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Missing required configuration exits 1, any other failure exits 2.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrMissing) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: .secreport.toml under --root when present)")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "results", "Directory receiving generated reports")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "HTTP request timeout")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

// setup builds the logger and resolves the configuration for a subcommand.
// Persistent flags only override the config file when given explicitly.
func setup(cmd *cobra.Command, o config.Overrides) (*models.Config, *zap.SugaredLogger, error) {
	logger, err := logging.New(flagDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	o.ConfigFile = flagConfig
	o.Debug = flagDebug
	if cmd.Flags().Changed("output-dir") {
		o.OutputDir = flagOutputDir
	}
	if cmd.Flags().Changed("timeout") {
		o.Timeout = flagTimeout
	}

	cfg, err := config.Load(cmd.Context(), o, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func printHeader(cmd *cobra.Command, title string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, "==================================================")
}
