package cmd

import (
	"fmt"
	"io"

	"github.com/ethanolivertroy/secreport/internal/clients"
	"github.com/ethanolivertroy/secreport/internal/config"
	"github.com/ethanolivertroy/secreport/internal/reporter"
	"github.com/ethanolivertroy/secreport/internal/results"
	"github.com/spf13/cobra"
)

const (
	dependabotJSONFile = "dependabot-alerts.json"
	dependabotCSVFile  = "dependabot-alerts.csv"
)

var (
	flagOwner string
	flagRepo  string
)

var dependabotCmd = &cobra.Command{
	Use:   "dependabot",
	Short: "Fetch open Dependabot alerts into JSON and CSV",
	Long: `dependabot fetches every open Dependabot alert of a GitHub repository
and writes the raw alerts as JSON plus a flattened CSV.

The token is read from GITHUB_TOKEN (or GH_TOKEN). The repository is taken
from --owner/--repo, GITHUB_OWNER and GITHUB_REPO, GITHUB_REPOSITORY, the
origin remote, or the go.mod module path, in that order.`,
	Args: cobra.NoArgs,
	RunE: runDependabot,
}

func init() {
	dependabotCmd.Flags().StringVar(&flagOwner, "owner", "", "Repository owner")
	dependabotCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository name")
	rootCmd.AddCommand(dependabotCmd)
}

func runDependabot(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, config.Overrides{
		Owner: flagOwner,
		Repo:  flagRepo,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := config.RequireGitHub(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(cmd, "Dependabot Alerts Fetcher")
	fmt.Fprintf(out, "Repository: %s\n", cfg.Repository())

	client := clients.NewGitHubClient(cfg.GitHubToken,
		clients.WithBaseURL(cfg.GitHubAPIURL),
		clients.WithTimeout(cfg.Timeout),
		clients.WithLogger(logger),
	)
	raw := client.FetchDependabotAlerts(cmd.Context(), cfg.GitHubOwner, cfg.GitHubRepo)
	if len(raw) == 0 {
		fmt.Fprintln(out, "No Dependabot alerts found")
	}

	store, err := results.New(cfg.OutputDir)
	if err != nil {
		return err
	}

	if err := store.WriteWith(dependabotJSONFile, func(w io.Writer) error {
		return reporter.WriteAlertsJSON(w, raw)
	}); err != nil {
		return fmt.Errorf("failed to write alerts JSON: %w", err)
	}
	fmt.Fprintf(out, "Saved %d alerts to %s\n", len(raw), store.Path(dependabotJSONFile))

	alerts := clients.DecodeAlerts(raw, logger)
	if err := store.WriteWith(dependabotCSVFile, func(w io.Writer) error {
		return reporter.WriteDependabotCSV(w, alerts)
	}); err != nil {
		return fmt.Errorf("failed to write alerts CSV: %w", err)
	}

	fmt.Fprint(out, reporter.FormatDependabotSummary(alerts))
	fmt.Fprint(out, reporter.FilesGenerated(store.Path(dependabotJSONFile), store.Path(dependabotCSVFile)))

	return nil
}
