// Package config resolves the run configuration from flags, an optional
// TOML file and the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// ErrMissing is wrapped by every error reporting absent required configuration
var ErrMissing = errors.New("missing required configuration")

// Overrides carries values given on the command line. Zero values are unset.
type Overrides struct {
	ConfigFile    string
	Root          string
	OutputDir     string
	OutputFile    string
	Filter        string
	Formats       []string
	Owner         string
	Repo          string
	ApplicationID string
	Timeout       time.Duration
	Debug         bool
}

// fileConfig is the layout of .secreport.toml
type fileConfig struct {
	Root           string   `toml:"root"`
	OutputDir      string   `toml:"output_dir"`
	OutputFile     string   `toml:"output_file"`
	Filter         string   `toml:"filter"`
	Formats        []string `toml:"formats"`
	TimeoutSeconds int      `toml:"timeout_seconds"`

	GitHub struct {
		Owner  string `toml:"owner"`
		Repo   string `toml:"repo"`
		APIURL string `toml:"api_url"`
	} `toml:"github"`

	StackHawk struct {
		ApplicationID string `toml:"application_id"`
		APIURL        string `toml:"api_url"`
	} `toml:"stackhawk"`
}

// stackhawkYAML is the part of stackhawk.yml we read
type stackhawkYAML struct {
	App struct {
		ApplicationID string `yaml:"applicationId"`
	} `yaml:"app"`
}

// gitRemoteURL returns the origin remote of the repository at dir
var gitRemoteURL = func(ctx context.Context, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "config", "--get", "remote.origin.url")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Load resolves the configuration. Precedence is overrides, then the TOML
// file, then the environment (after loading Root/.env when present), then
// defaults. Required values are not checked here; see RequireGitHub and
// RequireStackHawk.
func Load(ctx context.Context, o Overrides, logger *zap.SugaredLogger) (*models.Config, error) {
	cfg := models.DefaultConfig()
	cfg.Debug = o.Debug
	cfg.ConfigFile = first(o.ConfigFile, filepath.Join(first(o.Root, cfg.Root), cfg.ConfigFile))

	var fc fileConfig
	if _, err := toml.DecodeFile(cfg.ConfigFile, &fc); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfg.ConfigFile, err)
		}
		if o.ConfigFile != "" {
			return nil, fmt.Errorf("config file %s not found: %w", cfg.ConfigFile, err)
		}
	} else {
		logger.Debugw("loaded config file", "path", cfg.ConfigFile)
	}

	cfg.Root = first(o.Root, fc.Root, cfg.Root)
	cfg.OutputDir = first(o.OutputDir, fc.OutputDir, cfg.OutputDir)
	cfg.OutputFile = first(o.OutputFile, fc.OutputFile, cfg.OutputFile)
	cfg.Filter = first(o.Filter, fc.Filter)
	cfg.ExtraFormats = o.Formats
	if len(cfg.ExtraFormats) == 0 {
		cfg.ExtraFormats = fc.Formats
	}
	switch {
	case o.Timeout > 0:
		cfg.Timeout = o.Timeout
	case fc.TimeoutSeconds > 0:
		cfg.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}

	if err := godotenv.Load(filepath.Join(cfg.Root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warnw("could not load .env file", "error", err)
	}

	cfg.GitHubToken = first(os.Getenv("GITHUB_TOKEN"), os.Getenv("GH_TOKEN"))
	cfg.GitHubAPIURL = strings.TrimRight(first(fc.GitHub.APIURL, os.Getenv("GITHUB_API_URL"), cfg.GitHubAPIURL), "/")
	cfg.GitHubOwner, cfg.GitHubRepo = resolveRepository(ctx, cfg.Root, first(o.Owner, fc.GitHub.Owner), first(o.Repo, fc.GitHub.Repo), logger)

	cfg.StackHawkAPIKey = first(os.Getenv("STACKHAWK_API_KEY"), os.Getenv("HAWK_API_KEY"))
	if cfg.StackHawkAPIKey != "" && len(cfg.StackHawkAPIKey) < 10 {
		logger.Warn("StackHawk API key seems too short, please verify it is correct")
	}
	cfg.StackHawkAPIURL = strings.TrimRight(first(fc.StackHawk.APIURL, os.Getenv("STACKHAWK_API_URL"), cfg.StackHawkAPIURL), "/")
	cfg.StackHawkAppID = first(o.ApplicationID, fc.StackHawk.ApplicationID, os.Getenv("STACKHAWK_APPLICATION_ID"))
	if cfg.StackHawkAppID == "" {
		cfg.StackHawkAppID = applicationIDFromFile(filepath.Join(cfg.Root, "stackhawk.yml"), logger)
	}

	return cfg, nil
}

// resolveRepository applies the repository identity fallback order:
// explicit values, GITHUB_OWNER/GITHUB_REPO, GITHUB_REPOSITORY, the origin
// remote, the go.mod module path.
func resolveRepository(ctx context.Context, root, owner, repo string, logger *zap.SugaredLogger) (string, string) {
	if owner != "" && repo != "" {
		return owner, repo
	}

	if o, r := os.Getenv("GITHUB_OWNER"), os.Getenv("GITHUB_REPO"); o != "" && r != "" {
		return o, r
	}

	if full := os.Getenv("GITHUB_REPOSITORY"); full != "" {
		if o, r, ok := strings.Cut(full, "/"); ok && o != "" && r != "" {
			return o, r
		}
		logger.Warnw("ignoring malformed GITHUB_REPOSITORY", "value", full)
	}

	if url, err := gitRemoteURL(ctx, root); err == nil {
		if o, r, ok := ParseGitHubRemote(url); ok {
			return o, r
		}
	} else {
		logger.Debugw("no git remote available", "error", err)
	}

	if data, err := os.ReadFile(filepath.Join(root, "go.mod")); err == nil {
		if o, r, ok := repositoryFromModulePath(modfile.ModulePath(data)); ok {
			return o, r
		}
	}

	return owner, repo
}

// ParseGitHubRemote extracts owner and repository from an https or ssh
// GitHub remote URL
func ParseGitHubRemote(url string) (owner, repo string, ok bool) {
	url = strings.TrimSpace(url)
	idx := strings.Index(url, "github.com")
	if idx < 0 {
		return "", "", false
	}

	path := strings.TrimLeft(url[idx+len("github.com"):], ":/")
	path = strings.TrimSuffix(strings.TrimRight(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", false
	}
	return parts[len(parts)-2], parts[len(parts)-1], true
}

func repositoryFromModulePath(path string) (string, string, bool) {
	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[0] != "github.com" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func applicationIDFromFile(path string, logger *zap.SugaredLogger) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var doc stackhawkYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		logger.Warnw("could not parse stackhawk.yml", "path", path, "error", err)
		return ""
	}
	return strings.TrimSpace(doc.App.ApplicationID)
}

// RequireGitHub checks the values the Dependabot fetch cannot run without
func RequireGitHub(cfg *models.Config) error {
	if cfg.GitHubToken == "" {
		return fmt.Errorf("%w: GITHUB_TOKEN environment variable not set\n"+
			"   Set it with: export GITHUB_TOKEN=your_token", ErrMissing)
	}
	if cfg.Repository() == "" {
		return fmt.Errorf("%w: could not determine repository owner and name\n"+
			"   Set GITHUB_OWNER and GITHUB_REPO environment variables", ErrMissing)
	}
	return nil
}

// RequireStackHawk checks the values the StackHawk report cannot run without
func RequireStackHawk(cfg *models.Config) error {
	if cfg.StackHawkAPIKey == "" {
		return fmt.Errorf("%w: STACKHAWK_API_KEY environment variable not set\n\n"+
			"How to get your StackHawk API key:\n"+
			"  1. Log in to StackHawk platform: https://app.stackhawk.com\n"+
			"  2. Go to Settings -> API Keys\n"+
			"  3. Create a new API key or copy an existing one\n"+
			"  4. Set it as a CI secret: STACKHAWK_API_KEY", ErrMissing)
	}
	if cfg.StackHawkAppID == "" {
		return fmt.Errorf("%w: could not determine StackHawk application ID\n"+
			"   Set STACKHAWK_APPLICATION_ID or ensure stackhawk.yml exists", ErrMissing)
	}
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
