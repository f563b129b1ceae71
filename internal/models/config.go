package models

import "time"

// Config holds the resolved configuration for a run
type Config struct {
	// Root of the repository; report files are searched under Root and
	// Root/results, and finding paths are made relative to it
	Root string

	// Output settings
	OutputDir    string   // Directory receiving every generated file
	OutputFile   string   // Generic findings CSV, relative to OutputDir
	ExtraFormats []string // Additional generic findings outputs: "json", "sarif"
	Filter       string   // Optional CEL expression selecting findings rows
	ConfigFile   string   // Optional TOML file consulted before the environment
	Debug        bool

	// GitHub settings
	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	GitHubAPIURL string

	// StackHawk settings
	StackHawkAPIKey string
	StackHawkAppID  string
	StackHawkAPIURL string

	// API settings
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Root:            ".",
		OutputDir:       "results",
		OutputFile:      "code-scanning-files-extracted.csv",
		ConfigFile:      ".secreport.toml",
		GitHubAPIURL:    "https://api.github.com",
		StackHawkAPIURL: "https://api.stackhawk.com",
		Timeout:         30 * time.Second,
	}
}

// Repository returns "owner/repo", or "" when either part is unknown
func (c *Config) Repository() string {
	if c.GitHubOwner == "" || c.GitHubRepo == "" {
		return ""
	}
	return c.GitHubOwner + "/" + c.GitHubRepo
}
