package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethanolivertroy/secreport/internal/models"
	"go.uber.org/zap"
)

const gitHubAPIURL = "https://api.github.com"

// GitHubClient handles requests to the GitHub REST API
type GitHubClient struct {
	client
}

// NewGitHubClient creates a GitHub client authenticated with token
func NewGitHubClient(token string, opts ...Option) *GitHubClient {
	return &GitHubClient{
		client: newClient(gitHubAPIURL, token, map[string]string{
			"Accept":               "application/vnd.github+json",
			"X-GitHub-Api-Version": "2022-11-28",
		}, opts),
	}
}

// FetchDependabotAlerts returns the open Dependabot alerts of owner/repo as
// raw JSON documents. A failing page ends the fetch: the failure is logged
// and the alerts fetched so far are returned.
func (c *GitHubClient) FetchDependabotAlerts(ctx context.Context, owner, repo string) []json.RawMessage {
	path := fmt.Sprintf("/repos/%s/%s/dependabot/alerts", url.PathEscape(owner), url.PathEscape(repo))
	c.logger.Infow("fetching Dependabot alerts", "repository", owner+"/"+repo)

	alerts, err := paginate(ctx, func(ctx context.Context, page int) ([]json.RawMessage, error) {
		query := url.Values{}
		query.Set("state", "open")
		query.Set("per_page", strconv.Itoa(PageSize))
		query.Set("page", strconv.Itoa(page))

		status, body, err := c.get(ctx, path, query)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, &StatusError{StatusCode: status, Body: string(body)}
		}

		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("failed to decode alerts: %w", err)
		}
		c.logger.Infow("fetched alerts page", "page", page, "alerts", len(items))
		return items, nil
	})
	if err != nil {
		c.logger.Errorw("error fetching alerts", "error", err)

		var se *StatusError
		if errors.As(err, &se) {
			switch se.StatusCode {
			case http.StatusNotFound:
				c.logger.Error("repository not found or Dependabot not enabled")
			case http.StatusForbidden:
				c.logger.Error("permission denied, check your token permissions")
			case http.StatusUnauthorized:
				c.logger.Error("authentication failed, check your token")
			}
		}
	}

	return alerts
}

// DecodeAlerts decodes raw alerts. Alerts that do not match the expected
// shape are logged and skipped.
func DecodeAlerts(raw []json.RawMessage, logger *zap.SugaredLogger) []models.DependabotAlert {
	alerts := make([]models.DependabotAlert, 0, len(raw))
	for i, doc := range raw {
		var alert models.DependabotAlert
		if err := json.Unmarshal(doc, &alert); err != nil {
			logger.Warnw("skipping malformed alert", "index", i, "error", err)
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts
}
