package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethanolivertroy/secreport/internal/models"
)

const stackHawkAPIURL = "https://api.stackhawk.com"

// ErrScanNotFound is returned when no endpoint yields a scan
var ErrScanNotFound = errors.New("no scan found")

// StackHawkClient handles requests to the StackHawk API
type StackHawkClient struct {
	client
}

// NewStackHawkClient creates a StackHawk client authenticated with apiKey
func NewStackHawkClient(apiKey string, opts ...Option) *StackHawkClient {
	return &StackHawkClient{
		client: newClient(stackHawkAPIURL, apiKey, map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		}, opts),
	}
}

type scanEndpoint struct {
	description string
	path        string
	query       url.Values
}

// latestScanEndpoints lists the endpoint shapes the latest scan has been
// served from, in the order they are tried
func latestScanEndpoints(appID string) []scanEndpoint {
	id := url.PathEscape(appID)
	return []scanEndpoint{
		{"application scans endpoint", "/api/v1/app/" + id + "/scans/latest", nil},
		{"scans list endpoint", "/api/v1/scans", url.Values{"applicationId": {appID}, "limit": {"1"}}},
		{"direct scans endpoint", "/api/v1/scans/" + id + "/latest", nil},
	}
}

// FetchLatestScan returns the most recent scan of an application. Each
// endpoint shape is tried in turn and the first 200 response carrying a
// scan wins; other responses and transport errors move on to the next
// shape. ErrScanNotFound is returned when every shape fails.
func (c *StackHawkClient) FetchLatestScan(ctx context.Context, appID string) (*models.Scan, error) {
	c.logger.Infow("fetching latest scan", "application_id", appID)

	endpoints := latestScanEndpoints(appID)
	for i, ep := range endpoints {
		last := i == len(endpoints)-1
		c.logger.Debugw("trying endpoint", "endpoint", ep.description)

		status, body, err := c.get(ctx, ep.path, ep.query)
		if err != nil {
			if last {
				c.logger.Errorw("error fetching scan", "endpoint", ep.description, "error", err)
			} else {
				c.logger.Debugw("request failed", "endpoint", ep.description, "error", err)
			}
			continue
		}

		switch status {
		case http.StatusOK:
			scan, err := decodeScan(body)
			if err != nil {
				c.logger.Warnw("unusable scan response", "endpoint", ep.description, "error", err)
				continue
			}
			c.logger.Infow("found scan", "scan_id", scan.ID, "endpoint", ep.description)
			return scan, nil
		case http.StatusUnauthorized:
			c.logger.Warnw("authentication failed", "endpoint", ep.description)
			if last {
				c.logger.Errorw("authentication failed, please verify that STACKHAWK_API_KEY is correct, "+
					"the API key has proper permissions and the application ID is correct",
					"response", truncateBody(body))
			}
		case http.StatusNotFound:
			c.logger.Infow("no scans found", "endpoint", ep.description)
		default:
			c.logger.Warnw("unexpected status", "endpoint", ep.description, "status", status)
		}
	}

	c.logger.Warn("could not fetch scan from any endpoint")
	return nil, ErrScanNotFound
}

// decodeScan accepts either a scan object or a list whose first element
// is the scan
func decodeScan(body []byte) (*models.Scan, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	var doc json.RawMessage = body
	switch body[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, errors.New("empty scan list")
		}
		doc = list[0]
	case '{':
	default:
		return nil, fmt.Errorf("unexpected body %q", truncateBody(body))
	}

	var scan models.Scan
	if err := json.Unmarshal(doc, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// FetchScanFindings returns every finding of a scan. A failing page ends
// the fetch: the failure is logged and the findings fetched so far are
// returned.
func (c *StackHawkClient) FetchScanFindings(ctx context.Context, scanID string) []models.ScanFinding {
	path := "/api/v1/scans/" + url.PathEscape(scanID) + "/findings"
	c.logger.Infow("fetching findings", "scan_id", scanID)

	raw, err := paginate(ctx, func(ctx context.Context, page int) ([]json.RawMessage, error) {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("perPage", strconv.Itoa(PageSize))

		status, body, err := c.get(ctx, path, query)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, &StatusError{StatusCode: status, Body: string(body)}
		}

		var doc struct {
			Findings []json.RawMessage `json:"findings"`
		}
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode findings: %w", err)
		}
		c.logger.Infow("fetched findings page", "page", page, "findings", len(doc.Findings))
		return doc.Findings, nil
	})
	if err != nil {
		c.logger.Errorw("error fetching findings", "error", err)
	}

	findings := make([]models.ScanFinding, 0, len(raw))
	for i, doc := range raw {
		var f models.ScanFinding
		if err := json.Unmarshal(doc, &f); err != nil {
			c.logger.Warnw("skipping malformed finding", "index", i, "error", err)
			continue
		}
		findings = append(findings, f)
	}
	return findings
}

func truncateBody(body []byte) string {
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}
