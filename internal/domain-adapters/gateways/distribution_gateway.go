// Package gateways implements external service adapters over HTTP.
package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/buildpantry/distprune/internal/domain/entities"
	domainGateways "github.com/buildpantry/distprune/internal/domain/interfaces/gateways"
)

const defaultBaseURL = "https://firebaseappdistribution.googleapis.com/v1"

// TokenProvider supplies a bearer credential authorizing API calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// HTTPDistributionGateway implements DistributionGateway using the
// standard HTTP client. Requests are issued one at a time; the gateway
// never retries (a failed listing call is fatal for the app's run, a
// failed delete chunk is recorded by the caller).
type HTTPDistributionGateway struct {
	client    *http.Client
	tokens    TokenProvider
	baseURL   string
	userAgent string
}

// NewHTTPDistributionGateway creates a new distribution gateway
func NewHTTPDistributionGateway(tokens TokenProvider) *HTTPDistributionGateway {
	return &HTTPDistributionGateway{
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
		tokens:    tokens,
		baseURL:   defaultBaseURL,
		userAgent: "distprune/1.0",
	}
}

// apiRelease represents the API release format
type apiRelease struct {
	Name           string `json:"name"`
	DisplayVersion string `json:"displayVersion"`
	BuildVersion   string `json:"buildVersion"`
	CreateTime     string `json:"createTime"`
}

// apiApp represents the API app format
type apiApp struct {
	Name        string `json:"name"`
	AppID       string `json:"appId"`
	DisplayName string `json:"displayName"`
	Platform    string `json:"platform"`
}

type listAppsResponse struct {
	Apps []apiApp `json:"apps"`
}

type listReleasesResponse struct {
	Releases      []apiRelease `json:"releases"`
	NextPageToken string       `json:"nextPageToken"`
}

type batchDeleteRequest struct {
	Names []string `json:"names"`
}

func (g *HTTPDistributionGateway) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := g.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// ListApps lists all apps of a project
func (g *HTTPDistributionGateway) ListApps(ctx context.Context, projectID string) ([]entities.App, error) {
	url := fmt.Sprintf("%s/projects/%s/apps", g.baseURL, projectID)

	req, err := g.newRequest(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &entities.ListingError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var result listAppsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode apps response: %w", err)
	}

	apps := make([]entities.App, len(result.Apps))
	for i, a := range result.Apps {
		apps[i] = entities.App{
			Name:        a.Name,
			AppID:       a.AppID,
			DisplayName: a.DisplayName,
			Platform:    a.Platform,
		}
	}

	return apps, nil
}

// ListReleases fetches one page of an app's releases
func (g *HTTPDistributionGateway) ListReleases(ctx context.Context, appName, pageToken string) ([]entities.Release, string, error) {
	reqURL := fmt.Sprintf("%s/%s/releases?pageSize=100", g.baseURL, appName)
	if pageToken != "" {
		reqURL += "&pageToken=" + url.QueryEscape(pageToken)
	}

	req, err := g.newRequest(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list releases: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, "", &entities.ListingError{
			AppName:    appName,
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}

	var result listReleasesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode releases response: %w", err)
	}

	releases := make([]entities.Release, 0, len(result.Releases))
	for _, r := range result.Releases {
		createTime, err := time.Parse(time.RFC3339, r.CreateTime)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse createTime %q for %s: %w", r.CreateTime, r.Name, err)
		}
		releases = append(releases, entities.Release{
			Name:           r.Name,
			DisplayVersion: r.DisplayVersion,
			BuildVersion:   r.BuildVersion,
			CreateTime:     createTime,
		})
	}

	return releases, result.NextPageToken, nil
}

// BatchDeleteReleases deletes up to 100 releases in one request
func (g *HTTPDistributionGateway) BatchDeleteReleases(ctx context.Context, appName string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) > domainGateways.MaxBatchDeleteNames {
		return fmt.Errorf("batch delete limited to %d names, got %d", domainGateways.MaxBatchDeleteNames, len(names))
	}

	body, err := json.Marshal(batchDeleteRequest{Names: names})
	if err != nil {
		return fmt.Errorf("failed to marshal batch delete request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/releases:batchDelete", g.baseURL, appName)

	req, err := g.newRequest(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete releases: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to delete releases: status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}
