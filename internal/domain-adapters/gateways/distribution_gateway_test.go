package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buildpantry/distprune/internal/domain/entities"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(_ context.Context) (string, error) {
	return s.token, s.err
}

func newTestGateway(serverURL string) *HTTPDistributionGateway {
	gateway := NewHTTPDistributionGateway(staticTokens{token: "test-token"})
	gateway.baseURL = serverURL
	return gateway
}

// Test creating a new distribution gateway
func TestNewHTTPDistributionGateway(t *testing.T) {
	gateway := NewHTTPDistributionGateway(staticTokens{token: "test-token"})

	if gateway == nil {
		t.Fatal("NewHTTPDistributionGateway returned nil")
	}
	if gateway.baseURL == "" {
		t.Error("gateway has no base URL")
	}
}

func TestDistributionGateway_ListApps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/my-project/apps" {
			t.Errorf("Path = %s, want /projects/my-project/apps", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %s, want Bearer test-token", got)
		}

		_ = json.NewEncoder(w).Encode(listAppsResponse{
			Apps: []apiApp{
				{Name: "projects/my-project/apps/a1", AppID: "a1", DisplayName: "App One", Platform: "android"},
				{Name: "projects/my-project/apps/a2", AppID: "a2", DisplayName: "App Two", Platform: "ios"},
			},
		})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	apps, err := gateway.ListApps(context.Background(), "my-project")
	if err != nil {
		t.Fatalf("ListApps failed: %v", err)
	}

	if len(apps) != 2 {
		t.Fatalf("apps = %d, want 2", len(apps))
	}
	if apps[0].AppID != "a1" || apps[1].AppID != "a2" {
		t.Errorf("app IDs = %s, %s, want a1, a2 (service order must be preserved)", apps[0].AppID, apps[1].AppID)
	}
}

func TestDistributionGateway_ListApps_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "permission denied"}}`))
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	_, err := gateway.ListApps(context.Background(), "my-project")
	if err == nil {
		t.Fatal("Expected error for API failure, got nil")
	}

	var listingErr *entities.ListingError
	if !errors.As(err, &listingErr) {
		t.Fatalf("error type = %T, want *entities.ListingError", err)
	}
	if listingErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", listingErr.StatusCode)
	}
}

func TestDistributionGateway_ListReleases_FirstPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/p/apps/a/releases" {
			t.Errorf("Path = %s, want /projects/p/apps/a/releases", r.URL.Path)
		}
		if got := r.URL.Query().Get("pageToken"); got != "" {
			t.Errorf("pageToken = %q, want empty on first page", got)
		}

		_ = json.NewEncoder(w).Encode(listReleasesResponse{
			Releases: []apiRelease{
				{
					Name:           "projects/p/apps/a/releases/r1",
					DisplayVersion: "1.2.3",
					BuildVersion:   "42",
					CreateTime:     "2025-05-01T10:00:00Z",
				},
			},
			NextPageToken: "token-2",
		})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	releases, nextToken, err := gateway.ListReleases(context.Background(), "projects/p/apps/a", "")
	if err != nil {
		t.Fatalf("ListReleases failed: %v", err)
	}

	if len(releases) != 1 {
		t.Fatalf("releases = %d, want 1", len(releases))
	}
	if releases[0].Name != "projects/p/apps/a/releases/r1" {
		t.Errorf("Name = %s, want projects/p/apps/a/releases/r1", releases[0].Name)
	}
	if releases[0].DisplayVersion != "1.2.3" || releases[0].BuildVersion != "42" {
		t.Errorf("version = %s (%s), want 1.2.3 (42)", releases[0].DisplayVersion, releases[0].BuildVersion)
	}
	if releases[0].CreateTime.IsZero() {
		t.Error("CreateTime was not parsed")
	}
	if nextToken != "token-2" {
		t.Errorf("nextToken = %s, want token-2", nextToken)
	}
}

func TestDistributionGateway_ListReleases_PassesPageToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pageToken"); got != "token-2" {
			t.Errorf("pageToken = %q, want token-2", got)
		}
		_ = json.NewEncoder(w).Encode(listReleasesResponse{})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	releases, nextToken, err := gateway.ListReleases(context.Background(), "projects/p/apps/a", "token-2")
	if err != nil {
		t.Fatalf("ListReleases failed: %v", err)
	}
	if len(releases) != 0 {
		t.Errorf("releases = %d, want 0", len(releases))
	}
	if nextToken != "" {
		t.Errorf("nextToken = %q, want empty on last page", nextToken)
	}
}

func TestDistributionGateway_ListReleases_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "try later"}}`))
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	_, _, err := gateway.ListReleases(context.Background(), "projects/p/apps/a", "")
	if err == nil {
		t.Fatal("Expected error for API failure, got nil")
	}

	var listingErr *entities.ListingError
	if !errors.As(err, &listingErr) {
		t.Fatalf("error type = %T, want *entities.ListingError", err)
	}
	if listingErr.AppName != "projects/p/apps/a" {
		t.Errorf("AppName = %s, want projects/p/apps/a", listingErr.AppName)
	}
	if listingErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", listingErr.StatusCode)
	}
}

func TestDistributionGateway_BatchDeleteReleases(t *testing.T) {
	var gotBody batchDeleteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/projects/p/apps/a/releases:batchDelete" {
			t.Errorf("Path = %s, want /projects/p/apps/a/releases:batchDelete", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	names := []string{"projects/p/apps/a/releases/r1", "projects/p/apps/a/releases/r2"}
	if err := gateway.BatchDeleteReleases(context.Background(), "projects/p/apps/a", names); err != nil {
		t.Fatalf("BatchDeleteReleases failed: %v", err)
	}

	if len(gotBody.Names) != 2 {
		t.Fatalf("request carried %d names, want 2", len(gotBody.Names))
	}
	if gotBody.Names[0] != names[0] || gotBody.Names[1] != names[1] {
		t.Errorf("names = %v, want %v (identifiers must pass through unmodified)", gotBody.Names, names)
	}
}

func TestDistributionGateway_BatchDeleteReleases_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom"}}`))
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	err := gateway.BatchDeleteReleases(context.Background(), "projects/p/apps/a", []string{"projects/p/apps/a/releases/r1"})
	if err == nil {
		t.Fatal("Expected error for API failure, got nil")
	}
}

func TestDistributionGateway_BatchDeleteReleases_RejectsOversizedChunk(t *testing.T) {
	gateway := NewHTTPDistributionGateway(staticTokens{token: "test-token"})

	names := make([]string, 101)
	for i := range names {
		names[i] = "projects/p/apps/a/releases/r"
	}

	if err := gateway.BatchDeleteReleases(context.Background(), "projects/p/apps/a", names); err == nil {
		t.Fatal("Expected error for oversized chunk, got nil")
	}
}

func TestDistributionGateway_BatchDeleteReleases_EmptyIsNoOp(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	if err := gateway.BatchDeleteReleases(context.Background(), "projects/p/apps/a", nil); err != nil {
		t.Fatalf("BatchDeleteReleases failed: %v", err)
	}
	if called {
		t.Error("empty delete set must not hit the endpoint")
	}
}

func TestDistributionGateway_TokenFailure(t *testing.T) {
	gateway := NewHTTPDistributionGateway(staticTokens{err: errors.New("no credentials")})

	_, err := gateway.ListApps(context.Background(), "my-project")
	if err == nil {
		t.Fatal("Expected error when token acquisition fails, got nil")
	}
}

func TestDistributionGateway_ListReleases_BadCreateTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(listReleasesResponse{
			Releases: []apiRelease{{Name: "projects/p/apps/a/releases/r1", CreateTime: "not-a-time"}},
		})
	}))
	defer server.Close()

	gateway := newTestGateway(server.URL)

	_, _, err := gateway.ListReleases(context.Background(), "projects/p/apps/a", "")
	if err == nil {
		t.Fatal("Expected error for malformed createTime, got nil")
	}
}
