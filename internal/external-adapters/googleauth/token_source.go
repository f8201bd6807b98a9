// Package googleauth resolves service-account credentials into bearer tokens.
package googleauth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/buildpantry/distprune/internal/domain/entities"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	tokenScope      = "https://www.googleapis.com/auth/cloud-platform"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// Lifetime requested for the signed assertion
	assertionLifetime = time.Hour
	// Cached tokens are refreshed this long before they expire
	expiryMargin = time.Minute

	ambientCredentialsEnv = "GOOGLE_APPLICATION_CREDENTIALS"
)

// serviceAccountKey is the relevant subset of a service-account key file
type serviceAccountKey struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
	TokenURI    string `json:"token_uri"`
}

// CredentialSource is one variant of the closed set of credential origins:
// an inline key JSON, a key file path, or ambient default credentials.
type CredentialSource struct {
	keyJSON string
	keyPath string
	ambient bool
}

// FromKeyJSON uses an inline service-account key JSON document.
func FromKeyJSON(keyJSON string) CredentialSource {
	return CredentialSource{keyJSON: keyJSON}
}

// FromKeyFile uses a service-account key file on disk.
func FromKeyFile(path string) CredentialSource {
	return CredentialSource{keyPath: path}
}

// Ambient uses environment-provided default credentials: the file named
// by GOOGLE_APPLICATION_CREDENTIALS, falling back to the gcloud
// application-default credentials file.
func Ambient() CredentialSource {
	return CredentialSource{ambient: true}
}

func (s CredentialSource) load() ([]byte, error) {
	switch {
	case s.keyJSON != "":
		return []byte(s.keyJSON), nil
	case s.keyPath != "":
		//nolint:gosec // G304: User explicitly provides the key file path
		data, err := os.ReadFile(s.keyPath)
		if err != nil {
			return nil, entities.NewConfigError(fmt.Sprintf("cannot read service account key file %s: %v", s.keyPath, err))
		}
		return data, nil
	case s.ambient:
		if path := os.Getenv(ambientCredentialsEnv); path != "" {
			//nolint:gosec // G304: Path comes from the standard credentials env var
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, entities.NewConfigError(fmt.Sprintf("cannot read %s file %s: %v", ambientCredentialsEnv, path, err))
			}
			return data, nil
		}
		if home, err := os.UserHomeDir(); err == nil {
			wellKnown := filepath.Join(home, ".config", "gcloud", "application_default_credentials.json")
			if data, err := os.ReadFile(wellKnown); err == nil {
				return data, nil
			}
		}
		return nil, entities.NewConfigError("no ambient credentials found: set " + ambientCredentialsEnv + " or provide a service account key")
	default:
		return nil, entities.NewConfigError("no credential source configured")
	}
}

// TokenSource exchanges a signed service-account assertion for a bearer
// token and caches it until shortly before expiry. It is the only state
// shared across app iterations, and it is safe for reuse.
type TokenSource struct {
	key        serviceAccountKey
	privateKey *rsa.PrivateKey
	client     *http.Client
	tokenURL   string
	now        func() time.Time

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// NewTokenSource resolves a credential source into a reusable token
// source. Resolution happens once at startup; a malformed or unreadable
// key is a configuration error reported before any remote call.
func NewTokenSource(source CredentialSource) (*TokenSource, error) {
	data, err := source.load()
	if err != nil {
		return nil, err
	}

	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, entities.NewConfigError(fmt.Sprintf("malformed service account key JSON: %v", err))
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, entities.NewConfigError("service account key is missing client_email or private_key")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, entities.NewConfigError(fmt.Sprintf("cannot parse service account private key: %v", err))
	}

	tokenURL := key.TokenURI
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	return &TokenSource{
		key:        key,
		privateKey: privateKey,
		client:     &http.Client{Timeout: 30 * time.Second},
		tokenURL:   tokenURL,
		now:        time.Now,
	}, nil
}

// Token returns a valid bearer token, reusing the cached one until it is
// within the expiry margin.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.cached != "" && ts.now().Before(ts.expiresAt.Add(-expiryMargin)) {
		return ts.cached, nil
	}

	assertion, err := ts.signAssertion()
	if err != nil {
		return "", err
	}

	token, expiresIn, err := ts.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	ts.cached = token
	ts.expiresAt = ts.now().Add(time.Duration(expiresIn) * time.Second)
	return ts.cached, nil
}

func (ts *TokenSource) signAssertion() (string, error) {
	now := ts.now()
	claims := jwt.MapClaims{
		"iss":   ts.key.ClientEmail,
		"scope": tokenScope,
		"aud":   ts.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token assertion: %w", err)
	}
	return signed, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (ts *TokenSource) exchange(ctx context.Context, assertion string) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, "POST", ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token exchange failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("token exchange failed: status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", 0, fmt.Errorf("token response contained no access token")
	}

	return result.AccessToken, result.ExpiresIn, nil
}
