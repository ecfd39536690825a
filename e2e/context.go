package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	signingKey string
	issuer     string
	audience   string

	apps map[string]string // scenario name -> app route prefix
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// NewTestContext reads the target server and its token settings from the
// environment. The defaults match a server started with no configuration.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    envOr("BASE_URL", "http://localhost:8080"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		signingKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		issuer:     envOr("JWT_ISSUER", "chainid"),
		audience:   envOr("JWT_AUDIENCE", "chainid-api"),
		apps:       make(map[string]string),
	}
}

// Address returns the address of a named scenario account.
func (tc *TestContext) Address(name string) string {
	return accountAddress(name)
}

func (tc *TestContext) token(caller string) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   tc.Address(caller),
		Issuer:    tc.issuer,
		Audience:  []string{tc.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(tc.signingKey))
}

// POSTAs makes a POST request with a caller token for the named account.
func (tc *TestContext) POSTAs(caller, path string, body any) error {
	token, err := tc.token(caller)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return tc.do(req)
}

// GET makes an anonymous GET request and stores the response
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response: %s", field, tc.LastResponseBody)
	}
	return value, nil
}

func (tc *TestContext) ResponseContains(text string) bool {
	return strings.Contains(string(tc.LastResponseBody), text)
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

// SetApp records a deployed app under a scenario name, e.g.
// "/v1/identity-registry/3".
func (tc *TestContext) SetApp(name, path string) {
	tc.apps[name] = path
}

// AppPath returns the route prefix of a named app.
func (tc *TestContext) AppPath(name string) (string, error) {
	path, ok := tc.apps[name]
	if !ok {
		return "", fmt.Errorf("no app deployed as %q", name)
	}
	return path, nil
}
