//go:build integration
// +build integration

package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"whatsapp-hub/internal/observability"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	baseURL string
	logger  *observability.Logger
)

func init() {
	baseURL = getEnv("TEST_API_URL", "http://localhost:8080")
	logger = observability.NewLogger()
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// noRedirectClient does not follow redirects so tests can inspect the
// Location header of the tracking endpoint.
var noRedirectClient = &http.Client{
	Timeout: 10 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// makeRequest performs an HTTP request and returns the response and body
func makeRequest(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := noRedirectClient.Do(req)
	require.NoError(t, err, "request failed")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	resp.Body.Close()

	return resp, respBody
}

// makeAuthenticatedRequest performs an HTTP request with a Bearer token
func makeAuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) (*http.Response, []byte) {
	t.Helper()
	return makeRequest(t, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// parseJSONResponse unmarshals JSON response into the provided interface
func parseJSONResponse(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	err := json.Unmarshal(body, v)
	require.NoError(t, err, "failed to parse JSON response: %s", string(body))
}

// assertStatusCode checks if the response status code matches expected
func assertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// generateTestEmail generates a unique test email address
func generateTestEmail() string {
	return fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8])
}

// generateTestSlug generates a unique tracking link slug
func generateTestSlug() string {
	return fmt.Sprintf("test-link-%s", uuid.New().String()[:8])
}

// signupAndLogin registers a fresh user and returns a valid JWT token
func signupAndLogin(t *testing.T) string {
	t.Helper()

	email := generateTestEmail()
	password := "password123"

	resp, _ := makeRequest(t, http.MethodPost, "/api/auth/signup/email", map[string]interface{}{
		"email":    email,
		"password": password,
	}, nil)
	assertStatusCode(t, resp, http.StatusCreated)

	resp, body := makeRequest(t, http.MethodPost, "/api/auth/login/email", map[string]interface{}{
		"email":    email,
		"password": password,
	}, nil)
	assertStatusCode(t, resp, http.StatusOK)

	var loginResp map[string]string
	parseJSONResponse(t, body, &loginResp)
	require.NotEmpty(t, loginResp["token"], "expected token in login response")
	return loginResp["token"]
}

// createTestLink creates a tracking link for the authenticated user and
// returns its id and slug
func createTestLink(t *testing.T, token string) (string, string) {
	t.Helper()

	slug := generateTestSlug()
	resp, body := makeAuthenticatedRequest(t, http.MethodPost, "/api/protected/links", map[string]interface{}{
		"slug":               slug,
		"name":               "Integration test link",
		"platform":           "meta",
		"whatsapp_number":    "+52 1 55 1234 5678",
		"pre_filled_message": "Hola, quiero más información",
	}, token)
	assertStatusCode(t, resp, http.StatusCreated)

	var link map[string]interface{}
	parseJSONResponse(t, body, &link)
	id, ok := link["id"].(string)
	require.True(t, ok, "expected link id in response")
	return id, slug
}
