//go:build integration
// +build integration

package tests

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"whatsapp-hub/internal/shortid"
)

func TestAPI_Tracking_Redirect(t *testing.T) {
	token := signupAndLogin(t)
	_, slug := createTestLink(t, token)

	resp, _ := makeRequest(t, http.MethodGet, "/t/"+slug+"?fbclid=abc123&utm_source=facebook&utm_medium=paid", nil, nil)
	assertStatusCode(t, resp, http.StatusFound)

	location := resp.Header.Get("Location")
	if location == "" {
		t.Fatal("expected Location header on redirect")
	}

	parsed, err := url.Parse(location)
	if err != nil {
		t.Fatalf("failed to parse redirect URL: %s", err)
	}
	if parsed.Host != "wa.me" {
		t.Errorf("expected wa.me redirect, got %s", parsed.Host)
	}
	if !strings.HasPrefix(parsed.Path, "/5215512345678") {
		t.Errorf("expected digits-only number in path, got %s", parsed.Path)
	}

	// The pre-filled text carries an invisible short id
	text := parsed.Query().Get("text")
	if text == "" {
		t.Fatal("expected text query parameter")
	}
	decoded, ok := shortid.Decode(text)
	if !ok {
		t.Fatal("expected embedded short id in redirect text")
	}
	if len(decoded) != shortid.DefaultLength {
		t.Errorf("expected short id of length %d, got %q", shortid.DefaultLength, decoded)
	}
	if shortid.Strip(text) != "Hola, quiero más información" {
		t.Errorf("unexpected visible text: %q", shortid.Strip(text))
	}
}

func TestAPI_Tracking_RedirectRecordsClick(t *testing.T) {
	token := signupAndLogin(t)
	linkID, slug := createTestLink(t, token)

	resp, _ := makeRequest(t, http.MethodGet, "/t/"+slug, nil, nil)
	assertStatusCode(t, resp, http.StatusFound)

	resp, body := makeAuthenticatedRequest(t, http.MethodGet, "/api/protected/links/metrics", nil, token)
	assertStatusCode(t, resp, http.StatusOK)

	var metricsResp map[string][]map[string]interface{}
	parseJSONResponse(t, body, &metricsResp)
	for _, row := range metricsResp["links"] {
		if row["tracking_link_id"] == linkID {
			if row["click_count"].(float64) < 1 {
				t.Errorf("expected at least one click, got %v", row["click_count"])
			}
			return
		}
	}
	t.Error("expected metrics row for clicked link")
}

func TestAPI_Tracking_UnknownSlug(t *testing.T) {
	resp, _ := makeRequest(t, http.MethodGet, "/t/"+generateTestSlug(), nil, nil)
	assertStatusCode(t, resp, http.StatusNotFound)
}
