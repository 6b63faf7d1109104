package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"hrms/internal/app/server"
	"hrms/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:          dbURL,
		JWTSecret:            "test-secret",
		TokenTTL:             time.Hour,
		Environment:          "test",
		SeedOrganizationName: "Test Organization",
		SeedAdminName:        "Test Admin",
		SeedAdminEmail:       "admin@test.local",
		SeedAdminPassword:    "ChangeMe123!",
		RunMigrations:        true,
		RunSeed:              true,
		MigrationsDir:        "../../../../migrations",
		MaxBodyBytes:         1048576,
		RateLimitPerMinute:   1000,
	}
}

func TestRosterPeriodJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	suffix := time.Now().UnixNano()
	employeeA := createEmployee(t, client, ts.URL, token, fmt.Sprintf("Alice %d", suffix))
	employeeB := createEmployee(t, client, ts.URL, token, fmt.Sprintf("Bob %d", suffix))
	shiftID := createShift(t, client, ts.URL, token)

	period := postJSON(t, client, ts.URL+"/api/v1/roster/periods", token, map[string]any{
		"type":      "weekly",
		"startDate": "2026-01-05",
	})
	var created map[string]any
	if err := json.Unmarshal(period.Data, &created); err != nil {
		t.Fatalf("failed to decode period response: %v", err)
	}
	periodID := int64(created["id"].(float64))
	if periodID == 0 {
		t.Fatal("expected period id")
	}
	if got, _ := created["status"].(string); got != "draft" {
		t.Fatalf("expected new period to be draft, got %q", got)
	}
	if got, _ := created["endDate"].(string); !strings.HasPrefix(got, "2026-01-11") {
		t.Fatalf("expected weekly end date 2026-01-11, got %q", got)
	}
	if got, _ := created["durationLabel"].(string); got != "7 days" {
		t.Fatalf("expected duration label, got %q", got)
	}

	periodURL := fmt.Sprintf("%s/api/v1/roster/periods/%d", ts.URL, periodID)

	preview := postJSON(t, client, periodURL+"/bulk-assign", token, map[string]any{
		"employeeIds": []int64{employeeA, employeeB},
		"shiftId":     shiftID,
		"dryRun":      true,
	})
	var plan map[string]any
	if err := json.Unmarshal(preview.Data, &plan); err != nil {
		t.Fatalf("failed to decode plan response: %v", err)
	}
	if got := int(plan["estimatedRosterCount"].(float64)); got != 14 {
		t.Fatalf("expected estimate 14 for 2 employees over a week, got %d", got)
	}

	idemKey := fmt.Sprintf("bulk-%d", suffix)
	result := postJSONWithKey(t, client, periodURL+"/bulk-assign", token, idemKey, map[string]any{
		"employeeIds": []int64{employeeA, employeeB},
		"shiftId":     shiftID,
	})
	var outcome map[string]any
	if err := json.Unmarshal(result.Data, &outcome); err != nil {
		t.Fatalf("failed to decode bulk assign response: %v", err)
	}
	if got := int(outcome["created"].(float64)); got != 14 {
		t.Fatalf("expected 14 rosters created, got %d", got)
	}
	if got := int(outcome["rostersCount"].(float64)); got != 14 {
		t.Fatalf("expected rosters count 14, got %d", got)
	}

	// Same key and payload replays the stored response instead of writing again.
	replay := postJSONWithKey(t, client, periodURL+"/bulk-assign", token, idemKey, map[string]any{
		"employeeIds": []int64{employeeA, employeeB},
		"shiftId":     shiftID,
	})
	var replayed map[string]any
	if err := json.Unmarshal(replay.Data, &replayed); err != nil {
		t.Fatalf("failed to decode replayed response: %v", err)
	}
	if got := int(replayed["rostersCount"].(float64)); got != 14 {
		t.Fatalf("expected replayed rosters count 14, got %d", got)
	}

	published := postJSON(t, client, periodURL+"/publish", token, nil)
	if status := periodStatus(t, published); status != "published" {
		t.Fatalf("expected published, got %q", status)
	}

	locked := postJSON(t, client, periodURL+"/lock", token, nil)
	if status := periodStatus(t, locked); status != "locked" {
		t.Fatalf("expected locked, got %q", status)
	}

	postJSONStatus(t, client, periodURL+"/lock", token, nil, http.StatusConflict)
	deleteStatus(t, client, periodURL, token, http.StatusConflict)

	req, err := http.NewRequest(http.MethodGet, periodURL+"/export.pdf", nil)
	if err != nil {
		t.Fatalf("failed to create export request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected export to succeed, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q", ct)
	}
}

func TestMonthlyPeriodEndDateClamps(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	preview := getJSON(t, client, ts.URL+"/api/v1/roster/periods/preview?type=monthly&startDate=2025-01-15", token)
	var payload map[string]any
	if err := json.Unmarshal(preview.Data, &payload); err != nil {
		t.Fatalf("failed to decode preview response: %v", err)
	}
	if got, _ := payload["endDate"].(string); !strings.HasPrefix(got, "2025-02-14") {
		t.Fatalf("expected monthly end date 2025-02-14, got %q", got)
	}
}

func TestBulkAssignValidationCollectsAllIssues(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	period := postJSON(t, client, ts.URL+"/api/v1/roster/periods", token, map[string]any{
		"type":      "weekly",
		"startDate": "2026-03-02",
	})
	var created map[string]any
	if err := json.Unmarshal(period.Data, &created); err != nil {
		t.Fatalf("failed to decode period response: %v", err)
	}
	periodID := int64(created["id"].(float64))

	url := fmt.Sprintf("%s/api/v1/roster/periods/%d/bulk-assign", ts.URL, periodID)
	raw := postJSONStatus(t, client, url, token, map[string]any{
		"employeeIds": []int64{},
		"shiftId":     0,
	}, http.StatusBadRequest)

	var body struct {
		Error struct {
			Details struct {
				Fields []map[string]string `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode validation response: %v", err)
	}
	if len(body.Error.Details.Fields) != 2 {
		t.Fatalf("expected both employeeIds and shiftId issues, got %+v", body.Error.Details.Fields)
	}
}

func periodStatus(t *testing.T, env envelope) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode period response: %v", err)
	}
	status, _ := payload["status"].(string)
	return status
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token, name string) int64 {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/directory/employees", token, map[string]any{
		"name":   name,
		"code":   fmt.Sprintf("EMP-%d", time.Now().UnixNano()),
		"status": "Active",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode employee response: %v", err)
	}
	id := int64(payload["id"].(float64))
	if id == 0 {
		t.Fatal("expected employee id")
	}
	return id
}

func createShift(t *testing.T, client *http.Client, baseURL, token string) int64 {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/directory/shifts", token, map[string]any{
		"name":      "Morning",
		"startTime": "09:00",
		"endTime":   "17:00",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode shift response: %v", err)
	}
	id := int64(payload["id"].(float64))
	if id == 0 {
		t.Fatal("expected shift id")
	}
	return id
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return postJSONWithKey(t, client, url, token, "", body)
}

func postJSONWithKey(t *testing.T, client *http.Client, url, token, idempotencyKey string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) []byte {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	return raw
}

func deleteStatus(t *testing.T, client *http.Client, url, token string, want int) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
