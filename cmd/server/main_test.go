package main

import (
	"context"
	"net/http"
	"testing"

	"bizplan/internal/config"
	"bizplan/internal/models"
	"bizplan/internal/testutil"
)

// setupTestServer wires the application against a temporary data directory
func setupTestServer(t *testing.T) *testutil.TestServer {
	t.Helper()
	testutil.TestEnv(t)

	c, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if err := SetupDependencies(c); err != nil {
		t.Fatalf("Failed to setup dependencies: %v", err)
	}
	t.Cleanup(func() { manager.Close(context.Background()) })

	return testutil.NewTestServer(t, SetupRouter())
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	testutil.AssertResponse(t, ts.GET("/api/health")).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`)
}

func TestRootRedirect(t *testing.T) {
	ts := setupTestServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(ts.BaseURL + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("Expected status 307, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/report" {
		t.Errorf("Expected redirect to /report, got %s", loc)
	}
}

func TestEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"plan", "/api/plan", `"base_scenario"`},
		{"save status", "/api/plan/status", `"backend":"file"`},
		{"scenarios", "/api/scenarios", `"conservative"`},
		{"scenario", "/api/scenarios/optimistic", `"growth_percentage"`},
		{"tracking", "/api/tracking", "["},
		{"statements", "/api/statements/conservative", `"scenario":"conservative"`},
		{"sensitivity", "/api/sensitivity/conservative", `"cells"`},
		{"safety", "/api/sensitivity/conservative/safety", `"breakeven_revenue"`},
		{"pricing items", "/api/pricing/items", "["},
		{"narrative status", "/api/narrative/status", `"enabled":false`},
		{"dashboard", "/api/dashboard", `"base_scenario"`},
		{"storage", "/api/storage/status", `"encrypted":false`},
		{"access", "/api/access", `"state":"active"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertResponse(t, ts.GET(tt.path)).StatusOK().Contains(tt.want)
		})
	}
}

func TestReportPage(t *testing.T) {
	ts := setupTestServer(t)

	testutil.AssertResponse(t, ts.GET("/report")).
		StatusOK().
		ContentTypeHTML().
		HasElement("report-header").
		HasElement("summary")
}

func TestEditFlow(t *testing.T) {
	ts := setupTestServer(t)

	for _, month := range models.Months {
		testutil.AssertResponse(t, ts.PUT("/api/plan/baseline/gross_revenue/"+string(month), map[string]float64{"value": 100000})).
			StatusOK()
	}
	testutil.AssertResponse(t, ts.PUT("/api/tracking/mar", map[string]any{
		"values": map[string]float64{"revenue": 90000},
	})).StatusOK()

	testutil.AssertResponse(t, ts.GET("/api/tracking/mar/report")).
		StatusOK().
		Contains(`"status":"bad"`)
	testutil.AssertResponse(t, ts.PUT("/api/plan/baseline/gross_revenue/xyz", map[string]float64{"value": 1})).
		Status(http.StatusNotFound)
}

func TestAccessChangesDisabledWithoutToken(t *testing.T) {
	testutil.TestEnv(t)
	t.Setenv("PLANNER_ACCESS_TOKEN", "")
	c, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := SetupDependencies(c); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { manager.Close(context.Background()) })
	ts := testutil.NewTestServer(t, SetupRouter())

	testutil.AssertResponse(t, ts.WithToken("anything").PUT("/api/access", map[string]string{"state": "expired"})).
		Status(http.StatusForbidden)
	testutil.AssertResponse(t, ts.GET("/api/scenarios")).StatusOK()
}

func TestSubscriptionGate(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.WithToken(testutil.AccessToken)

	testutil.AssertResponse(t, owner.PUT("/api/access", map[string]string{"state": "expired"})).
		StatusOK().
		Contains(`"allowed":false`)
	testutil.AssertResponse(t, ts.GET("/api/scenarios")).
		Status(http.StatusPaymentRequired)
	testutil.AssertResponse(t, ts.GET("/api/health")).StatusOK()

	testutil.AssertResponse(t, owner.PUT("/api/access", map[string]string{"state": "loading"})).StatusOK()
	testutil.AssertResponse(t, ts.GET("/api/scenarios")).
		Status(http.StatusServiceUnavailable)

	testutil.AssertResponse(t, owner.PUT("/api/access", map[string]string{"state": "bogus"})).
		Status(http.StatusBadRequest)
	testutil.AssertResponse(t, owner.PUT("/api/access", map[string]string{"state": "active"})).StatusOK()
	testutil.AssertResponse(t, ts.GET("/api/scenarios")).StatusOK()

	testutil.AssertResponse(t, ts.PUT("/api/access", map[string]string{"state": "expired"})).
		Status(http.StatusUnauthorized)
	testutil.AssertResponse(t, ts.WithToken("guess").PUT("/api/access", map[string]string{"state": "expired"})).
		Status(http.StatusUnauthorized)
	testutil.AssertResponse(t, ts.GET("/api/access")).Contains(`"allowed":true`)
}
