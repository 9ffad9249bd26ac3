package dashboard

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"bizplan/internal/log"
	"bizplan/internal/models"
	"bizplan/internal/services/plan"
	"bizplan/internal/templates"
	"bizplan/internal/testutil"
)

func setup(t *testing.T) *testutil.TestServer {
	t.Helper()
	m, _ := testutil.NewManager(t)
	testutil.SeedPlan(t, m)
	_, err := m.Apply(context.Background(), func(doc *models.PlanDocument) (models.Change, error) {
		if _, err := plan.SetProfile(doc, models.CompanyProfile{Name: "Padaria Central", City: "Curitiba"}); err != nil {
			return models.Change{}, err
		}
		if _, err := plan.SetGoals(doc, models.Goals2026{AnnualRevenue: 1.5e6}); err != nil {
			return models.Change{}, err
		}
		return plan.SetGrowth(doc, models.Optimistic, 25)
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := templates.New(log.Discard())
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	Initialize(m, r)
	router := chi.NewRouter()
	RegisterRoutes(router)
	return testutil.NewTestServer(t, router)
}

func TestSummary(t *testing.T) {
	ts := setup(t)

	var s Summary
	testutil.AssertResponse(t, ts.GET("/api/dashboard")).StatusOK().ContentTypeJSON().JSON(&s)
	if len(s.Scenarios) != 3 || s.BaseScenario != models.Conservative {
		t.Fatalf("summary = %+v", s)
	}
	opt := s.Scenarios[0]
	if opt.Name != models.Optimistic || math.Abs(opt.GoalProgress-100) > 1e-9 {
		t.Errorf("optimistic = %+v, want 100%% of goal", opt)
	}
	cons := s.Scenarios[1]
	if math.Abs(cons.EBITDA-360000) > 1e-6 || math.Abs(cons.NetProfit-273600) > 1e-6 {
		t.Errorf("conservative = %+v", cons)
	}
}

func TestReport(t *testing.T) {
	ts := setup(t)

	testutil.AssertResponse(t, ts.GET("/report")).
		StatusOK().
		ContentTypeHTML().
		HasElement("report-header").
		ContainsAll("Padaria Central", "conservative", "(base)", "R$ 1.200.000,00")

	testutil.AssertResponse(t, ts.GET("/report/optimistic")).
		StatusOK().
		Contains("R$ 1.500.000,00").
		NotContains("(base)")

	testutil.AssertResponse(t, ts.GET("/report/other")).Status(http.StatusNotFound)
}
