package statements

import (
	"math"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"bizplan/internal/models"
	"bizplan/internal/services/statements"
	"bizplan/internal/testutil"
)

func setup(t *testing.T) *testutil.TestServer {
	t.Helper()
	m, _ := testutil.NewManager(t)
	testutil.SeedPlan(t, m)
	Initialize(m)
	r := chi.NewRouter()
	RegisterRoutes(r)
	return testutil.NewTestServer(t, r)
}

func TestNotGeneratedIsZeroFilled(t *testing.T) {
	ts := setup(t)

	var v PlanView
	testutil.AssertResponse(t, ts.GET("/api/statements/optimistic")).StatusOK().ContentTypeJSON().JSON(&v)
	if v.Plan.Generated {
		t.Error("statements should not be generated yet")
	}
	if got := v.Plan.DRE.Annual(statements.DRENetProfit); got != 0 {
		t.Errorf("net profit = %v, want 0", got)
	}
}

func TestGenerate(t *testing.T) {
	ts := setup(t)

	testutil.AssertResponse(t, ts.POSTJSON("/api/statements/conservative/generate", nil)).
		StatusOK().
		Change(models.ChangeStatements)

	var v PlanView
	testutil.AssertResponse(t, ts.GET("/api/statements/conservative")).StatusOK().JSON(&v)
	if !v.Plan.Generated || v.Plan.GeneratedAt == nil {
		t.Fatal("expected generated statements")
	}
	// 30000 monthly EBITDA taxed at 34%
	if got := v.Plan.DRE.Annual(statements.DRENetProfit); math.Abs(got-237600) > 0.01 {
		t.Errorf("annual net profit = %v, want 237600", got)
	}
	if v.Imbalance > 0.01 {
		t.Errorf("balance sheet off by %v", v.Imbalance)
	}

	var annual struct {
		Mode   string             `json:"mode"`
		Annual map[string]float64 `json:"annual"`
	}
	testutil.AssertResponse(t, ts.GET("/api/statements/conservative/dre/annual")).StatusOK().JSON(&annual)
	if annual.Mode != "flow" || math.Abs(annual.Annual[statements.DREEBITDA]-360000) > 0.01 {
		t.Errorf("dre annual = %+v", annual)
	}
	testutil.AssertResponse(t, ts.GET("/api/statements/conservative/bp/annual")).
		StatusOK().
		Contains(`"mode":"stock"`)
}

func TestErrors(t *testing.T) {
	ts := setup(t)

	testutil.AssertResponse(t, ts.POSTJSON("/api/statements/bogus/generate", nil)).Status(http.StatusNotFound)
	testutil.AssertResponse(t, ts.GET("/api/statements/optimistic/cashflow/annual")).Status(http.StatusNotFound)
}
