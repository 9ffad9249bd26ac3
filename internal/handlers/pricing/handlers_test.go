package pricing

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"bizplan/internal/models"
	"bizplan/internal/testutil"
)

func setup(t *testing.T) *testutil.TestServer {
	t.Helper()
	m, _ := testutil.NewManager(t)
	Initialize(m)
	r := chi.NewRouter()
	RegisterRoutes(r)
	return testutil.NewTestServer(t, r)
}

var coffee = models.PricingInputs{
	DirectCost:            50,
	TaxRate:               10,
	CommissionRate:        5,
	CardFeeRate:           3,
	FixedCostRate:         12,
	TargetMargin:          20,
	MonthlyRevenueGoal:    10000,
	CloseRate:             20,
	MeetingToProposalRate: 50,
	LeadToMeetingRate:     25,
}

func TestCalculate(t *testing.T) {
	ts := setup(t)

	var res models.PricingResult
	testutil.AssertResponse(t, ts.POSTJSON("/api/pricing/calculate", coffee)).
		StatusOK().
		ContentTypeJSON().
		JSON(&res)

	if res.SuggestedPrice != 100 || res.FinalPrice != 100 {
		t.Errorf("price = %v / %v, want 100", res.SuggestedPrice, res.FinalPrice)
	}
	if res.ContributionMargin != 32 || res.NetProfit != 20 || !res.Viable {
		t.Errorf("margins = %+v", res)
	}
	want := models.FunnelTargets{Sales: 100, Proposals: 500, Meetings: 1000, Leads: 4000}
	if res.Funnel != want {
		t.Errorf("funnel = %+v, want %+v", res.Funnel, want)
	}

	bad := coffee
	bad.DirectCost = -1
	testutil.AssertResponse(t, ts.POSTJSON("/api/pricing/calculate", bad)).Status(http.StatusBadRequest)

	nonViable := coffee
	nonViable.TargetMargin = 70
	testutil.AssertResponse(t, ts.POSTJSON("/api/pricing/calculate", nonViable)).
		StatusOK().
		Contains(`"viable":false`)
}

func TestItems(t *testing.T) {
	ts := setup(t)

	testutil.AssertResponse(t, ts.GET("/api/pricing/items")).StatusOK().Contains("[]")

	var change models.Change
	testutil.AssertResponse(t, ts.POSTJSON("/api/pricing/items", ItemRequest{Name: "Espresso", Inputs: coffee})).
		StatusOK().
		JSON(&change)

	override := coffee
	override.PriceOverride = models.Float(120)
	testutil.AssertResponse(t, ts.PUT("/api/pricing/items/"+change.Target, ItemRequest{Inputs: override})).
		StatusOK()

	var items []models.PricingItem
	testutil.AssertResponse(t, ts.GET("/api/pricing/items")).StatusOK().JSON(&items)
	if len(items) != 1 || items[0].Name != "Espresso" || items[0].Result.FinalPrice != 120 {
		t.Fatalf("items = %+v", items)
	}

	testutil.AssertResponse(t, ts.POSTJSON("/api/pricing/items", ItemRequest{Name: " ", Inputs: coffee})).
		Status(http.StatusBadRequest)
	testutil.AssertResponse(t, ts.DELETE("/api/pricing/items/"+change.Target)).StatusOK()
	testutil.AssertResponse(t, ts.DELETE("/api/pricing/items/"+change.Target)).Status(http.StatusNotFound)
}
