// Package dashboard serves the scenario comparison summary and the printable
// HTML report.
package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "bizplan/internal/http"
	"bizplan/internal/models"
	"bizplan/internal/services/derive"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/projection"
	"bizplan/internal/services/reconcile"
	"bizplan/internal/services/sensitivity"
	"bizplan/internal/services/statements"
	"bizplan/internal/templates"
)

var (
	manager  *planstore.Manager
	renderer *templates.Renderer
)

// Initialize sets up the dashboard package with required dependencies
func Initialize(m *planstore.Manager, r *templates.Renderer) {
	manager = m
	renderer = r
}

// RegisterRoutes registers all dashboard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard", handleSummary)
	r.Get("/report", handleReport)
	r.Get("/report/{scenario}", handleReport)
}

// ScenarioSummary holds the headline figures of one scenario
type ScenarioSummary struct {
	Name             models.ScenarioName  `json:"name"`
	GrowthPercentage float64              `json:"growth_percentage"`
	InputMode        models.InputMode     `json:"input_mode"`
	Annual           models.FinancialBase `json:"annual"`
	EBITDA           float64              `json:"ebitda"`
	EBITDAMargin     float64              `json:"ebitda_margin"`
	// NetProfit is the simplified EBITDA x 0.76 figure, not the DRE line
	NetProfit        float64 `json:"net_profit"`
	BreakevenRevenue float64 `json:"breakeven_revenue"`
	SafetyMargin     float64 `json:"safety_margin"`
	// GoalProgress is annual revenue as a percent of the revenue goal
	GoalProgress        float64 `json:"goal_progress"`
	StatementsGenerated bool    `json:"statements_generated"`
}

// Summary compares the three scenarios
type Summary struct {
	BaseScenario   models.ScenarioName `json:"base_scenario"`
	Scenarios      []ScenarioSummary   `json:"scenarios"`
	ReportedMonths int                 `json:"reported_months"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func summarize(doc *models.PlanDocument, name models.ScenarioName) ScenarioSummary {
	sd, _ := doc.Scenario(name)
	annual := projection.AnnualBase(sd)
	ebitda := derive.EBITDA(annual.Revenue, annual.VariableCosts, annual.FixedCosts)
	safety := sensitivity.SafetyMargin(annual)
	return ScenarioSummary{
		Name:                name,
		GrowthPercentage:    sd.GrowthPercentage,
		InputMode:           sd.Projection.InputMode,
		Annual:              annual,
		EBITDA:              ebitda,
		EBITDAMargin:        derive.MarginPercent(ebitda, annual.Revenue),
		NetProfit:           derive.SimplifiedNetProfit(ebitda),
		BreakevenRevenue:    safety.BreakevenRevenue,
		SafetyMargin:        safety.SafetyMarginPercent,
		GoalProgress:        derive.SafeRatio(annual.Revenue, doc.Goals2026.AnnualRevenue) * 100,
		StatementsGenerated: statements.Lookup(doc, name).Generated,
	}
}

// BuildSummary computes the comparison for a plan snapshot
func BuildSummary(doc *models.PlanDocument) Summary {
	s := Summary{BaseScenario: doc.BaseScenario, UpdatedAt: doc.UpdatedAt}
	for _, name := range models.ScenarioNames {
		s.Scenarios = append(s.Scenarios, summarize(doc, name))
	}
	for _, m := range models.Months {
		if !doc.Tracking2026.Entry(m).IsEmpty() {
			s.ReportedMonths++
		}
	}
	return s
}

func handleSummary(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, BuildSummary(doc))
}

// ReportData feeds the report template
type ReportData struct {
	Profile      models.CompanyProfile
	Scenario     models.ScenarioName
	IsBase       bool
	GeneratedAt  time.Time
	Annual       models.FinancialBase
	Summary      ScenarioSummary
	Safety       models.SafetyMarginResult
	Plan         *models.FinancialPlan
	ClosingCash  float64
	MonthIndexes []int
	Forecast     *reconcile.Forecast
	OKRs         []models.OKR
	Narratives   []models.Narrative
}

func handleReport(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	name := doc.BaseScenario
	if chi.URLParam(r, "scenario") != "" {
		if name, err = httpx.Scenario(r); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}

	sd, _ := doc.Scenario(name)
	annual := projection.AnnualBase(sd)
	fp := statements.Lookup(doc, name)
	data := ReportData{
		Profile:      doc.Profile,
		Scenario:     name,
		IsBase:       name == doc.BaseScenario,
		GeneratedAt:  time.Now(),
		Annual:       annual,
		Summary:      summarize(doc, name),
		Safety:       sensitivity.SafetyMargin(annual),
		Plan:         fp,
		ClosingCash:  fp.BP.Annual(statements.BPCash),
		MonthIndexes: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		OKRs:         doc.OKRs,
	}

	var last models.Month
	for _, m := range models.Months {
		if !doc.Tracking2026.Entry(m).IsEmpty() {
			last = m
		}
	}
	if last != "" {
		if f, err := reconcile.BuildForecast(doc, name, last); err == nil {
			data.Forecast = f
		}
	}
	for _, slot := range models.NarrativeSlots {
		if n, ok := doc.Narratives[slot]; ok && n.Text != "" {
			data.Narratives = append(data.Narratives, n)
		}
	}

	renderer.Render(w, "report", data)
}
