package models

import (
	"encoding/json"
	"time"
)

// CurrentPlanVersion is the document schema version written by this build
const CurrentPlanVersion = 1

// CompanyProfile describes the business being planned
type CompanyProfile struct {
	Name        string `json:"name"`
	Segment     string `json:"segment"`
	City        string `json:"city"`
	Employees   int    `json:"employees"`
	FoundedYear int    `json:"founded_year"`
	Description string `json:"description"`
}

// Baseline2025 holds last year's actual driver series
type Baseline2025 map[Driver]MonthlySeries

// Goals2026 are the owner's headline targets
type Goals2026 struct {
	AnnualRevenue        float64 `json:"annual_revenue"`
	NetMarginPercent     float64 `json:"net_margin_percent"`
	AverageTicket        float64 `json:"average_ticket"`
	NewCustomersPerMonth float64 `json:"new_customers_per_month"`
	Headcount            int     `json:"headcount"`
}

// Suggestion sources
const (
	SourceUser = "user"
	SourceAI   = "ai"
)

// OKR is an objective with its key results
type OKR struct {
	ID         string   `json:"id"`
	Objective  string   `json:"objective"`
	KeyResults []string `json:"key_results"`
	Source     string   `json:"source"`
}

// KPI is a tracked indicator with a target
type KPI struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Target    float64 `json:"target"`
	Unit      string  `json:"unit"`
	Frequency string  `json:"frequency"`
	Source    string  `json:"source"`
}

// ActionPlanItem is one task of the action plan
type ActionPlanItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Owner  string `json:"owner"`
	Due    string `json:"due"`
	Status string `json:"status"`
	Source string `json:"source"`
}

// PlanDocument is the single root of all planning data. It is persisted
// and replaced as a whole.
type PlanDocument struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile      CompanyProfile `json:"profile"`
	Baseline2025 Baseline2025   `json:"baseline_2025"`
	Goals2026    Goals2026      `json:"goals_2026"`

	Scenarios2026 Scenarios2026 `json:"scenarios_2026"`
	BaseScenario  ScenarioName  `json:"base_scenario"`
	Tracking2026  Tracking2026  `json:"tracking_2026"`

	Assumptions       StatementAssumptions `json:"assumptions"`
	FinancialPlan2026 FinancialPlan2026    `json:"financial_plan_2026"`

	PricingItems []PricingItem `json:"pricing_items"`

	OKRs       []OKR                      `json:"okrs"`
	KPIs       []KPI                      `json:"kpis"`
	ActionPlan []ActionPlanItem           `json:"action_plan"`
	Narratives map[NarrativeSlot]Narrative `json:"narratives"`
}

// NewPlanDocument returns an initialized, empty plan
func NewPlanDocument() *PlanDocument {
	doc := &PlanDocument{
		Version:       CurrentPlanVersion,
		Baseline2025:  Baseline2025{},
		Scenarios2026: NewScenarios2026(),
		BaseScenario:  Conservative,
		Tracking2026:  Tracking2026{},
		Assumptions:   DefaultStatementAssumptions(),
	}
	doc.Normalize()
	return doc
}

// Normalize restores structural invariants after decoding a document
func (d *PlanDocument) Normalize() {
	if d.Version == 0 {
		d.Version = CurrentPlanVersion
	}
	if d.Baseline2025 == nil {
		d.Baseline2025 = Baseline2025{}
	}
	for _, drv := range Drivers {
		d.Baseline2025[drv] = d.Baseline2025[drv].Normalize()
	}
	for k := range d.Baseline2025 {
		if _, ok := ParseDriver(string(k)); !ok {
			delete(d.Baseline2025, k)
		}
	}
	d.Scenarios2026 = d.Scenarios2026.Normalize()
	if _, ok := ParseScenario(string(d.BaseScenario)); !ok {
		d.BaseScenario = Conservative
	}
	d.Tracking2026 = d.Tracking2026.Normalize()
	if d.Assumptions.IncomeTaxRate == 0 && d.Assumptions.Capex == nil {
		d.Assumptions = DefaultStatementAssumptions()
	}
	d.Assumptions.Normalize()
	if d.FinancialPlan2026 == nil {
		d.FinancialPlan2026 = FinancialPlan2026{}
	}
	if d.PricingItems == nil {
		d.PricingItems = []PricingItem{}
	}
	if d.OKRs == nil {
		d.OKRs = []OKR{}
	}
	if d.KPIs == nil {
		d.KPIs = []KPI{}
	}
	if d.ActionPlan == nil {
		d.ActionPlan = []ActionPlanItem{}
	}
	if d.Narratives == nil {
		d.Narratives = map[NarrativeSlot]Narrative{}
	}
}

// Scenario returns the named scenario
func (d *PlanDocument) Scenario(name ScenarioName) (*ScenarioData, bool) {
	sd, ok := d.Scenarios2026[name]
	return sd, ok && sd != nil
}

// Clone returns a deep copy by round-tripping through JSON
func (d *PlanDocument) Clone() (*PlanDocument, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return DecodePlan(data)
}

// DecodePlan parses and normalizes a serialized plan document
func DecodePlan(data []byte) (*PlanDocument, error) {
	var doc PlanDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc.Normalize()
	return &doc, nil
}
