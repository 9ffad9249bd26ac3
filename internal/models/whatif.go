package models

// FinancialBase is the annual baseline that sensitivity and what-if views perturb
type FinancialBase struct {
	Revenue       float64 `json:"revenue"`
	VariableCosts float64 `json:"variable_costs"`
	FixedCosts    float64 `json:"fixed_costs"`
}

// SensitivityCell is the outcome for one price/volume combination.
// Steps are fractions (0.1 = +10%).
type SensitivityCell struct {
	PriceStep     float64 `json:"price_step"`
	VolumeStep    float64 `json:"volume_step"`
	Revenue       float64 `json:"revenue"`
	VariableCosts float64 `json:"variable_costs"`
	FixedCosts    float64 `json:"fixed_costs"`
	EBITDA        float64 `json:"ebitda"`
	NetProfit     float64 `json:"net_profit"`
	NetMargin     float64 `json:"net_margin"`
}

// SensitivityMatrix is a 5x5 grid: rows vary volume, columns vary price
type SensitivityMatrix struct {
	Range       float64               `json:"range"`
	PriceSteps  [5]float64            `json:"price_steps"`
	VolumeSteps [5]float64            `json:"volume_steps"`
	Cells       [5][5]SensitivityCell `json:"cells"`
	Baseline    SensitivityCell       `json:"baseline"`
}

// Center returns the unperturbed cell
func (m *SensitivityMatrix) Center() SensitivityCell {
	return m.Cells[2][2]
}

// SafetyMarginResult reports how far revenue sits above break-even
type SafetyMarginResult struct {
	Revenue                float64 `json:"revenue"`
	ContributionMarginRate float64 `json:"contribution_margin_rate"`
	BreakevenRevenue       float64 `json:"breakeven_revenue"`
	SafetyMarginPercent    float64 `json:"safety_margin_percent"`
}

// WhatIfBase describes the monthly commercial baseline of the simulator
type WhatIfBase struct {
	MonthlyRevenue       float64 `json:"monthly_revenue"`
	AverageTicket        float64 `json:"average_ticket"`
	VariableCostRate     float64 `json:"variable_cost_rate"`
	MonthlyFixedCosts    float64 `json:"monthly_fixed_costs"`
	MonthlyMarketing     float64 `json:"monthly_marketing"`
	NewCustomersPerMonth float64 `json:"new_customers_per_month"`
}

// WhatIfLevers are the ad hoc adjustments applied to the base
type WhatIfLevers struct {
	TicketPriceDelta float64 `json:"ticket_price_delta"` // percent
	NewHires         int     `json:"new_hires"`
	HireCost         float64 `json:"hire_cost"` // monthly cost per hire
	MarketingDelta   float64 `json:"marketing_delta"`
}

// WhatIfOutcome holds the monthly figures derived from a base and levers
type WhatIfOutcome struct {
	GrossRevenue     float64 `json:"gross_revenue"`
	AverageTicket    float64 `json:"average_ticket"`
	VariableCostRate float64 `json:"variable_cost_rate"`
	VariableCosts    float64 `json:"variable_costs"`
	FixedCosts       float64 `json:"fixed_costs"`
	Marketing        float64 `json:"marketing"`
	EBITDA           float64 `json:"ebitda"`
	EBITDAMargin     float64 `json:"ebitda_margin"`
	CAC              float64 `json:"cac"`
}

// WhatIfResult compares the baseline and the simulated outcome
type WhatIfResult struct {
	Levers    WhatIfLevers  `json:"levers"`
	Baseline  WhatIfOutcome `json:"baseline"`
	Simulated WhatIfOutcome `json:"simulated"`
	// EBITDAChange is the percent change of simulated over baseline EBITDA
	EBITDAChange float64 `json:"ebitda_change"`
}
