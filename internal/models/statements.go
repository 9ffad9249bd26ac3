package models

import "time"

// StatementKind identifies one of the three financial statements
type StatementKind string

const (
	StatementDRE StatementKind = "dre"
	StatementDFC StatementKind = "dfc"
	StatementBP  StatementKind = "bp"
)

// ParseStatementKind validates a statement kind
func ParseStatementKind(s string) (StatementKind, bool) {
	switch StatementKind(s) {
	case StatementDRE, StatementDFC, StatementBP:
		return StatementKind(s), true
	}
	return "", false
}

// AggregationMode decides how a statement's annual column is computed
type AggregationMode string

const (
	// ModeFlow sums the twelve months
	ModeFlow AggregationMode = "flow"
	// ModeStock takes the December snapshot
	ModeStock AggregationMode = "stock"
)

// StatementRow is one named line of a statement
type StatementRow struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Values [12]float64 `json:"values"`
}

// Statement is a monthly table with an explicit aggregation mode
type Statement struct {
	Kind StatementKind   `json:"kind"`
	Mode AggregationMode `json:"mode"`
	Rows []StatementRow  `json:"rows"`
}

// Row returns the row with the given key
func (s Statement) Row(key string) (StatementRow, bool) {
	for _, r := range s.Rows {
		if r.Key == key {
			return r, true
		}
	}
	return StatementRow{}, false
}

// Value returns the value of a row for a month, zero when missing
func (s Statement) Value(key string, m Month) float64 {
	r, ok := s.Row(key)
	i := m.Index()
	if !ok || i < 0 {
		return 0
	}
	return r.Values[i]
}

// Annual returns the annual figure for a row according to the statement mode
func (s Statement) Annual(key string) float64 {
	r, ok := s.Row(key)
	if !ok {
		return 0
	}
	switch s.Mode {
	case ModeStock:
		return r.Values[11]
	case ModeFlow:
		var total float64
		for _, v := range r.Values {
			total += v
		}
		return total
	}
	return 0
}

// AnnualColumn returns the annual figure of every row keyed by row key
func (s Statement) AnnualColumn() map[string]float64 {
	out := make(map[string]float64, len(s.Rows))
	for _, r := range s.Rows {
		out[r.Key] = s.Annual(r.Key)
	}
	return out
}

// StatementAssumptions are the inputs the statements need beyond the scenario drivers
type StatementAssumptions struct {
	OpeningCash              float64 `json:"opening_cash"`
	DepreciationMonthly      float64 `json:"depreciation_monthly"`
	FinancialExpensesMonthly float64 `json:"financial_expenses_monthly"`

	// IncomeTaxRate is the fixed IRPJ/CSLL approximation, in percent
	IncomeTaxRate float64 `json:"income_tax_rate"`

	Capex         MonthlySeries `json:"capex"`
	NewDebt       MonthlySeries `json:"new_debt"`
	DebtRepayment MonthlySeries `json:"debt_repayment"`
	Dividends     MonthlySeries `json:"dividends"`

	ReceivableDays float64 `json:"receivable_days"`
	InventoryDays  float64 `json:"inventory_days"`
	PayableDays    float64 `json:"payable_days"`

	OpeningFixedAssets      float64 `json:"opening_fixed_assets"`
	OpeningDebt             float64 `json:"opening_debt"`
	ShareCapital            float64 `json:"share_capital"`
	OpeningRetainedEarnings float64 `json:"opening_retained_earnings"`
}

// DefaultIncomeTaxRate approximates IRPJ (25%) plus CSLL (9%)
const DefaultIncomeTaxRate = 34.0

// DefaultStatementAssumptions returns assumptions with empty schedules
func DefaultStatementAssumptions() StatementAssumptions {
	return StatementAssumptions{
		IncomeTaxRate:  DefaultIncomeTaxRate,
		Capex:          ZeroSeries(),
		NewDebt:        ZeroSeries(),
		DebtRepayment:  ZeroSeries(),
		Dividends:      ZeroSeries(),
		ReceivableDays: 30,
		InventoryDays:  30,
		PayableDays:    30,
	}
}

// Normalize fills missing schedules after decoding
func (a *StatementAssumptions) Normalize() {
	a.Capex = a.Capex.Normalize()
	a.NewDebt = a.NewDebt.Normalize()
	a.DebtRepayment = a.DebtRepayment.Normalize()
	a.Dividends = a.Dividends.Normalize()
}

// FinancialPlan holds the generated statements of one scenario
type FinancialPlan struct {
	Generated   bool       `json:"generated"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	DRE         Statement  `json:"dre"`
	DFC         Statement  `json:"dfc"`
	BP          Statement  `json:"bp"`
}

// Statement returns the statement of the given kind
func (p *FinancialPlan) Statement(kind StatementKind) Statement {
	switch kind {
	case StatementDFC:
		return p.DFC
	case StatementBP:
		return p.BP
	}
	return p.DRE
}

// FinancialPlan2026 holds generated statements per scenario
type FinancialPlan2026 map[ScenarioName]*FinancialPlan
