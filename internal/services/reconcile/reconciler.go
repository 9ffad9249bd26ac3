package reconcile

import (
	"bizplan/internal/models"
	"bizplan/internal/services/derive"
)

var (
	ErrUnknownScenario = models.ErrUnknownScenario
	ErrUnknownMonth    = models.ErrUnknownMonth
)

// Row keys of the monthly report
const (
	RowRevenue            = "revenue"
	RowVariableCosts      = "variable_costs"
	RowFixedCosts         = "fixed_costs"
	RowContributionMargin = "contribution_margin"
	RowEBITDA             = "ebitda"
	RowBreakeven          = "breakeven_revenue"
)

// Row is one projected-versus-actual comparison
type Row struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Kind      RowKind  `json:"kind"`
	Projected *float64 `json:"projected"`
	Actual    *float64 `json:"actual"`
	Variance  Variance `json:"variance"`
}

// MonthReport is the tracking view for one month of one scenario
type MonthReport struct {
	Scenario models.ScenarioName `json:"scenario"`
	Month    models.Month        `json:"month"`
	Rows     []Row               `json:"rows"`
}

// Row returns the row with the given key
func (r *MonthReport) Row(key string) (Row, bool) {
	for _, row := range r.Rows {
		if row.Key == key {
			return row, true
		}
	}
	return Row{}, false
}

// figures holds the three core numbers of one side of the comparison
type figures struct {
	revenue, variable, fixed *float64
}

// derived computes contribution margin, EBITDA and break-even when every
// input is present
func (f figures) derived() (cm, ebitda, breakeven *float64) {
	if f.revenue == nil || f.variable == nil {
		return nil, nil, nil
	}
	c := derive.ContributionMargin(*f.revenue, *f.variable)
	cm = &c
	if f.fixed == nil {
		return cm, nil, nil
	}
	e := c - *f.fixed
	b := derive.BreakevenRevenue(*f.fixed, derive.ContributionMarginRate(*f.revenue, *f.variable))
	return cm, &e, &b
}

func newRow(key, label string, kind RowKind, projected, actual *float64) Row {
	return Row{
		Key:       key,
		Label:     label,
		Kind:      kind,
		Projected: projected,
		Actual:    actual,
		Variance:  Compare(actual, projected, kind),
	}
}

func seriesPtr(s models.MonthlySeries, m models.Month) *float64 {
	if v, ok := s.Get(m); ok {
		return models.Float(v)
	}
	return nil
}

// BuildMonthReport compares the scenario projection with the actuals of one month
func BuildMonthReport(doc *models.PlanDocument, scenario models.ScenarioName, month models.Month) (*MonthReport, error) {
	sd, ok := doc.Scenario(scenario)
	if !ok {
		return nil, ErrUnknownScenario
	}
	if !month.Valid() {
		return nil, ErrUnknownMonth
	}

	entry := doc.Tracking2026.Entry(month)
	plan := figures{
		revenue:  seriesPtr(sd.ReceitaProjetada, month),
		variable: seriesPtr(sd.CustosProjetados, month),
		fixed:    seriesPtr(sd.DespesasProjetadas, month),
	}
	var actual figures
	if entry != nil {
		actual = figures{revenue: entry.Revenue, variable: entry.VariableCosts, fixed: entry.FixedCosts}
	}

	planCM, planEBITDA, planBE := plan.derived()
	actCM, actEBITDA, actBE := actual.derived()

	report := &MonthReport{
		Scenario: scenario,
		Month:    month,
		Rows: []Row{
			newRow(RowRevenue, "Revenue", KindRevenue, plan.revenue, actual.revenue),
			newRow(RowVariableCosts, "Variable costs", KindCost, plan.variable, actual.variable),
			newRow(RowFixedCosts, "Fixed costs", KindCost, plan.fixed, actual.fixed),
			newRow(RowContributionMargin, "Contribution margin", KindRevenue, planCM, actCM),
			newRow(RowEBITDA, "EBITDA", KindRevenue, planEBITDA, actEBITDA),
			newRow(RowBreakeven, "Break-even revenue", KindCost, planBE, actBE),
		},
	}

	for _, kind := range []models.LineItemKind{models.LineItemVariable, models.LineItemFixed} {
		for _, item := range *sd.Projection.Items(kind) {
			var act *float64
			if v, ok := entry.CustomValue(item.ID); ok {
				act = models.Float(v)
			}
			report.Rows = append(report.Rows, newRow(
				models.CustomKey(item.ID), item.Name, KindCost,
				seriesPtr(item.Values, month), act,
			))
		}
	}

	return report, nil
}
