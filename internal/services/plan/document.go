package plan

import (
	"strings"

	"bizplan/internal/models"
	"bizplan/internal/services/projection"
)

// Reducer mutates a plan document in place
type Reducer func(doc *models.PlanDocument) (models.Change, error)

// RecomputeAll rebuilds the cached outputs of every scenario
func RecomputeAll(doc *models.PlanDocument) {
	for _, name := range models.ScenarioNames {
		if sd, ok := doc.Scenario(name); ok {
			projection.Recompute(sd)
		}
	}
}

// ReplaceDocument swaps the whole document, as when restoring a backup. The
// incoming cached series are never trusted.
func ReplaceDocument(doc, incoming *models.PlanDocument) (models.Change, error) {
	if incoming == nil {
		return models.Change{}, ErrInvalidValue
	}
	incoming.Normalize()
	for _, name := range models.ScenarioNames {
		sd, _ := incoming.Scenario(name)
		for _, d := range models.Drivers {
			if err := checkSeries(*sd.Projection.Series(d)); err != nil {
				return models.Change{}, err
			}
		}
	}
	RecomputeAll(incoming)
	*doc = *incoming
	return models.Change{Kind: models.ChangeReplace, Recomputed: true}, nil
}

// SetProfile replaces the company profile
func SetProfile(doc *models.PlanDocument, p models.CompanyProfile) (models.Change, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Employees < 0 || p.FoundedYear < 0 {
		return models.Change{}, ErrInvalidValue
	}
	doc.Profile = p
	return models.Change{Kind: models.ChangeProfile}, nil
}

// SetGoals replaces the 2026 goals
func SetGoals(doc *models.PlanDocument, g models.Goals2026) (models.Change, error) {
	for _, v := range []float64{g.AnnualRevenue, g.AverageTicket, g.NewCustomersPerMonth} {
		if !finite(v) || v < 0 {
			return models.Change{}, ErrInvalidValue
		}
	}
	if !finite(g.NetMarginPercent) || g.Headcount < 0 {
		return models.Change{}, ErrInvalidValue
	}
	doc.Goals2026 = g
	return models.Change{Kind: models.ChangeGoals}, nil
}

// SelectBaseScenario chooses the scenario that tracking and reports compare against
func SelectBaseScenario(doc *models.PlanDocument, name models.ScenarioName) (models.Change, error) {
	if _, err := scenario(doc, name); err != nil {
		return models.Change{}, err
	}
	doc.BaseScenario = name
	return models.Change{Kind: models.ChangeBaseScenario, Scenario: name}, nil
}

// SetBaselineValue writes one month of a 2025 driver; nil clears it.
// Scenarios in growth mode are rebuilt from the new baseline.
func SetBaselineValue(doc *models.PlanDocument, d models.Driver, m models.Month, v *float64) (models.Change, error) {
	if _, ok := models.ParseDriver(string(d)); !ok {
		return models.Change{}, ErrUnknownDriver
	}
	if !m.Valid() {
		return models.Change{}, ErrUnknownMonth
	}
	if err := checkValue(v); err != nil {
		return models.Change{}, err
	}

	series := doc.Baseline2025[d].Clone()
	if v == nil {
		series.Clear(m)
	} else {
		series.Set(m, *v)
	}
	doc.Baseline2025[d] = series

	change := models.Change{Kind: models.ChangeBaseline, Month: m, Target: string(d)}
	for _, name := range models.ScenarioNames {
		sd, _ := doc.Scenario(name)
		if sd.Projection.InputMode == models.InputGrowth {
			projection.ApplyGrowth(sd, doc.Baseline2025, sd.GrowthPercentage)
			change.Recomputed = true
		}
	}
	return change, nil
}

// SetAssumptions replaces the statement assumptions
func SetAssumptions(doc *models.PlanDocument, a models.StatementAssumptions) (models.Change, error) {
	a.Normalize()
	if a.IncomeTaxRate < 0 || a.IncomeTaxRate > 100 {
		return models.Change{}, ErrInvalidValue
	}
	for _, days := range []float64{a.ReceivableDays, a.InventoryDays, a.PayableDays} {
		if !finite(days) || days < 0 {
			return models.Change{}, ErrInvalidValue
		}
	}
	for _, s := range []models.MonthlySeries{a.Capex, a.NewDebt, a.DebtRepayment, a.Dividends} {
		if err := checkSeries(s); err != nil {
			return models.Change{}, err
		}
	}
	doc.Assumptions = a
	return models.Change{Kind: models.ChangeAssumptions}, nil
}
