// Package projection turns a scenario's driver series into its cached
// monthly revenue, variable-cost and fixed-cost outputs.
package projection

import (
	"fmt"
	"math"

	"bizplan/internal/models"
	"bizplan/internal/services/derive"
)

// growthDrivers scale with the growth percentage. Fixed drivers carry the
// baseline amount forward unchanged.
var growthDrivers = []models.Driver{
	models.DriverGrossRevenue,
	models.DriverTaxes,
	models.DriverCOGS,
	models.DriverCommissions,
	models.DriverFreight,
}

// Outputs are the three derived monthly series of a scenario
type Outputs struct {
	Revenue       models.MonthlySeries
	VariableCosts models.MonthlySeries
	FixedCosts    models.MonthlySeries
}

// VariableTotal is COGS + commissions + freight + every custom variable item
func VariableTotal(p *models.ScenarioProjectionData, m models.Month) float64 {
	total := p.COGS.Value(m) + p.Commissions.Value(m) + p.Freight.Value(m)
	for _, item := range p.CustomVariable {
		total += item.Values.Value(m)
	}
	return total
}

// FixedTotal is payroll + rent + opex + marketing + admin + every custom fixed item
func FixedTotal(p *models.ScenarioProjectionData, m models.Month) float64 {
	total := p.Payroll.Value(m) + p.Rent.Value(m) + p.Opex.Value(m) +
		p.Marketing.Value(m) + p.Admin.Value(m)
	for _, item := range p.CustomFixed {
		total += item.Values.Value(m)
	}
	return total
}

// CustomTotal sums the custom items of one kind for a month
func CustomTotal(p *models.ScenarioProjectionData, kind models.LineItemKind, m models.Month) float64 {
	var total float64
	for _, item := range *p.Items(kind) {
		total += item.Values.Value(m)
	}
	return total
}

// Compute derives fresh output series from the drivers without touching the scenario
func Compute(p *models.ScenarioProjectionData) Outputs {
	out := Outputs{
		Revenue:       models.NewSeries(),
		VariableCosts: models.NewSeries(),
		FixedCosts:    models.NewSeries(),
	}
	for _, m := range models.Months {
		out.Revenue.Set(m, p.GrossRevenue.Value(m))
		out.VariableCosts.Set(m, VariableTotal(p, m))
		out.FixedCosts.Set(m, FixedTotal(p, m))
	}
	return out
}

// Recompute rebuilds all three cached series and swaps them in together
func Recompute(sd *models.ScenarioData) {
	out := Compute(&sd.Projection)
	sd.ReceitaProjetada, sd.CustosProjetados, sd.DespesasProjetadas =
		out.Revenue, out.VariableCosts, out.FixedCosts
}

// Distribute spreads an annual amount over the year, evenly or following the
// monthly shape of a reference series. A shape without any volume falls back
// to an even split.
func Distribute(annual float64, shape models.MonthlySeries, dist models.Distribution) models.MonthlySeries {
	out := models.NewSeries()
	total := derive.Sum(shape)
	if dist != models.DistributeShape || total == 0 {
		for _, m := range models.Months {
			out.Set(m, annual/12)
		}
		return out
	}
	for _, m := range models.Months {
		out.Set(m, annual*shape.Value(m)/total)
	}
	return out
}

// ApplyGrowth sets the growth percentage and rebuilds the drivers from the
// 2025 baseline. Drivers without any baseline data keep their current values.
// Custom line items are not affected.
func ApplyGrowth(sd *models.ScenarioData, baseline models.Baseline2025, pct float64) {
	sd.GrowthPercentage = pct
	factor := 1 + pct/100
	for _, d := range models.Drivers {
		base := baseline[d]
		if derive.Present(base) == 0 {
			continue
		}
		annual := derive.Sum(base)
		if isGrowthDriver(d) {
			annual *= factor
		}
		*sd.Projection.Series(d) = Distribute(annual, base, sd.Projection.Distribution)
	}
	Recompute(sd)
}

func isGrowthDriver(d models.Driver) bool {
	for _, g := range growthDrivers {
		if g == d {
			return true
		}
	}
	return false
}

// AnnualBase folds a scenario's cached outputs into annual totals
func AnnualBase(sd *models.ScenarioData) models.FinancialBase {
	return models.FinancialBase{
		Revenue:       derive.Sum(sd.ReceitaProjetada),
		VariableCosts: derive.Sum(sd.CustosProjetados),
		FixedCosts:    derive.Sum(sd.DespesasProjetadas),
	}
}

// Verify reports the first month where a cached series differs from a fresh
// computation
func Verify(sd *models.ScenarioData) error {
	fresh := Compute(&sd.Projection)
	checks := []struct {
		name   string
		cached models.MonthlySeries
		fresh  models.MonthlySeries
	}{
		{"receita_projetada", sd.ReceitaProjetada, fresh.Revenue},
		{"custos_projetados", sd.CustosProjetados, fresh.VariableCosts},
		{"despesas_projetadas", sd.DespesasProjetadas, fresh.FixedCosts},
	}
	for _, c := range checks {
		for _, m := range models.Months {
			if math.Abs(c.cached.Value(m)-c.fresh.Value(m)) > 1e-6 {
				return fmt.Errorf("%s stale at %s: cached %.2f, expected %.2f",
					c.name, m, c.cached.Value(m), c.fresh.Value(m))
			}
		}
	}
	return nil
}
