package sensitivity

import (
	"bizplan/internal/models"
	"bizplan/internal/services/derive"
	"bizplan/internal/services/projection"
)

// BaseFor builds the monthly what-if base of a scenario. Ticket and customer
// volume come from the 2026 goals.
func BaseFor(doc *models.PlanDocument, sd *models.ScenarioData) models.WhatIfBase {
	annual := projection.AnnualBase(sd)
	return models.WhatIfBase{
		MonthlyRevenue:       annual.Revenue / 12,
		AverageTicket:        doc.Goals2026.AverageTicket,
		VariableCostRate:     derive.SafeRatio(annual.VariableCosts, annual.Revenue),
		MonthlyFixedCosts:    annual.FixedCosts / 12,
		MonthlyMarketing:     derive.Sum(sd.Projection.Marketing) / 12,
		NewCustomersPerMonth: doc.Goals2026.NewCustomersPerMonth,
	}
}

// outcome derives the monthly figures of a base. Fixed costs already include
// marketing.
func outcome(revenue, ticket, variableCosts, fixed, marketing, newCustomers float64) models.WhatIfOutcome {
	ebitda := derive.EBITDA(revenue, variableCosts, fixed)
	return models.WhatIfOutcome{
		GrossRevenue:     revenue,
		AverageTicket:    ticket,
		VariableCostRate: derive.SafeRatio(variableCosts, revenue),
		VariableCosts:    variableCosts,
		FixedCosts:       fixed,
		Marketing:        marketing,
		EBITDA:           ebitda,
		EBITDAMargin:     derive.MarginPercent(ebitda, revenue),
		CAC:              derive.CAC(marketing, newCustomers),
	}
}

// Simulate applies the levers to the base. A ticket change moves revenue at
// constant volume, so variable costs hold and their rate shifts. Hires and
// marketing add to fixed costs.
func Simulate(base models.WhatIfBase, levers models.WhatIfLevers) models.WhatIfResult {
	variable := base.MonthlyRevenue * base.VariableCostRate
	baseline := outcome(base.MonthlyRevenue, base.AverageTicket, variable,
		base.MonthlyFixedCosts, base.MonthlyMarketing, base.NewCustomersPerMonth)

	factor := 1 + levers.TicketPriceDelta/100
	hires := float64(levers.NewHires) * levers.HireCost
	marketing := base.MonthlyMarketing + levers.MarketingDelta
	simulated := outcome(
		base.MonthlyRevenue*factor,
		base.AverageTicket*factor,
		variable,
		base.MonthlyFixedCosts+hires+levers.MarketingDelta,
		marketing,
		base.NewCustomersPerMonth,
	)

	return models.WhatIfResult{
		Levers:       levers,
		Baseline:     baseline,
		Simulated:    simulated,
		EBITDAChange: derive.PercentChange(simulated.EBITDA, baseline.EBITDA),
	}
}
