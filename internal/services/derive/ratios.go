package derive

import "math"

// SimplifiedTaxRate is the illustrative flat rate used by comparison views
// and the sensitivity matrix. It is not the DRE income tax line.
const SimplifiedTaxRate = 0.24

// SafeRatio divides n by d and returns 0 instead of NaN or Inf.
// Every rate in the application is computed through it.
func SafeRatio(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	r := n / d
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// MarginPercent returns profit as a percentage of revenue
func MarginPercent(profit, revenue float64) float64 {
	return SafeRatio(profit, revenue) * 100
}

// ContributionMargin is revenue minus variable costs
func ContributionMargin(revenue, variableCosts float64) float64 {
	return revenue - variableCosts
}

// ContributionMarginRate is the contribution margin as a fraction of revenue
func ContributionMarginRate(revenue, variableCosts float64) float64 {
	return SafeRatio(ContributionMargin(revenue, variableCosts), revenue)
}

// EBITDA is revenue minus variable and fixed operating costs
func EBITDA(revenue, variableCosts, fixedCosts float64) float64 {
	return revenue - variableCosts - fixedCosts
}

// SimplifiedNetProfit approximates net profit as EBITDA x (1 - 24%).
// The DRE computes its own tax line; the two are intentionally distinct.
func SimplifiedNetProfit(ebitda float64) float64 {
	return ebitda * (1 - SimplifiedTaxRate)
}

// BreakevenRevenue is the revenue at which contribution margin covers fixed
// costs. Returns 0 when the contribution margin rate is 0.
func BreakevenRevenue(fixedCosts, contributionMarginRate float64) float64 {
	return SafeRatio(fixedCosts, contributionMarginRate)
}

// SafetyMargin is the percentage of revenue above break-even, 0 without revenue
func SafetyMargin(revenue, breakeven float64) float64 {
	if revenue == 0 {
		return 0
	}
	return SafeRatio(revenue-breakeven, revenue) * 100
}

// CAC is marketing spend per newly acquired customer
func CAC(marketingSpend, newCustomers float64) float64 {
	return SafeRatio(marketingSpend, newCustomers)
}

// LTV is the gross margin a customer generates over their lifetime
func LTV(averageTicket, grossMarginRate, purchasesPerYear, lifetimeYears float64) float64 {
	return averageTicket * grossMarginRate * purchasesPerYear * lifetimeYears
}

// LTVToCAC is the payback multiple of acquisition spend
func LTVToCAC(ltv, cac float64) float64 {
	return SafeRatio(ltv, cac)
}

// Markup is the price to cost multiplier
func Markup(price, cost float64) float64 {
	return SafeRatio(price, cost)
}

// PercentChange returns the change from previous to current in percent.
// A zero previous value yields 0 when current is 0, 100 for a rise and
// -100 for a fall.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		switch {
		case current > 0:
			return 100
		case current < 0:
			return -100
		}
		return 0
	}
	return ((current - previous) / math.Abs(previous)) * 100
}
