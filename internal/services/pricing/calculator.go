// Package pricing implements the markup-divisor price calculator and the
// sales funnel needed to reach a revenue goal.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"bizplan/internal/models"
	"bizplan/internal/services/derive"
)

// ErrInvalidInput is returned for negative costs or rates
var ErrInvalidInput = errors.New("pricing inputs must not be negative")

var hundred = decimal.NewFromInt(100)

// Cents rounds a money amount half away from zero to two decimals
func Cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Validate rejects negative amounts and rates
func Validate(in models.PricingInputs) error {
	values := []float64{
		in.DirectCost, in.TaxRate, in.CommissionRate, in.CardFeeRate, in.FixedCostRate,
		in.MonthlyRevenueGoal, in.CloseRate, in.MeetingToProposalRate, in.LeadToMeetingRate,
	}
	if in.PriceOverride != nil {
		values = append(values, *in.PriceOverride)
	}
	for _, v := range values {
		if v < 0 {
			return ErrInvalidInput
		}
	}
	return nil
}

// Divisor is 1 minus every percentage deducted from the selling price
func Divisor(in models.PricingInputs) float64 {
	rates := in.TaxRate + in.CommissionRate + in.CardFeeRate + in.FixedCostRate + in.TargetMargin
	return 1 - rates/100
}

// SuggestedPrice is direct cost over the divisor. A divisor at or below zero
// has no price.
func SuggestedPrice(in models.PricingInputs) (float64, bool) {
	d := Divisor(in)
	if d <= 0 {
		return 0, false
	}
	return Cents(in.DirectCost / d), true
}

// Calculate prices one item and breaks the final price down
func Calculate(in models.PricingInputs) models.PricingResult {
	suggested, ok := SuggestedPrice(in)
	final := suggested
	if in.PriceOverride != nil {
		final = Cents(*in.PriceOverride)
	}

	share := func(rate float64) float64 { return Cents(final * rate / 100) }
	res := models.PricingResult{
		SuggestedPrice: suggested,
		FinalPrice:     final,
		Markup:         derive.Markup(final, in.DirectCost),
		Taxes:          share(in.TaxRate),
		Commissions:    share(in.CommissionRate),
		CardFees:       share(in.CardFeeRate),
		FixedShare:     share(in.FixedCostRate),
	}

	res.ContributionMargin = Cents(final - in.DirectCost - res.Taxes - res.Commissions - res.CardFees)
	res.ContributionMarginPercent = derive.MarginPercent(res.ContributionMargin, final)
	res.NetProfit = Cents(res.ContributionMargin - res.FixedShare)
	res.NetMarginPercent = derive.MarginPercent(res.NetProfit, final)
	res.Viable = ok && final > 0 && res.NetProfit >= 0
	res.Funnel = Funnel(in.MonthlyRevenueGoal, final, in.CloseRate, in.MeetingToProposalRate, in.LeadToMeetingRate)
	return res
}

// Funnel works backwards from a monthly revenue goal to the sales,
// proposals, meetings and leads required. Rates are percentages. A zero
// price or rate leaves its stage and every earlier stage at zero.
func Funnel(goal, price, closeRate, meetingToProposal, leadToMeeting float64) models.FunnelTargets {
	var f models.FunnelTargets
	if goal <= 0 || price <= 0 {
		return f
	}
	sales := ceilDiv(decimal.NewFromFloat(goal), decimal.NewFromFloat(price))
	f.Sales = int(sales.IntPart())

	stage := func(prev decimal.Decimal, rate float64) (decimal.Decimal, bool) {
		if rate <= 0 {
			return decimal.Zero, false
		}
		return ceilDiv(prev, decimal.NewFromFloat(rate).Div(hundred)), true
	}

	proposals, ok := stage(sales, closeRate)
	if !ok {
		return f
	}
	f.Proposals = int(proposals.IntPart())

	meetings, ok := stage(proposals, meetingToProposal)
	if !ok {
		return f
	}
	f.Meetings = int(meetings.IntPart())

	leads, ok := stage(meetings, leadToMeeting)
	if !ok {
		return f
	}
	f.Leads = int(leads.IntPart())
	return f
}

func ceilDiv(n, d decimal.Decimal) decimal.Decimal {
	return n.Div(d).Ceil()
}
