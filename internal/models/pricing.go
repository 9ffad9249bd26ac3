package models

import "time"

// PricingInputs are the per-item assumptions of the markup-divisor method.
// Rates are percentages of the selling price.
type PricingInputs struct {
	DirectCost     float64  `json:"direct_cost"`
	TaxRate        float64  `json:"tax_rate"`
	CommissionRate float64  `json:"commission_rate"`
	CardFeeRate    float64  `json:"card_fee_rate"`
	FixedCostRate  float64  `json:"fixed_cost_rate"`
	TargetMargin   float64  `json:"target_margin"`
	PriceOverride  *float64 `json:"price_override,omitempty"`

	// Funnel inputs, conversion rates in percent
	MonthlyRevenueGoal    float64 `json:"monthly_revenue_goal"`
	CloseRate             float64 `json:"close_rate"`
	MeetingToProposalRate float64 `json:"meeting_to_proposal_rate"`
	LeadToMeetingRate     float64 `json:"lead_to_meeting_rate"`
}

// FunnelTargets are the monthly activity volumes needed to reach a revenue goal
type FunnelTargets struct {
	Sales     int `json:"sales"`
	Proposals int `json:"proposals"`
	Meetings  int `json:"meetings"`
	Leads     int `json:"leads"`
}

// PricingResult is the computed price and its margin breakdown
type PricingResult struct {
	Viable         bool    `json:"viable"`
	SuggestedPrice float64 `json:"suggested_price"`
	FinalPrice     float64 `json:"final_price"`
	Markup         float64 `json:"markup"`

	Taxes       float64 `json:"taxes"`
	Commissions float64 `json:"commissions"`
	CardFees    float64 `json:"card_fees"`
	FixedShare  float64 `json:"fixed_share"`

	ContributionMargin        float64 `json:"contribution_margin"`
	ContributionMarginPercent float64 `json:"contribution_margin_percent"`
	NetProfit                 float64 `json:"net_profit"`
	NetMarginPercent          float64 `json:"net_margin_percent"`

	Funnel FunnelTargets `json:"funnel"`
}

// PricingItem is a saved pricing calculation
type PricingItem struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Inputs    PricingInputs `json:"inputs"`
	Result    PricingResult `json:"result"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
