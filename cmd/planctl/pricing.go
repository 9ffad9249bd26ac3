package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bizplan/internal/cli"
	"bizplan/internal/models"
	"bizplan/internal/services/pricing"
)

var (
	pricingInputs models.PricingInputs
	flagPrice     float64
	flagItem      string
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Price an item from its costs and rates, or show a saved pricing item",
	RunE:  runPricing,
}

func init() {
	f := pricingCmd.Flags()
	f.Float64Var(&pricingInputs.DirectCost, "cost", 0, "Direct cost per unit")
	f.Float64Var(&pricingInputs.TaxRate, "tax", 0, "Taxes on sales, percent")
	f.Float64Var(&pricingInputs.CommissionRate, "commission", 0, "Sales commission, percent")
	f.Float64Var(&pricingInputs.CardFeeRate, "card-fee", 0, "Card fee, percent")
	f.Float64Var(&pricingInputs.FixedCostRate, "fixed", 0, "Fixed cost share, percent")
	f.Float64Var(&pricingInputs.TargetMargin, "margin", 0, "Target net margin, percent")
	f.Float64Var(&flagPrice, "price", 0, "Selling price override")
	f.Float64Var(&pricingInputs.MonthlyRevenueGoal, "goal", 0, "Monthly revenue goal for the sales funnel")
	f.Float64Var(&pricingInputs.CloseRate, "close-rate", 0, "Proposal to sale conversion, percent")
	f.Float64Var(&pricingInputs.MeetingToProposalRate, "meeting-rate", 0, "Meeting to proposal conversion, percent")
	f.Float64Var(&pricingInputs.LeadToMeetingRate, "lead-rate", 0, "Lead to meeting conversion, percent")
	f.StringVar(&flagItem, "item", "", "Show a saved pricing item by ID or name")
	rootCmd.AddCommand(pricingCmd)
}

func runPricing(cmd *cobra.Command, _ []string) error {
	name := "Calculation"
	in := pricingInputs
	if cmd.Flags().Changed("price") {
		in.PriceOverride = &flagPrice
	}

	if flagItem != "" {
		doc, err := loadPlan(cmd.Context())
		if err != nil {
			return err
		}
		item, ok := findPricingItem(doc.PricingItems, flagItem)
		if !ok {
			return fmt.Errorf("pricing item %q not found", flagItem)
		}
		name, in = item.Name, item.Inputs
	}

	if err := pricing.Validate(in); err != nil {
		return err
	}
	res := pricing.Calculate(in)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderTitle("PRICING  "+name))
	fmt.Fprint(out, cli.RenderTable(pricingTable(in, res)))
	if !res.Viable {
		fmt.Fprintln(out, cli.Note("%s", cli.Signed(-1, "price does not cover costs and the target margin")))
	}
	return nil
}

func findPricingItem(items []models.PricingItem, key string) (models.PricingItem, bool) {
	for _, it := range items {
		if it.ID == key || strings.EqualFold(it.Name, key) {
			return it, true
		}
	}
	return models.PricingItem{}, false
}

func pricingTable(in models.PricingInputs, r models.PricingResult) cli.Table {
	rows := [][]string{
		{"Direct cost", cli.Money(in.DirectCost)},
		{"Suggested price", cli.Money(r.SuggestedPrice)},
		{"Final price", cli.Money(r.FinalPrice)},
		{"Markup", fmt.Sprintf("%.2fx", r.Markup)},
		cli.Separator,
		{"Taxes", cli.Money(r.Taxes)},
		{"Commissions", cli.Money(r.Commissions)},
		{"Card fees", cli.Money(r.CardFees)},
		{"Fixed cost share", cli.Money(r.FixedShare)},
		cli.Separator,
		{"Contribution margin", cli.Money(r.ContributionMargin) + " (" + cli.Percent(r.ContributionMarginPercent) + ")"},
		{"Net profit", cli.Signed(r.NetProfit, cli.Money(r.NetProfit)) + " (" + cli.Percent(r.NetMarginPercent) + ")"},
	}
	if in.MonthlyRevenueGoal > 0 {
		rows = append(rows, cli.Separator,
			[]string{"Sales / month", cli.Count(float64(r.Funnel.Sales))},
			[]string{"Proposals", cli.Count(float64(r.Funnel.Proposals))},
			[]string{"Meetings", cli.Count(float64(r.Funnel.Meetings))},
			[]string{"Leads", cli.Count(float64(r.Funnel.Leads))},
		)
	}
	return cli.Table{Headers: []string{"Item", "Value"}, Rows: rows}
}
