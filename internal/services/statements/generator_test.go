package statements

import (
	"math"
	"testing"
	"time"

	"bizplan/internal/models"
	"bizplan/internal/services/projection"
)

func testPlan() *models.PlanDocument {
	doc := models.NewPlanDocument()
	sd, _ := doc.Scenario(models.Conservative)
	sd.Projection.GrossRevenue = models.UniformSeries(100000)
	sd.Projection.Taxes = models.UniformSeries(6000)
	sd.Projection.COGS = models.UniformSeries(30000)
	sd.Projection.Commissions = models.UniformSeries(6000)
	sd.Projection.Freight = models.UniformSeries(4000)
	sd.Projection.Payroll = models.UniformSeries(25000)
	sd.Projection.Rent = models.UniformSeries(8000)
	sd.Projection.Opex = models.UniformSeries(5000)
	sd.Projection.Marketing = models.UniformSeries(4000)
	sd.Projection.Admin = models.UniformSeries(3000)
	sd.Projection.CustomFixed = []models.CustomLineItem{
		{ID: "f1", Name: "Software", Values: models.UniformSeries(5000)},
	}
	projection.Recompute(sd)

	doc.Assumptions.OpeningCash = 100000
	doc.Assumptions.OpeningFixedAssets = 50000
	doc.Assumptions.OpeningDebt = 30000
	doc.Assumptions.ShareCapital = 120000
	doc.Assumptions.DepreciationMonthly = 1000
	doc.Assumptions.FinancialExpensesMonthly = 500
	doc.Assumptions.Capex.Set(models.Jun, 20000)
	doc.Assumptions.NewDebt.Set(models.Jun, 15000)
	doc.Assumptions.DebtRepayment = models.UniformSeries(1000)
	doc.Assumptions.Dividends.Set(models.Dec, 10000)
	return doc
}

func TestGenerateDRE(t *testing.T) {
	doc := testPlan()
	fp, err := Generate(doc, models.Conservative, time.Now())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !fp.Generated || fp.GeneratedAt == nil {
		t.Fatal("plan should be marked generated")
	}
	if len(fp.DRE.Rows) != 17 || len(fp.DFC.Rows) != 6 || len(fp.BP.Rows) != 15 {
		t.Fatalf("row counts = %d/%d/%d, want 17/6/15", len(fp.DRE.Rows), len(fp.DFC.Rows), len(fp.BP.Rows))
	}

	tests := []struct {
		key  string
		want float64
	}{
		{DREGrossRevenue, 100000},
		{DRENetRevenue, 94000},
		{DREVariableCosts, 40000},
		{DREGrossProfit, 54000},
		{DREOperatingExpenses, 13000},
		{DRECustomFixed, 5000},
		// 54000 - (25000+8000+5000+4000+3000+5000)
		{DREEBITDA, 4000},
		{DREEBIT, 3000},
		{DREPreTaxProfit, 2500},
		{DREIncomeTax, 850},
		{DRENetProfit, 1650},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := fp.DRE.Value(tt.key, models.Mar); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	if got := fp.DRE.Annual(DREEBITDA); math.Abs(got-48000) > 1e-6 {
		t.Errorf("annual ebitda = %v, want 48000", got)
	}
}

func TestIncomeTaxOnlyOnProfit(t *testing.T) {
	if got := IncomeTax(-1000, 34); got != 0 {
		t.Errorf("tax on loss = %v, want 0", got)
	}
	if got := IncomeTax(1000, 34); math.Abs(got-340) > 1e-9 {
		t.Errorf("tax = %v, want 340", got)
	}
}

func TestCashCarriesForward(t *testing.T) {
	fp, _ := Generate(testPlan(), models.Conservative, time.Now())
	if got := fp.DFC.Value(DFCBeginningCash, models.Jan); got != 100000 {
		t.Errorf("jan beginning cash = %v, want opening cash", got)
	}
	for i := 1; i < 12; i++ {
		prev, cur := models.Months[i-1], models.Months[i]
		if fp.DFC.Value(DFCBeginningCash, cur) != fp.DFC.Value(DFCEndingCash, prev) {
			t.Errorf("%s beginning cash does not match %s ending cash", cur, prev)
		}
	}
	for _, m := range models.Months {
		sum := fp.DFC.Value(DFCOperating, m) + fp.DFC.Value(DFCInvesting, m) + fp.DFC.Value(DFCFinancing, m)
		if math.Abs(sum-fp.DFC.Value(DFCNetVariation, m)) > 1e-6 {
			t.Errorf("%s net variation does not equal its components", m)
		}
		if math.Abs(fp.BP.Value(BPCash, m)-fp.DFC.Value(DFCEndingCash, m)) > 1e-6 {
			t.Errorf("%s balance sheet cash differs from cash flow", m)
		}
	}
}

func TestBalanceSheet(t *testing.T) {
	doc := testPlan()
	if err := OpeningImbalance(doc.Assumptions); err != nil {
		t.Fatalf("test assumptions should balance: %v", err)
	}
	fp, _ := Generate(doc, models.Conservative, time.Now())

	if gap := Imbalance(fp); gap > 1e-6 {
		t.Errorf("assets and liabilities+equity differ by %v", gap)
	}

	sums := []struct {
		total string
		parts []string
	}{
		{BPCurrentAssets, []string{BPCash, BPReceivables, BPInventory}},
		{BPTotalAssets, []string{BPCurrentAssets, BPFixedAssets}},
		{BPCurrentLiabilities, []string{BPSuppliers, BPTaxesPayable}},
		{BPTotalLiabilities, []string{BPCurrentLiabilities, BPLongTermDebt}},
		{BPTotalEquity, []string{BPShareCapital, BPRetainedEarnings}},
		{BPTotalLiabilitiesEquity, []string{BPTotalLiabilities, BPTotalEquity}},
	}
	for _, s := range sums {
		for _, m := range models.Months {
			var parts float64
			for _, p := range s.parts {
				parts += fp.BP.Value(p, m)
			}
			if math.Abs(parts-fp.BP.Value(s.total, m)) > 1e-6 {
				t.Errorf("%s %s = %v, components sum to %v", m, s.total, fp.BP.Value(s.total, m), parts)
			}
		}
	}
}

func TestStockAnnualIsDecember(t *testing.T) {
	fp, _ := Generate(testPlan(), models.Conservative, time.Now())
	if fp.BP.Mode != models.ModeStock {
		t.Fatalf("balance sheet mode = %s, want stock", fp.BP.Mode)
	}
	for _, r := range fp.BP.Rows {
		if fp.BP.Annual(r.Key) != r.Values[11] {
			t.Errorf("%s annual = %v, want december %v", r.Key, fp.BP.Annual(r.Key), r.Values[11])
		}
	}
	// fixed assets: 50000 + 20000 capex - 12 x 1000 depreciation
	if got := fp.BP.Annual(BPFixedAssets); math.Abs(got-58000) > 1e-6 {
		t.Errorf("fixed assets = %v, want 58000", got)
	}
	// long-term debt: 30000 + 15000 - 12 x 1000
	if got := fp.BP.Annual(BPLongTermDebt); math.Abs(got-33000) > 1e-6 {
		t.Errorf("debt = %v, want 33000", got)
	}
}

func TestLookupUngenerated(t *testing.T) {
	doc := testPlan()
	fp := Lookup(doc, models.Optimistic)
	if fp.Generated {
		t.Error("ungenerated scenario reported as generated")
	}
	if len(fp.DRE.Rows) != 17 {
		t.Fatalf("zero plan should still carry all rows")
	}
	for _, r := range fp.DRE.Rows {
		if r.Values != [12]float64{} {
			t.Errorf("%s should be zero", r.Key)
		}
	}

	if _, err := Generate(doc, "pessimistic", time.Now()); err != ErrUnknownScenario {
		t.Errorf("err = %v, want ErrUnknownScenario", err)
	}
}
