package sensitivity

import (
	"math"
	"testing"

	"bizplan/internal/models"
	"bizplan/internal/services/derive"
)

var exampleBase = models.FinancialBase{Revenue: 1200000, VariableCosts: 480000, FixedCosts: 600000}

func TestMatrixCenterEqualsBaseline(t *testing.T) {
	m, err := BuildMatrix(exampleBase, 20)
	if err != nil {
		t.Fatal(err)
	}
	if m.Center() != m.Baseline {
		t.Errorf("center %+v differs from baseline %+v", m.Center(), m.Baseline)
	}
	if m.Baseline.EBITDA != 120000 {
		t.Errorf("baseline EBITDA = %v, want 120000", m.Baseline.EBITDA)
	}
	if m.Baseline.NetProfit != derive.SimplifiedNetProfit(120000) {
		t.Errorf("baseline net profit = %v", m.Baseline.NetProfit)
	}
}

func TestPriceBeatsVolume(t *testing.T) {
	m, _ := BuildMatrix(exampleBase, 20)

	price := m.Cells[2][4]
	volume := m.Cells[4][2]
	if price.PriceStep != 0.2 || price.VolumeStep != 0 {
		t.Fatalf("unexpected steps for price cell: %+v", price)
	}

	tests := []struct {
		name string
		cell models.SensitivityCell
		rev  float64
		vc   float64
		ebit float64
	}{
		{"price +20%", price, 1440000, 480000, 360000},
		{"volume +20%", volume, 1440000, 576000, 264000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.cell.Revenue-tt.rev) > 1e-6 {
				t.Errorf("revenue = %v, want %v", tt.cell.Revenue, tt.rev)
			}
			if math.Abs(tt.cell.VariableCosts-tt.vc) > 1e-6 {
				t.Errorf("variable = %v, want %v", tt.cell.VariableCosts, tt.vc)
			}
			if math.Abs(tt.cell.EBITDA-tt.ebit) > 1e-6 {
				t.Errorf("EBITDA = %v, want %v", tt.cell.EBITDA, tt.ebit)
			}
		})
	}
	if price.EBITDA <= volume.EBITDA {
		t.Error("price leverage should exceed volume leverage")
	}
}

func TestMatrixSteps(t *testing.T) {
	m, _ := BuildMatrix(exampleBase, 10)
	want := [5]float64{-0.1, -0.05, 0, 0.05, 0.1}
	if m.PriceSteps != want || m.VolumeSteps != want {
		t.Errorf("steps = %v / %v, want %v", m.PriceSteps, m.VolumeSteps, want)
	}
	for _, r := range []float64{0, -5, 150, math.NaN(), math.Inf(1)} {
		if _, err := BuildMatrix(exampleBase, r); err != ErrInvalidRange {
			t.Errorf("range %v: err = %v, want ErrInvalidRange", r, err)
		}
	}
}

func TestZeroRevenueMatrixHasNoNaN(t *testing.T) {
	m, _ := BuildMatrix(models.FinancialBase{FixedCosts: 1000}, 20)
	for _, row := range m.Cells {
		for _, c := range row {
			if math.IsNaN(c.NetMargin) || math.IsInf(c.NetMargin, 0) {
				t.Fatalf("net margin not finite: %v", c.NetMargin)
			}
		}
	}
}

func TestSafetyMargin(t *testing.T) {
	r := SafetyMargin(exampleBase)
	if math.Abs(r.BreakevenRevenue-1000000) > 1e-6 {
		t.Errorf("breakeven = %v, want 1000000", r.BreakevenRevenue)
	}
	if math.Abs(r.SafetyMarginPercent-100.0/6) > 1e-9 {
		t.Errorf("safety margin = %v, want 16.67", r.SafetyMarginPercent)
	}

	empty := SafetyMargin(models.FinancialBase{FixedCosts: 5000})
	if empty.SafetyMarginPercent != 0 || empty.BreakevenRevenue != 0 {
		t.Errorf("zero revenue should report zeros, got %+v", empty)
	}
}

func TestSimulate(t *testing.T) {
	base := models.WhatIfBase{
		MonthlyRevenue:       100000,
		AverageTicket:        500,
		VariableCostRate:     0.4,
		MonthlyFixedCosts:    50000,
		MonthlyMarketing:     4000,
		NewCustomersPerMonth: 20,
	}

	t.Run("no levers", func(t *testing.T) {
		res := Simulate(base, models.WhatIfLevers{})
		if res.Simulated != res.Baseline {
			t.Errorf("simulated %+v differs from baseline %+v", res.Simulated, res.Baseline)
		}
		if res.Baseline.EBITDA != 10000 || res.Baseline.CAC != 200 {
			t.Errorf("baseline = %+v", res.Baseline)
		}
		if res.EBITDAChange != 0 {
			t.Errorf("change = %v, want 0", res.EBITDAChange)
		}
	})

	t.Run("all levers", func(t *testing.T) {
		res := Simulate(base, models.WhatIfLevers{
			TicketPriceDelta: 10,
			NewHires:         2,
			HireCost:         3000,
			MarketingDelta:   1000,
		})
		s := res.Simulated
		if math.Abs(s.GrossRevenue-110000) > 1e-6 || math.Abs(s.AverageTicket-550) > 1e-9 {
			t.Errorf("revenue/ticket = %v/%v", s.GrossRevenue, s.AverageTicket)
		}
		if s.VariableCosts != 40000 {
			t.Errorf("variable costs = %v, want 40000", s.VariableCosts)
		}
		if s.FixedCosts != 57000 {
			t.Errorf("fixed costs = %v, want 57000", s.FixedCosts)
		}
		if math.Abs(s.EBITDA-13000) > 1e-6 {
			t.Errorf("EBITDA = %v, want 13000", s.EBITDA)
		}
		if s.CAC != 250 {
			t.Errorf("CAC = %v, want 250", s.CAC)
		}
		if math.Abs(res.EBITDAChange-30) > 1e-6 {
			t.Errorf("EBITDA change = %v, want 30", res.EBITDAChange)
		}
	})

	t.Run("no customers keeps CAC finite", func(t *testing.T) {
		b := base
		b.NewCustomersPerMonth = 0
		if got := Simulate(b, models.WhatIfLevers{}).Baseline.CAC; got != 0 {
			t.Errorf("CAC = %v, want 0", got)
		}
	})
}
