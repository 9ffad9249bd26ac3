package plan

import (
	"errors"
	"math"
	"testing"
	"time"

	"bizplan/internal/models"
	"bizplan/internal/services/derive"
	"bizplan/internal/services/projection"
)

func newDoc(t *testing.T) *models.PlanDocument {
	t.Helper()
	doc := models.NewPlanDocument()
	doc.Baseline2025[models.DriverGrossRevenue] = models.UniformSeries(100000)
	doc.Baseline2025[models.DriverCOGS] = models.UniformSeries(40000)
	doc.Baseline2025[models.DriverPayroll] = models.UniformSeries(50000)
	return doc
}

// assertConsistent checks every scenario's cache against a fresh computation
func assertConsistent(t *testing.T, doc *models.PlanDocument) {
	t.Helper()
	for _, name := range models.ScenarioNames {
		sd, _ := doc.Scenario(name)
		if err := projection.Verify(sd); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestDriverReducersKeepTotalsConsistent(t *testing.T) {
	doc := newDoc(t)
	c := models.Conservative
	var fixedID string

	steps := []struct {
		name string
		run  func() (models.Change, error)
	}{
		{"growth", func() (models.Change, error) { return SetGrowth(doc, c, 10) }},
		{"driver edit", func() (models.Change, error) {
			return SetDriverValue(doc, c, models.DriverRent, models.Mar, models.Float(9000))
		}},
		{"add fixed item", func() (models.Change, error) {
			ch, err := AddLineItem(doc, c, models.LineItemFixed, "Software", models.UniformSeries(1500))
			fixedID = ch.Target
			return ch, err
		}},
		{"add variable item", func() (models.Change, error) {
			return AddLineItem(doc, c, models.LineItemVariable, "Packaging", models.UniformSeries(300))
		}},
		{"update item", func() (models.Change, error) {
			patch := LineItemPatch{Values: models.MonthlySeries{models.Jul: models.Float(2500)}}
			return UpdateLineItem(doc, c, models.LineItemFixed, fixedID, patch)
		}},
		{"remove item", func() (models.Change, error) {
			return RemoveLineItem(doc, c, models.LineItemFixed, fixedID)
		}},
		{"restore item", func() (models.Change, error) {
			return RestoreLineItem(doc, c, models.LineItemFixed, fixedID)
		}},
		{"manual growth", func() (models.Change, error) { return SetGrowth(doc, c, 25) }},
		{"back to growth mode", func() (models.Change, error) {
			return SetInputMode(doc, c, models.InputGrowth, models.DistributeEven)
		}},
		{"baseline edit", func() (models.Change, error) {
			return SetBaselineValue(doc, models.DriverCOGS, models.Jan, models.Float(45000))
		}},
		{"copy", func() (models.Change, error) { return CopyScenario(doc, c, models.Optimistic) }},
	}

	for _, s := range steps {
		ch, err := s.run()
		if err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if !ch.Recomputed {
			t.Errorf("%s: change not marked as recomputed", s.name)
		}
		assertConsistent(t, doc)
	}
}

func TestSetGrowth(t *testing.T) {
	doc := newDoc(t)
	if _, err := SetGrowth(doc, models.Optimistic, 20); err != nil {
		t.Fatal(err)
	}
	sd, _ := doc.Scenario(models.Optimistic)
	if got := derive.Sum(sd.ReceitaProjetada); math.Abs(got-1440000) > 1e-6 {
		t.Errorf("revenue = %v, want 1440000", got)
	}

	if _, err := SetGrowth(doc, models.Optimistic, -100); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("err = %v, want ErrInvalidValue", err)
	}
	if _, err := SetGrowth(doc, "pessimistic", 5); !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("err = %v, want ErrUnknownScenario", err)
	}
}

func TestManualEditNeverTouchesGrowth(t *testing.T) {
	doc := newDoc(t)
	c := models.Conservative
	SetGrowth(doc, c, 15)

	if _, err := SetDriverValue(doc, c, models.DriverGrossRevenue, models.Feb, models.Float(1)); err != nil {
		t.Fatal(err)
	}
	sd, _ := doc.Scenario(c)
	if sd.GrowthPercentage != 15 {
		t.Errorf("growth = %v, want 15", sd.GrowthPercentage)
	}
	if sd.Projection.InputMode != models.InputManual {
		t.Errorf("mode = %s, want manual", sd.Projection.InputMode)
	}
	if sd.ReceitaProjetada.Value(models.Feb) != 1 {
		t.Errorf("feb revenue = %v, want 1", sd.ReceitaProjetada.Value(models.Feb))
	}

	// a growth change in manual mode keeps the edit
	SetGrowth(doc, c, 30)
	if sd.ReceitaProjetada.Value(models.Feb) != 1 {
		t.Error("manual edit overwritten by growth change")
	}
}

func TestDriverValueErrors(t *testing.T) {
	doc := newDoc(t)
	c := models.Conservative
	tests := []struct {
		name   string
		driver models.Driver
		month  models.Month
		value  *float64
		want   error
	}{
		{"unknown driver", "royalties", models.Jan, models.Float(1), ErrUnknownDriver},
		{"unknown month", models.DriverRent, "13", models.Float(1), ErrUnknownMonth},
		{"not a number", models.DriverRent, models.Jan, models.Float(math.NaN()), ErrInvalidValue},
		{"infinite", models.DriverRent, models.Jan, models.Float(math.Inf(1)), ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SetDriverValue(doc, c, tt.driver, tt.month, tt.value); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLineItemLifecycle(t *testing.T) {
	doc := newDoc(t)
	c := models.Conservative

	ch, err := AddLineItem(doc, c, models.LineItemFixed, "  Software ", models.UniformSeries(1000))
	if err != nil {
		t.Fatal(err)
	}
	id := ch.Target
	sd, _ := doc.Scenario(c)
	if len(sd.Projection.CustomFixed) != 1 || sd.Projection.CustomFixed[0].Name != "Software" {
		t.Fatalf("unexpected items %+v", sd.Projection.CustomFixed)
	}
	if sd.DespesasProjetadas.Value(models.Jan) != 1000 {
		t.Errorf("fixed total = %v, want 1000", sd.DespesasProjetadas.Value(models.Jan))
	}

	second, _ := AddLineItem(doc, c, models.LineItemFixed, "Insurance", nil)
	if second.Target == id {
		t.Error("line item ids must be unique")
	}

	if _, err := RemoveLineItem(doc, c, models.LineItemFixed, id); err != nil {
		t.Fatal(err)
	}
	if sd.DespesasProjetadas.Value(models.Jan) != 0 {
		t.Error("removed item should not count towards totals")
	}
	if len(sd.Projection.RemovedCustomFixed) != 1 {
		t.Fatal("removed item should be kept for restore")
	}
	if _, err := RemoveLineItem(doc, c, models.LineItemFixed, id); !errors.Is(err, ErrLineItemNotFound) {
		t.Errorf("second remove err = %v", err)
	}

	if _, err := RestoreLineItem(doc, c, models.LineItemFixed, id); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := sd.Projection.FindItem(id); !ok {
		t.Error("restored item should keep its id")
	}

	name := "SaaS"
	if _, err := UpdateLineItem(doc, c, models.LineItemFixed, id, LineItemPatch{Name: &name}); err != nil {
		t.Fatal(err)
	}
	item, _, _ := sd.Projection.FindItem(id)
	if item.Name != "SaaS" {
		t.Errorf("name = %q", item.Name)
	}

	if _, err := AddLineItem(doc, c, models.LineItemFixed, " ", nil); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("blank name err = %v", err)
	}
	if _, err := AddLineItem(doc, c, "capex", "x", nil); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("bad kind err = %v", err)
	}
}

func TestCopyScenarioIsDeep(t *testing.T) {
	doc := newDoc(t)
	AddLineItem(doc, models.Conservative, models.LineItemVariable, "Packaging", models.UniformSeries(100))
	SetGrowth(doc, models.Conservative, 5)

	if _, err := CopyScenario(doc, models.Conservative, models.Disruptive); err != nil {
		t.Fatal(err)
	}
	src, _ := doc.Scenario(models.Conservative)
	dst, _ := doc.Scenario(models.Disruptive)
	if dst.GrowthPercentage != 5 || len(dst.Projection.CustomVariable) != 1 {
		t.Fatalf("copy incomplete: %+v", dst)
	}

	SetDriverValue(doc, models.Disruptive, models.DriverGrossRevenue, models.Jan, models.Float(1))
	dst.Projection.CustomVariable[0].Values.Set(models.Jan, 999)
	if src.Projection.GrossRevenue.Value(models.Jan) == 1 || src.Projection.CustomVariable[0].Values.Value(models.Jan) == 999 {
		t.Error("copy shares state with its source")
	}

	if _, err := CopyScenario(doc, models.Optimistic, models.Optimistic); !errors.Is(err, ErrSameScenario) {
		t.Errorf("err = %v, want ErrSameScenario", err)
	}
}

func TestSetActual(t *testing.T) {
	doc := newDoc(t)
	ch, _ := AddLineItem(doc, models.Conservative, models.LineItemFixed, "Software", nil)
	id := ch.Target

	if _, err := SetActual(doc, models.Mar, ActualRevenue, models.Float(90000)); err != nil {
		t.Fatal(err)
	}
	if _, err := SetActual(doc, models.Mar, models.CustomKey(id), models.Float(800)); err != nil {
		t.Fatal(err)
	}
	entry := doc.Tracking2026.Entry(models.Mar)
	if v, ok := entry.CustomValue(id); !ok || v != 800 {
		t.Errorf("custom value = %v, %v", v, ok)
	}

	if _, err := SetActual(doc, models.Mar, models.CustomKey("nope"), models.Float(1)); !errors.Is(err, ErrLineItemNotFound) {
		t.Errorf("unknown item err = %v", err)
	}
	if _, err := SetActual(doc, models.Mar, "profit", models.Float(1)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("unknown key err = %v", err)
	}

	// clearing every value drops the month
	SetActual(doc, models.Mar, ActualRevenue, nil)
	SetActual(doc, models.Mar, models.CustomKey(id), nil)
	if doc.Tracking2026.Entry(models.Mar) != nil {
		t.Error("empty month should be removed")
	}

	SetActual(doc, models.Apr, ActualFixedCosts, models.Float(0))
	if e := doc.Tracking2026.Entry(models.Apr); e == nil || e.FixedCosts == nil || *e.FixedCosts != 0 {
		t.Error("a reported zero must be kept")
	}
	ClearActual(doc, models.Apr)
	if doc.Tracking2026.Entry(models.Apr) != nil {
		t.Error("ClearActual should drop the month")
	}
}

func TestGenerateStatements(t *testing.T) {
	doc := newDoc(t)
	SetGrowth(doc, models.Conservative, 0)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	if _, err := GenerateStatements(doc, models.Conservative, now); err != nil {
		t.Fatal(err)
	}
	fp := doc.FinancialPlan2026[models.Conservative]
	if fp == nil || !fp.Generated || !fp.GeneratedAt.Equal(now) {
		t.Fatalf("statements not stored: %+v", fp)
	}
	if _, err := GenerateStatements(doc, "x", now); !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("err = %v", err)
	}
}

func TestPricingItems(t *testing.T) {
	doc := newDoc(t)
	now := time.Now()
	in := models.PricingInputs{DirectCost: 60, TaxRate: 10, CommissionRate: 5, CardFeeRate: 3, FixedCostRate: 12, TargetMargin: 10}

	ch, err := SavePricingItem(doc, "Consulting hour", in, now)
	if err != nil {
		t.Fatal(err)
	}
	if doc.PricingItems[0].Result.FinalPrice != 100 {
		t.Errorf("price = %v, want 100", doc.PricingItems[0].Result.FinalPrice)
	}

	in.DirectCost = 30
	if _, err := UpdatePricingItem(doc, ch.Target, "", in, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	item := doc.PricingItems[0]
	if item.Name != "Consulting hour" || item.Result.FinalPrice != 50 || !item.UpdatedAt.After(item.CreatedAt) {
		t.Errorf("unexpected update %+v", item)
	}

	if _, err := DeletePricingItem(doc, ch.Target); err != nil {
		t.Fatal(err)
	}
	if len(doc.PricingItems) != 0 {
		t.Error("item not deleted")
	}
	if _, err := DeletePricingItem(doc, ch.Target); !errors.Is(err, ErrPricingItemNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestMergeSuggestions(t *testing.T) {
	doc := newDoc(t)
	AddOKR(doc, "Grow revenue 20%", []string{"Close 10 new accounts"}, models.SourceUser)

	_, accepted := MergeSuggestions(doc, models.Suggestions{
		OKRs: []models.OKRSuggestion{
			{Objective: "grow revenue 20%"},
			{Objective: "Cut churn", KeyResults: []string{"Churn below 2%", " "}},
			{Objective: ""},
		},
		KPIs: []models.KPISuggestion{
			{Name: "CAC", Target: 200, Unit: "BRL", Frequency: "monthly"},
			{Name: "", Target: 1},
		},
		ActionPlanItems: []models.ActionSuggestion{{Title: "Hire SDR", Owner: "CEO"}},
	})

	if accepted != 3 {
		t.Errorf("accepted = %d, want 3", accepted)
	}
	if len(doc.OKRs) != 2 || len(doc.KPIs) != 1 || len(doc.ActionPlan) != 1 {
		t.Fatalf("okrs=%d kpis=%d actions=%d", len(doc.OKRs), len(doc.KPIs), len(doc.ActionPlan))
	}
	if doc.OKRs[1].Source != models.SourceAI || len(doc.OKRs[1].KeyResults) != 1 {
		t.Errorf("unexpected merged okr %+v", doc.OKRs[1])
	}
	if doc.ActionPlan[0].Status != StatusTodo {
		t.Errorf("status = %s", doc.ActionPlan[0].Status)
	}
}

func TestReplaceDocumentRecomputes(t *testing.T) {
	doc := newDoc(t)
	incoming := models.NewPlanDocument()
	sd, _ := incoming.Scenario(models.Optimistic)
	sd.Projection.GrossRevenue = models.UniformSeries(500)
	// stale cache in the incoming document
	sd.ReceitaProjetada = models.UniformSeries(1)

	if _, err := ReplaceDocument(doc, incoming); err != nil {
		t.Fatal(err)
	}
	got, _ := doc.Scenario(models.Optimistic)
	if got.ReceitaProjetada.Value(models.Jun) != 500 {
		t.Errorf("revenue = %v, want 500", got.ReceitaProjetada.Value(models.Jun))
	}
	assertConsistent(t, doc)
}
