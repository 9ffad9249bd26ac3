// Package statements expands a scenario projection into monthly DRE, DFC and
// BP tables.
package statements

import (
	"fmt"
	"math"
	"time"

	"bizplan/internal/models"
	"bizplan/internal/services/projection"
)

// ErrUnknownScenario is returned when generating for a scenario outside the three
var ErrUnknownScenario = models.ErrUnknownScenario

// DRE row keys
const (
	DREGrossRevenue      = "gross_revenue"
	DRETaxes             = "taxes"
	DRENetRevenue        = "net_revenue"
	DREVariableCosts     = "variable_costs"
	DREGrossProfit       = "gross_profit"
	DREPayroll           = "payroll"
	DREMarketing         = "marketing"
	DREOperatingExpenses = "operating_expenses"
	DREAdmin             = "admin"
	DRECustomFixed       = "custom_fixed"
	DREEBITDA            = "ebitda"
	DREDepreciation      = "depreciation"
	DREEBIT              = "ebit"
	DREFinancialExpenses = "financial_expenses"
	DREPreTaxProfit      = "pre_tax_profit"
	DREIncomeTax         = "income_tax"
	DRENetProfit         = "net_profit"
)

// DFC row keys
const (
	DFCOperating     = "operating"
	DFCInvesting     = "investing"
	DFCFinancing     = "financing"
	DFCNetVariation  = "net_variation"
	DFCBeginningCash = "beginning_cash"
	DFCEndingCash    = "ending_cash"
)

// BP row keys
const (
	BPCash                   = "cash"
	BPReceivables            = "receivables"
	BPInventory              = "inventory"
	BPCurrentAssets          = "current_assets"
	BPFixedAssets            = "fixed_assets"
	BPTotalAssets            = "total_assets"
	BPSuppliers              = "suppliers"
	BPTaxesPayable           = "taxes_payable"
	BPCurrentLiabilities     = "current_liabilities"
	BPLongTermDebt           = "long_term_debt"
	BPTotalLiabilities       = "total_liabilities"
	BPShareCapital           = "share_capital"
	BPRetainedEarnings       = "retained_earnings"
	BPTotalEquity            = "total_equity"
	BPTotalLiabilitiesEquity = "total_liabilities_equity"
)

type rowDef struct{ key, label string }

var dreRows = []rowDef{
	{DREGrossRevenue, "Receita bruta"},
	{DRETaxes, "(-) Impostos sobre vendas"},
	{DRENetRevenue, "Receita líquida"},
	{DREVariableCosts, "(-) Custos variáveis"},
	{DREGrossProfit, "Lucro bruto"},
	{DREPayroll, "(-) Folha de pagamento"},
	{DREMarketing, "(-) Marketing"},
	{DREOperatingExpenses, "(-) Despesas operacionais"},
	{DREAdmin, "(-) Despesas administrativas"},
	{DRECustomFixed, "(-) Outras despesas fixas"},
	{DREEBITDA, "EBITDA"},
	{DREDepreciation, "(-) Depreciação"},
	{DREEBIT, "EBIT"},
	{DREFinancialExpenses, "(-) Despesas financeiras"},
	{DREPreTaxProfit, "Lucro antes do IR"},
	{DREIncomeTax, "(-) IRPJ/CSLL"},
	{DRENetProfit, "Lucro líquido"},
}

var dfcRows = []rowDef{
	{DFCOperating, "Fluxo operacional"},
	{DFCInvesting, "Fluxo de investimento"},
	{DFCFinancing, "Fluxo de financiamento"},
	{DFCNetVariation, "Variação líquida de caixa"},
	{DFCBeginningCash, "Caixa inicial"},
	{DFCEndingCash, "Caixa final"},
}

var bpRows = []rowDef{
	{BPCash, "Caixa"},
	{BPReceivables, "Contas a receber"},
	{BPInventory, "Estoques"},
	{BPCurrentAssets, "Ativo circulante"},
	{BPFixedAssets, "Imobilizado"},
	{BPTotalAssets, "Ativo total"},
	{BPSuppliers, "Fornecedores"},
	{BPTaxesPayable, "Impostos a pagar"},
	{BPCurrentLiabilities, "Passivo circulante"},
	{BPLongTermDebt, "Empréstimos de longo prazo"},
	{BPTotalLiabilities, "Passivo total"},
	{BPShareCapital, "Capital social"},
	{BPRetainedEarnings, "Lucros acumulados"},
	{BPTotalEquity, "Patrimônio líquido"},
	{BPTotalLiabilitiesEquity, "Passivo + PL"},
}

// values is a scratch table of monthly figures keyed by row
type values map[string]*[12]float64

func (v values) row(key string) *[12]float64 {
	r, ok := v[key]
	if !ok {
		r = &[12]float64{}
		v[key] = r
	}
	return r
}

func build(kind models.StatementKind, mode models.AggregationMode, defs []rowDef, v values) models.Statement {
	st := models.Statement{Kind: kind, Mode: mode, Rows: make([]models.StatementRow, len(defs))}
	for i, d := range defs {
		st.Rows[i] = models.StatementRow{Key: d.key, Label: d.label, Values: *v.row(d.key)}
	}
	return st
}

// Empty returns zero-filled statements for a scenario that was never generated
func Empty() *models.FinancialPlan {
	return &models.FinancialPlan{
		DRE: build(models.StatementDRE, models.ModeFlow, dreRows, values{}),
		DFC: build(models.StatementDFC, models.ModeFlow, dfcRows, values{}),
		BP:  build(models.StatementBP, models.ModeStock, bpRows, values{}),
	}
}

// Lookup returns the stored statements of a scenario, or zero-filled ones when
// they have not been generated yet
func Lookup(doc *models.PlanDocument, scenario models.ScenarioName) *models.FinancialPlan {
	if fp, ok := doc.FinancialPlan2026[scenario]; ok && fp != nil && fp.Generated {
		return fp
	}
	return Empty()
}

// Generate computes the three statements of a scenario from its cached
// projection and the plan assumptions
func Generate(doc *models.PlanDocument, scenario models.ScenarioName, now time.Time) (*models.FinancialPlan, error) {
	sd, ok := doc.Scenario(scenario)
	if !ok {
		return nil, ErrUnknownScenario
	}
	a := doc.Assumptions
	p := &sd.Projection

	dre := values{}
	for i, m := range models.Months {
		gross := sd.ReceitaProjetada.Value(m)
		taxes := p.Taxes.Value(m)
		variable := sd.CustosProjetados.Value(m)

		net := gross - taxes
		grossProfit := net - variable
		ebitda := grossProfit - sd.DespesasProjetadas.Value(m)
		ebit := ebitda - a.DepreciationMonthly
		preTax := ebit - a.FinancialExpensesMonthly
		incomeTax := IncomeTax(preTax, a.IncomeTaxRate)

		dre.row(DREGrossRevenue)[i] = gross
		dre.row(DRETaxes)[i] = taxes
		dre.row(DRENetRevenue)[i] = net
		dre.row(DREVariableCosts)[i] = variable
		dre.row(DREGrossProfit)[i] = grossProfit
		dre.row(DREPayroll)[i] = p.Payroll.Value(m)
		dre.row(DREMarketing)[i] = p.Marketing.Value(m)
		dre.row(DREOperatingExpenses)[i] = p.Rent.Value(m) + p.Opex.Value(m)
		dre.row(DREAdmin)[i] = p.Admin.Value(m)
		dre.row(DRECustomFixed)[i] = projection.CustomTotal(p, models.LineItemFixed, m)
		dre.row(DREEBITDA)[i] = ebitda
		dre.row(DREDepreciation)[i] = a.DepreciationMonthly
		dre.row(DREEBIT)[i] = ebit
		dre.row(DREFinancialExpenses)[i] = a.FinancialExpensesMonthly
		dre.row(DREPreTaxProfit)[i] = preTax
		dre.row(DREIncomeTax)[i] = incomeTax
		dre.row(DRENetProfit)[i] = preTax - incomeTax
	}

	dfc, bp := values{}, values{}
	var prevWorkingCapital float64
	cash := a.OpeningCash
	fixedAssets := a.OpeningFixedAssets
	debt := a.OpeningDebt
	retained := a.OpeningRetainedEarnings

	for i, m := range models.Months {
		receivables := dre.row(DREGrossRevenue)[i] * a.ReceivableDays / 30
		inventory := dre.row(DREVariableCosts)[i] * a.InventoryDays / 30
		suppliers := dre.row(DREVariableCosts)[i] * a.PayableDays / 30
		taxesPayable := dre.row(DRETaxes)[i] + dre.row(DREIncomeTax)[i]

		workingCapital := receivables + inventory - suppliers - taxesPayable
		netProfit := dre.row(DRENetProfit)[i]
		capex := a.Capex.Value(m)
		dividends := a.Dividends.Value(m)
		borrowed := a.NewDebt.Value(m) - a.DebtRepayment.Value(m)

		operating := netProfit + a.DepreciationMonthly - (workingCapital - prevWorkingCapital)
		investing := -capex
		financing := borrowed - dividends
		variation := operating + investing + financing
		prevWorkingCapital = workingCapital

		dfc.row(DFCOperating)[i] = operating
		dfc.row(DFCInvesting)[i] = investing
		dfc.row(DFCFinancing)[i] = financing
		dfc.row(DFCNetVariation)[i] = variation
		dfc.row(DFCBeginningCash)[i] = cash
		cash += variation
		dfc.row(DFCEndingCash)[i] = cash

		fixedAssets += capex - a.DepreciationMonthly
		debt += borrowed
		retained += netProfit - dividends

		currentAssets := cash + receivables + inventory
		currentLiabilities := suppliers + taxesPayable
		totalLiabilities := currentLiabilities + debt
		equity := a.ShareCapital + retained

		bp.row(BPCash)[i] = cash
		bp.row(BPReceivables)[i] = receivables
		bp.row(BPInventory)[i] = inventory
		bp.row(BPCurrentAssets)[i] = currentAssets
		bp.row(BPFixedAssets)[i] = fixedAssets
		bp.row(BPTotalAssets)[i] = currentAssets + fixedAssets
		bp.row(BPSuppliers)[i] = suppliers
		bp.row(BPTaxesPayable)[i] = taxesPayable
		bp.row(BPCurrentLiabilities)[i] = currentLiabilities
		bp.row(BPLongTermDebt)[i] = debt
		bp.row(BPTotalLiabilities)[i] = totalLiabilities
		bp.row(BPShareCapital)[i] = a.ShareCapital
		bp.row(BPRetainedEarnings)[i] = retained
		bp.row(BPTotalEquity)[i] = equity
		bp.row(BPTotalLiabilitiesEquity)[i] = totalLiabilities + equity
	}

	at := now.UTC()
	return &models.FinancialPlan{
		Generated:   true,
		GeneratedAt: &at,
		DRE:         build(models.StatementDRE, models.ModeFlow, dreRows, dre),
		DFC:         build(models.StatementDFC, models.ModeFlow, dfcRows, dfc),
		BP:          build(models.StatementBP, models.ModeStock, bpRows, bp),
	}, nil
}

// IncomeTax applies the IRPJ/CSLL approximation (rate in percent) to a
// positive pre-tax profit. Losses pay nothing.
func IncomeTax(preTax, rate float64) float64 {
	if preTax <= 0 {
		return 0
	}
	return preTax * rate / 100
}

// Imbalance returns the largest monthly gap between total assets and total
// liabilities plus equity
func Imbalance(fp *models.FinancialPlan) float64 {
	var worst float64
	for _, m := range models.Months {
		gap := math.Abs(fp.BP.Value(BPTotalAssets, m) - fp.BP.Value(BPTotalLiabilitiesEquity, m))
		worst = math.Max(worst, gap)
	}
	return worst
}

// OpeningImbalance reports when the opening balance sheet implied by the
// assumptions does not balance
func OpeningImbalance(a models.StatementAssumptions) error {
	assets := a.OpeningCash + a.OpeningFixedAssets
	claims := a.OpeningDebt + a.ShareCapital + a.OpeningRetainedEarnings
	if math.Abs(assets-claims) > 0.005 {
		return fmt.Errorf("opening balance off by %.2f (assets %.2f, liabilities and equity %.2f)",
			assets-claims, assets, claims)
	}
	return nil
}
