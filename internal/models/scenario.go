package models

// ScenarioName identifies one of the three fixed 2026 scenarios
type ScenarioName string

const (
	Optimistic   ScenarioName = "optimistic"
	Conservative ScenarioName = "conservative"
	Disruptive   ScenarioName = "disruptive"
)

// ScenarioNames lists the scenarios in display order
var ScenarioNames = []ScenarioName{Optimistic, Conservative, Disruptive}

// ParseScenario validates a scenario name
func ParseScenario(s string) (ScenarioName, bool) {
	for _, name := range ScenarioNames {
		if string(name) == s {
			return name, true
		}
	}
	return "", false
}

// InputMode selects how a scenario's drivers are produced
type InputMode string

const (
	InputGrowth InputMode = "growth"
	InputManual InputMode = "manual"
)

// Distribution selects how an annual amount is spread across months
type Distribution string

const (
	DistributeEven  Distribution = "even"
	DistributeShape Distribution = "shape"
)

// Driver names one standard driver series of a scenario projection
type Driver string

const (
	DriverGrossRevenue Driver = "gross_revenue"
	DriverTaxes        Driver = "taxes"
	DriverPayroll      Driver = "payroll"
	DriverRent         Driver = "rent"
	DriverOpex         Driver = "opex"
	DriverMarketing    Driver = "marketing"
	DriverAdmin        Driver = "admin"
	DriverCOGS         Driver = "cmv"
	DriverCommissions  Driver = "comissoes"
	DriverFreight      Driver = "fretes"
)

// Drivers lists every standard driver
var Drivers = []Driver{
	DriverGrossRevenue, DriverTaxes,
	DriverPayroll, DriverRent, DriverOpex, DriverMarketing, DriverAdmin,
	DriverCOGS, DriverCommissions, DriverFreight,
}

// FixedDrivers are the standard fixed-cost categories
var FixedDrivers = []Driver{DriverPayroll, DriverRent, DriverOpex, DriverMarketing, DriverAdmin}

// VariableDrivers are the standard variable-cost categories
var VariableDrivers = []Driver{DriverCOGS, DriverCommissions, DriverFreight}

// ParseDriver validates a driver name
func ParseDriver(s string) (Driver, bool) {
	for _, d := range Drivers {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// LineItemKind is the cost category that owns a custom line item
type LineItemKind string

const (
	LineItemFixed    LineItemKind = "fixed"
	LineItemVariable LineItemKind = "variable"
)

// ParseLineItemKind validates a line item kind
func ParseLineItemKind(s string) (LineItemKind, bool) {
	switch LineItemKind(s) {
	case LineItemFixed, LineItemVariable:
		return LineItemKind(s), true
	}
	return "", false
}

// CustomLineItem is a user-defined cost line. IDs are never reused.
type CustomLineItem struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Values MonthlySeries `json:"values"`
}

// ScenarioProjectionData holds every driver series of one scenario
type ScenarioProjectionData struct {
	InputMode    InputMode    `json:"input_mode"`
	Distribution Distribution `json:"distribution"`

	GrossRevenue MonthlySeries `json:"gross_revenue"`
	Taxes        MonthlySeries `json:"taxes"`

	Payroll   MonthlySeries `json:"payroll"`
	Rent      MonthlySeries `json:"rent"`
	Opex      MonthlySeries `json:"opex"`
	Marketing MonthlySeries `json:"marketing"`
	Admin     MonthlySeries `json:"admin"`

	COGS        MonthlySeries `json:"cmv"`
	Commissions MonthlySeries `json:"comissoes"`
	Freight     MonthlySeries `json:"fretes"`

	CustomFixed    []CustomLineItem `json:"custom_fixed"`
	CustomVariable []CustomLineItem `json:"custom_variable"`

	// Removed items are kept so they can be restored with the same ID
	RemovedCustomFixed    []CustomLineItem `json:"removed_custom_fixed"`
	RemovedCustomVariable []CustomLineItem `json:"removed_custom_variable"`
}

// NewScenarioProjectionData returns a projection with zeroed drivers
func NewScenarioProjectionData() ScenarioProjectionData {
	p := ScenarioProjectionData{
		InputMode:    InputGrowth,
		Distribution: DistributeShape,
	}
	for _, d := range Drivers {
		*p.Series(d) = ZeroSeries()
	}
	p.CustomFixed = []CustomLineItem{}
	p.CustomVariable = []CustomLineItem{}
	p.RemovedCustomFixed = []CustomLineItem{}
	p.RemovedCustomVariable = []CustomLineItem{}
	return p
}

// Series returns a pointer to the series backing driver d so callers can
// replace it wholesale. Returns nil for an unknown driver.
func (p *ScenarioProjectionData) Series(d Driver) *MonthlySeries {
	switch d {
	case DriverGrossRevenue:
		return &p.GrossRevenue
	case DriverTaxes:
		return &p.Taxes
	case DriverPayroll:
		return &p.Payroll
	case DriverRent:
		return &p.Rent
	case DriverOpex:
		return &p.Opex
	case DriverMarketing:
		return &p.Marketing
	case DriverAdmin:
		return &p.Admin
	case DriverCOGS:
		return &p.COGS
	case DriverCommissions:
		return &p.Commissions
	case DriverFreight:
		return &p.Freight
	}
	return nil
}

// Items returns the active custom items of the given kind
func (p *ScenarioProjectionData) Items(kind LineItemKind) *[]CustomLineItem {
	if kind == LineItemFixed {
		return &p.CustomFixed
	}
	return &p.CustomVariable
}

// RemovedItems returns the removed custom items of the given kind
func (p *ScenarioProjectionData) RemovedItems(kind LineItemKind) *[]CustomLineItem {
	if kind == LineItemFixed {
		return &p.RemovedCustomFixed
	}
	return &p.RemovedCustomVariable
}

// FindItem looks up an active custom item by ID in both categories
func (p *ScenarioProjectionData) FindItem(id string) (*CustomLineItem, LineItemKind, bool) {
	for _, kind := range []LineItemKind{LineItemFixed, LineItemVariable} {
		items := *p.Items(kind)
		for i := range items {
			if items[i].ID == id {
				return &items[i], kind, true
			}
		}
	}
	return nil, "", false
}

// Normalize fills missing series and slices after decoding
func (p *ScenarioProjectionData) Normalize() {
	if p.InputMode != InputManual {
		p.InputMode = InputGrowth
	}
	if p.Distribution != DistributeEven {
		p.Distribution = DistributeShape
	}
	for _, d := range Drivers {
		s := p.Series(d)
		if *s == nil {
			*s = ZeroSeries()
		} else {
			*s = s.Normalize()
		}
	}
	for _, list := range []*[]CustomLineItem{
		&p.CustomFixed, &p.CustomVariable, &p.RemovedCustomFixed, &p.RemovedCustomVariable,
	} {
		if *list == nil {
			*list = []CustomLineItem{}
		}
		for i := range *list {
			(*list)[i].Values = (*list)[i].Values.Normalize()
		}
	}
}

// ScenarioData is one scenario's inputs plus its cached projected outputs.
// The three projected series are only ever replaced together.
type ScenarioData struct {
	GrowthPercentage float64                `json:"growth_percentage"`
	Projection       ScenarioProjectionData `json:"projection"`

	ReceitaProjetada   MonthlySeries `json:"receita_projetada"`
	CustosProjetados   MonthlySeries `json:"custos_projetados"`
	DespesasProjetadas MonthlySeries `json:"despesas_projetadas"`
}

// NewScenarioData returns an empty scenario with zeroed outputs
func NewScenarioData() *ScenarioData {
	return &ScenarioData{
		Projection:         NewScenarioProjectionData(),
		ReceitaProjetada:   ZeroSeries(),
		CustosProjetados:   ZeroSeries(),
		DespesasProjetadas: ZeroSeries(),
	}
}

// Scenarios2026 always holds exactly the three named scenarios
type Scenarios2026 map[ScenarioName]*ScenarioData

// NewScenarios2026 returns the three scenarios with empty projections
func NewScenarios2026() Scenarios2026 {
	s := make(Scenarios2026, len(ScenarioNames))
	for _, name := range ScenarioNames {
		s[name] = NewScenarioData()
	}
	return s
}

// Normalize restores any missing scenario and drops unknown keys
func (s Scenarios2026) Normalize() Scenarios2026 {
	out := make(Scenarios2026, len(ScenarioNames))
	for _, name := range ScenarioNames {
		sd, ok := s[name]
		if !ok || sd == nil {
			out[name] = NewScenarioData()
			continue
		}
		sd.Projection.Normalize()
		sd.ReceitaProjetada = sd.ReceitaProjetada.Normalize()
		sd.CustosProjetados = sd.CustosProjetados.Normalize()
		sd.DespesasProjetadas = sd.DespesasProjetadas.Normalize()
		out[name] = sd
	}
	return out
}
