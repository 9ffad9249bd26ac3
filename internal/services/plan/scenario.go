package plan

import (
	"strings"

	"github.com/google/uuid"

	"bizplan/internal/models"
	"bizplan/internal/services/projection"
)

// SetGrowth stores the growth percentage. In growth mode the drivers are
// rebuilt from the baseline; in manual mode they are left alone. Either way
// the cached outputs are recomputed.
func SetGrowth(doc *models.PlanDocument, name models.ScenarioName, pct float64) (models.Change, error) {
	sd, err := scenario(doc, name)
	if err != nil {
		return models.Change{}, err
	}
	if !finite(pct) || pct <= -100 {
		return models.Change{}, ErrInvalidValue
	}
	if sd.Projection.InputMode == models.InputGrowth {
		projection.ApplyGrowth(sd, doc.Baseline2025, pct)
	} else {
		sd.GrowthPercentage = pct
		projection.Recompute(sd)
	}
	return models.Change{Kind: models.ChangeGrowth, Scenario: name, Recomputed: true}, nil
}

// SetInputMode switches between growth and manual entry and sets how annual
// amounts are spread. Returning to growth mode rebuilds the drivers.
func SetInputMode(doc *models.PlanDocument, name models.ScenarioName, mode models.InputMode, dist models.Distribution) (models.Change, error) {
	sd, err := scenario(doc, name)
	if err != nil {
		return models.Change{}, err
	}
	if mode != models.InputGrowth && mode != models.InputManual {
		return models.Change{}, ErrInvalidValue
	}
	if dist == "" {
		dist = sd.Projection.Distribution
	}
	if dist != models.DistributeEven && dist != models.DistributeShape {
		return models.Change{}, ErrInvalidValue
	}

	sd.Projection.InputMode = mode
	sd.Projection.Distribution = dist
	if mode == models.InputGrowth {
		projection.ApplyGrowth(sd, doc.Baseline2025, sd.GrowthPercentage)
	} else {
		projection.Recompute(sd)
	}
	return models.Change{Kind: models.ChangeInputMode, Scenario: name, Target: string(mode), Recomputed: true}, nil
}

// SetDriverValue edits one month of one driver. The growth percentage is
// never touched; a scenario in growth mode drops to manual so the edit
// survives the next growth change.
func SetDriverValue(doc *models.PlanDocument, name models.ScenarioName, d models.Driver, m models.Month, v *float64) (models.Change, error) {
	sd, err := scenario(doc, name)
	if err != nil {
		return models.Change{}, err
	}
	series := sd.Projection.Series(d)
	if series == nil {
		return models.Change{}, ErrUnknownDriver
	}
	if !m.Valid() {
		return models.Change{}, ErrUnknownMonth
	}
	if err := checkValue(v); err != nil {
		return models.Change{}, err
	}

	next := series.Clone()
	if v == nil {
		next.Clear(m)
	} else {
		next.Set(m, *v)
	}
	*series = next
	sd.Projection.InputMode = models.InputManual
	projection.Recompute(sd)
	return models.Change{Kind: models.ChangeDriver, Scenario: name, Month: m, Target: string(d), Recomputed: true}, nil
}

func cloneItems(items []models.CustomLineItem) []models.CustomLineItem {
	out := make([]models.CustomLineItem, len(items))
	for i, item := range items {
		out[i] = models.CustomLineItem{ID: item.ID, Name: item.Name, Values: item.Values.Clone()}
	}
	return out
}

// CopyScenario overwrites the target scenario with a deep copy of the
// source's growth, drivers and custom items. Line item IDs are kept so
// tracked actuals stay attached.
func CopyScenario(doc *models.PlanDocument, from, to models.ScenarioName) (models.Change, error) {
	src, err := scenario(doc, from)
	if err != nil {
		return models.Change{}, err
	}
	dst, err := scenario(doc, to)
	if err != nil {
		return models.Change{}, err
	}
	if from == to {
		return models.Change{}, ErrSameScenario
	}

	p := src.Projection
	cp := models.ScenarioProjectionData{
		InputMode:             p.InputMode,
		Distribution:          p.Distribution,
		CustomFixed:           cloneItems(p.CustomFixed),
		CustomVariable:        cloneItems(p.CustomVariable),
		RemovedCustomFixed:    cloneItems(p.RemovedCustomFixed),
		RemovedCustomVariable: cloneItems(p.RemovedCustomVariable),
	}
	for _, d := range models.Drivers {
		*cp.Series(d) = p.Series(d).Clone()
	}
	dst.GrowthPercentage = src.GrowthPercentage
	dst.Projection = cp
	projection.Recompute(dst)
	return models.Change{Kind: models.ChangeCopyScenario, Scenario: to, Target: string(from), Recomputed: true}, nil
}

// LineItemPatch updates a custom line item. A nil Name keeps the current
// name; each month in Values is written, a nil value clears the month.
type LineItemPatch struct {
	Name   *string              `json:"name"`
	Values models.MonthlySeries `json:"values"`
}

// AddLineItem appends a custom line item with a fresh ID
func AddLineItem(doc *models.PlanDocument, name models.ScenarioName, kind models.LineItemKind, itemName string, values models.MonthlySeries) (models.Change, error) {
	sd, err := scenario(doc, name)
	if err != nil {
		return models.Change{}, err
	}
	if _, ok := models.ParseLineItemKind(string(kind)); !ok {
		return models.Change{}, ErrUnknownKind
	}
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return models.Change{}, ErrInvalidValue
	}
	if err := checkSeries(values); err != nil {
		return models.Change{}, err
	}
	if values == nil {
		values = models.ZeroSeries()
	}

	item := models.CustomLineItem{ID: uuid.New().String(), Name: itemName, Values: values.Normalize()}
	items := sd.Projection.Items(kind)
	*items = append(*items, item)
	projection.Recompute(sd)
	return models.Change{Kind: models.ChangeLineItemAdd, Scenario: name, Target: item.ID, Recomputed: true}, nil
}

// UpdateLineItem renames an item and writes the listed months
func UpdateLineItem(doc *models.PlanDocument, name models.ScenarioName, kind models.LineItemKind, id string, patch LineItemPatch) (models.Change, error) {
	sd, err := scenario(doc, name)
	if err != nil {
		return models.Change{}, err
	}
	if _, ok := models.ParseLineItemKind(string(kind)); !ok {
		return models.Change{}, ErrUnknownKind
	}
	items := *sd.Projection.Items(kind)
	idx := indexOf(items, id)
	if idx < 0 {
		return models.Change{}, ErrLineItemNotFound
	}
	if err := checkSeries(patch.Values); err != nil {
		return models.Change{}, err
	}

	item := &items[idx]
	if patch.Name != nil {
		n := strings.TrimSpace(*patch.Name)
		if n == "" {
			return models.Change{}, ErrInvalidValue
		}
		item.Name = n
	}
	if len(patch.Values) > 0 {
		next := item.Values.Clone()
		for m, v := range patch.Values {
			if v == nil {
				next.Clear(m)
			} else {
				next.Set(m, *v)
			}
		}
		item.Values = next
	}
	projection.Recompute(sd)
	return models.Change{Kind: models.ChangeLineItemUpdate, Scenario: name, Target: id, Recomputed: true}, nil
}

// RemoveLineItem moves an item to the removed list so it can be restored
func RemoveLineItem(doc *models.PlanDocument, name models.ScenarioName, kind models.LineItemKind, id string) (models.Change, error) {
	sd, err := scenario(doc, name)
	if err != nil {
		return models.Change{}, err
	}
	if _, ok := models.ParseLineItemKind(string(kind)); !ok {
		return models.Change{}, ErrUnknownKind
	}
	if !moveItem(sd.Projection.Items(kind), sd.Projection.RemovedItems(kind), id) {
		return models.Change{}, ErrLineItemNotFound
	}
	projection.Recompute(sd)
	return models.Change{Kind: models.ChangeLineItemRemove, Scenario: name, Target: id, Recomputed: true}, nil
}

// RestoreLineItem brings a removed item back with its original ID
func RestoreLineItem(doc *models.PlanDocument, name models.ScenarioName, kind models.LineItemKind, id string) (models.Change, error) {
	sd, err := scenario(doc, name)
	if err != nil {
		return models.Change{}, err
	}
	if _, ok := models.ParseLineItemKind(string(kind)); !ok {
		return models.Change{}, ErrUnknownKind
	}
	if !moveItem(sd.Projection.RemovedItems(kind), sd.Projection.Items(kind), id) {
		return models.Change{}, ErrLineItemNotFound
	}
	projection.Recompute(sd)
	return models.Change{Kind: models.ChangeLineItemRestore, Scenario: name, Target: id, Recomputed: true}, nil
}

func indexOf(items []models.CustomLineItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func moveItem(from, to *[]models.CustomLineItem, id string) bool {
	idx := indexOf(*from, id)
	if idx < 0 {
		return false
	}
	item := (*from)[idx]
	*from = append((*from)[:idx:idx], (*from)[idx+1:]...)
	*to = append(*to, item)
	return true
}
