package plan

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"bizplan/internal/models"
	"bizplan/internal/services/pricing"
	"bizplan/internal/services/statements"
)

// GenerateStatements builds and stores the DRE, DFC and BP of a scenario
func GenerateStatements(doc *models.PlanDocument, name models.ScenarioName, now time.Time) (models.Change, error) {
	fp, err := statements.Generate(doc, name, now)
	if err != nil {
		return models.Change{}, err
	}
	doc.FinancialPlan2026[name] = fp
	return models.Change{Kind: models.ChangeStatements, Scenario: name}, nil
}

// SavePricingItem calculates and stores a new pricing snapshot
func SavePricingItem(doc *models.PlanDocument, name string, in models.PricingInputs, now time.Time) (models.Change, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Change{}, ErrInvalidValue
	}
	if err := pricing.Validate(in); err != nil {
		return models.Change{}, err
	}
	item := models.PricingItem{
		ID:        uuid.New().String(),
		Name:      name,
		Inputs:    in,
		Result:    pricing.Calculate(in),
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.PricingItems = append(doc.PricingItems, item)
	return models.Change{Kind: models.ChangePricingSave, Target: item.ID}, nil
}

// UpdatePricingItem recalculates a saved snapshot with new inputs
func UpdatePricingItem(doc *models.PlanDocument, id, name string, in models.PricingInputs, now time.Time) (models.Change, error) {
	for i := range doc.PricingItems {
		item := &doc.PricingItems[i]
		if item.ID != id {
			continue
		}
		if err := pricing.Validate(in); err != nil {
			return models.Change{}, err
		}
		if n := strings.TrimSpace(name); n != "" {
			item.Name = n
		}
		item.Inputs = in
		item.Result = pricing.Calculate(in)
		item.UpdatedAt = now
		return models.Change{Kind: models.ChangePricingUpdate, Target: id}, nil
	}
	return models.Change{}, ErrPricingItemNotFound
}

// DeletePricingItem removes a saved snapshot
func DeletePricingItem(doc *models.PlanDocument, id string) (models.Change, error) {
	for i, item := range doc.PricingItems {
		if item.ID == id {
			doc.PricingItems = append(doc.PricingItems[:i:i], doc.PricingItems[i+1:]...)
			return models.Change{Kind: models.ChangePricingDelete, Target: id}, nil
		}
	}
	return models.Change{}, ErrPricingItemNotFound
}
