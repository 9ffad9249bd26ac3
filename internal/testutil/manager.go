package testutil

import (
	"context"
	"testing"
	"time"

	"bizplan/internal/log"
	"bizplan/internal/models"
	"bizplan/internal/services/events"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
)

// NewManager opens a plan manager over an in-memory backend. Changes are
// recorded on the returned recorder; the manager is closed with the test.
func NewManager(t *testing.T) (*planstore.Manager, *events.Recorder) {
	t.Helper()

	rec := &events.Recorder{}
	m, err := planstore.Open(context.Background(), planstore.NewMemory(), planstore.ManagerOptions{
		Publisher: rec,
		Logger:    log.Discard(),
	})
	if err != nil {
		t.Fatalf("open manager: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.Close(ctx)
	})
	return m, rec
}

// SeedPlan applies reducers that give every scenario a baseline to grow from:
// flat 2025 revenue of 100000 with 40000 variable and 30000 fixed costs a month.
func SeedPlan(t *testing.T, m *planstore.Manager) {
	t.Helper()

	seed := map[models.Driver]float64{
		models.DriverGrossRevenue: 100000,
		models.DriverCOGS:         40000,
		models.DriverPayroll:      20000,
		models.DriverRent:         10000,
	}
	_, err := m.Apply(context.Background(), func(doc *models.PlanDocument) (models.Change, error) {
		for d, v := range seed {
			for _, month := range models.Months {
				if _, err := plan.SetBaselineValue(doc, d, month, models.Float(v)); err != nil {
					return models.Change{}, err
				}
			}
		}
		return models.Change{Kind: models.ChangeBaseline}, nil
	})
	if err != nil {
		t.Fatalf("seed plan: %v", err)
	}
}
