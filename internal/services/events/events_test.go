package events

import (
	"context"
	"testing"
	"time"

	"bizplan/internal/models"
)

func TestMessageRoundtrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	change := models.Change{
		Kind:       models.ChangeDriver,
		Scenario:   models.Optimistic,
		Month:      models.Mar,
		Target:     "cmv",
		Recomputed: true,
		At:         at,
	}

	body, err := NewMessage(change).ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := MessageFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != change.Kind || got.Scenario != change.Scenario || got.Month != change.Month || !got.At.Equal(at) {
		t.Errorf("message = %+v", got)
	}
	if got.Version != models.CurrentPlanVersion {
		t.Errorf("version = %d", got.Version)
	}
}

func TestPublishers(t *testing.T) {
	ctx := context.Background()
	if err := (Noop{}).Publish(ctx, models.Change{Kind: models.ChangeGoals}); err != nil {
		t.Errorf("noop publish: %v", err)
	}

	var _ Publisher = Noop{}
	var _ Publisher = (*Recorder)(nil)
	var _ Publisher = (*AMQPPublisher)(nil)

	rec := &Recorder{}
	rec.Publish(ctx, models.Change{Kind: models.ChangeGoals})
	rec.Publish(ctx, models.Change{Kind: models.ChangeProfile})
	changes := rec.Changes()
	if len(changes) != 2 || changes[1].Kind != models.ChangeProfile {
		t.Errorf("changes = %+v", changes)
	}
}
