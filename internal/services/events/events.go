// Package events publishes plan change notifications.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bizplan/internal/models"
)

// Message is the wire form of a plan change
type Message struct {
	Kind       models.ChangeKind   `json:"kind"`
	Scenario   models.ScenarioName `json:"scenario,omitempty"`
	Month      models.Month        `json:"month,omitempty"`
	Target     string              `json:"target,omitempty"`
	Recomputed bool                `json:"recomputed"`
	At         time.Time           `json:"at"`
	Version    int                 `json:"version"`
}

// NewMessage wraps a change for publishing
func NewMessage(c models.Change) Message {
	return Message{
		Kind:       c.Kind,
		Scenario:   c.Scenario,
		Month:      c.Month,
		Target:     c.Target,
		Recomputed: c.Recomputed,
		At:         c.At,
		Version:    models.CurrentPlanVersion,
	}
}

// ToJSON encodes the message
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes a message
func MessageFromJSON(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}

// Publisher delivers plan changes to subscribers outside the process
type Publisher interface {
	Publish(ctx context.Context, c models.Change) error
	Close() error
}

// Noop drops every change
type Noop struct{}

func (Noop) Publish(context.Context, models.Change) error { return nil }
func (Noop) Close() error                                 { return nil }

// Recorder keeps published changes in memory
type Recorder struct {
	mu      sync.Mutex
	changes []models.Change
}

func (r *Recorder) Publish(_ context.Context, c models.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Changes returns a copy of everything published so far
func (r *Recorder) Changes() []models.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Change(nil), r.changes...)
}
