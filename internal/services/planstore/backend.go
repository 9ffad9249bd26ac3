// Package planstore persists the plan document and keeps the in-memory
// copy the rest of the application edits.
package planstore

import (
	"context"
	"errors"
	"sync"
)

// DefaultDocumentID keys the single plan document in shared stores
const DefaultDocumentID = "default"

// ErrNotFound is returned by Load when no plan has been saved yet
var ErrNotFound = errors.New("plan document not found")

// Backend stores the serialized plan document as a whole
type Backend interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// Memory keeps the document in process, for tests and dry runs
type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int
	fail  error
}

// NewMemory returns an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *Memory) Close() error { return nil }

// FailWith makes subsequent saves return err; nil restores normal behavior
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Saves counts successful saves
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
