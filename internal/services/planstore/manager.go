package planstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bizplan/internal/log"
	"bizplan/internal/models"
	"bizplan/internal/services/events"
	"bizplan/internal/services/plan"
)

const (
	saveTimeout     = 30 * time.Second
	defaultBackoff  = time.Second
	maxRetryBackoff = time.Minute
)

// Status reports how far persistence lags behind the in-memory plan
type Status struct {
	Backend     string     `json:"backend"`
	Pending     bool       `json:"pending"`
	Saves       int        `json:"saves"`
	LastSavedAt *time.Time `json:"last_saved_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ManagerOptions are the optional collaborators of a Manager
type ManagerOptions struct {
	Publisher events.Publisher
	Logger    *log.Logger
	Now       func() time.Time
	// RetryBackoff is the first wait before a failed save is retried. It
	// doubles on each further failure up to a minute.
	RetryBackoff time.Duration
}

// Manager owns the plan document. Reducers run on a copy that replaces the
// current document only when they succeed, so readers never observe a
// half-applied change. Saves happen in the background; a burst of edits
// collapses into one write of the latest snapshot.
type Manager struct {
	backend   Backend
	publisher events.Publisher
	logger    *log.Logger
	now       func() time.Time
	minRetry  time.Duration

	mu  sync.RWMutex
	doc *models.PlanDocument

	// writeMu serializes backend writes; stateMu guards the fields below it
	writeMu   sync.Mutex
	stateMu   sync.Mutex
	pending   []byte
	lastErr   error
	lastSaved time.Time
	saves     int
	backoff   time.Duration
	retry     *time.Timer

	signal chan struct{}
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// Open loads the plan from backend, or starts an empty one when none has
// been saved, and starts the background saver
func Open(ctx context.Context, backend Backend, opts ManagerOptions) (*Manager, error) {
	m := &Manager{
		backend:   backend,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
		minRetry:  opts.RetryBackoff,
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
	if m.publisher == nil {
		m.publisher = events.Noop{}
	}
	if m.logger == nil {
		m.logger = log.Discard()
	}
	m.logger = m.logger.WithComponent(log.ComponentStore).With(log.FieldBackend, backend.Name())
	if m.now == nil {
		m.now = time.Now
	}
	if m.minRetry <= 0 {
		m.minRetry = defaultBackoff
	}

	data, err := backend.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		m.doc = models.NewPlanDocument()
		m.logger.Info("no saved plan, starting empty")
	case err != nil:
		return nil, fmt.Errorf("load plan: %w", err)
	default:
		doc, err := models.DecodePlan(data)
		if err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
		m.doc = doc
	}
	// cached projections are rebuilt, never trusted
	plan.RecomputeAll(m.doc)

	go m.saver()
	return m, nil
}

// Backend returns the store name
func (m *Manager) Backend() string {
	return m.backend.Name()
}

// Snapshot returns a deep copy of the current plan
func (m *Manager) Snapshot() (*models.PlanDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}

// View runs fn against the current plan under the read lock. fn must not
// retain or modify the document.
func (m *Manager) View(fn func(doc *models.PlanDocument) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.doc)
}

// Apply runs a reducer and, when it succeeds, makes its result current,
// queues a save and publishes the change
func (m *Manager) Apply(ctx context.Context, r plan.Reducer) (models.Change, error) {
	m.mu.Lock()
	next, err := m.doc.Clone()
	if err != nil {
		m.mu.Unlock()
		return models.Change{}, fmt.Errorf("clone plan: %w", err)
	}
	change, err := r(next)
	if err != nil {
		m.mu.Unlock()
		return models.Change{}, err
	}
	now := m.now().UTC()
	change.At = now
	next.UpdatedAt = now
	data, err := json.Marshal(next)
	if err != nil {
		m.mu.Unlock()
		return models.Change{}, fmt.Errorf("encode plan: %w", err)
	}
	m.doc = next
	// queued before the lock is released so snapshots queue in apply order
	m.setPending(data)
	m.mu.Unlock()

	m.wake()
	if err := m.publisher.Publish(ctx, change); err != nil {
		m.logger.WarnContext(ctx, "publish change failed", log.FieldChange, change.Kind, log.FieldError, err)
	}
	m.logger.DebugContext(ctx, "applied change",
		log.FieldChange, change.Kind,
		log.FieldScenario, change.Scenario,
		log.FieldMonth, change.Month)
	return change, nil
}

func (m *Manager) setPending(data []byte) {
	m.stateMu.Lock()
	m.pending = data
	m.stateMu.Unlock()
}

func (m *Manager) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *Manager) saver() {
	defer close(m.exited)
	for {
		select {
		case <-m.signal:
			ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			m.saveLatest(ctx)
			cancel()
		case <-m.done:
			return
		}
	}
}

// saveLatest writes the newest queued snapshot. A failed snapshot stays
// queued unless a newer one arrived meanwhile, and the saver tries again
// after a growing backoff.
func (m *Manager) saveLatest(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.stateMu.Lock()
	data := m.pending
	m.pending = nil
	m.stateMu.Unlock()
	if data == nil {
		m.stateMu.Lock()
		defer m.stateMu.Unlock()
		return m.lastErr
	}

	err := m.backend.Save(ctx, data)

	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.lastErr = err
	if err != nil {
		if m.pending == nil {
			m.pending = data
		}
		m.scheduleRetry()
		m.logger.Error("save plan failed", log.FieldOperation, log.OpSave, log.FieldError, err, "retry_in", m.backoff)
		return err
	}
	m.backoff = 0
	m.lastSaved = m.now().UTC()
	m.saves++
	return nil
}

// scheduleRetry arms the retry timer. Callers hold stateMu.
func (m *Manager) scheduleRetry() {
	select {
	case <-m.done:
		return
	default:
	}
	if m.backoff == 0 {
		m.backoff = m.minRetry
	} else {
		m.backoff = min(2*m.backoff, maxRetryBackoff)
	}
	if m.retry != nil {
		m.retry.Stop()
	}
	m.retry = time.AfterFunc(m.backoff, m.wake)
}

// Flush writes any queued snapshot now and returns the outcome of the
// latest save attempt
func (m *Manager) Flush(ctx context.Context) error {
	return m.saveLatest(ctx)
}

// Status reports the persistence state
func (m *Manager) Status() Status {
	m.mu.RLock()
	updated := m.doc.UpdatedAt
	m.mu.RUnlock()

	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	st := Status{
		Backend:   m.backend.Name(),
		Pending:   m.pending != nil,
		Saves:     m.saves,
		UpdatedAt: updated,
	}
	if !m.lastSaved.IsZero() {
		saved := m.lastSaved
		st.LastSavedAt = &saved
	}
	if m.lastErr != nil {
		st.LastError = m.lastErr.Error()
	}
	return st
}

// Close stops the saver, flushes pending work and releases the backend
// and publisher
func (m *Manager) Close(ctx context.Context) error {
	m.once.Do(func() { close(m.done) })
	m.stateMu.Lock()
	if m.retry != nil {
		m.retry.Stop()
	}
	m.stateMu.Unlock()
	select {
	case <-m.exited:
	case <-ctx.Done():
		return ctx.Err()
	}

	err := m.Flush(ctx)
	if cerr := m.publisher.Close(); cerr != nil {
		m.logger.Warn("close publisher", log.FieldError, cerr)
	}
	if cerr := m.backend.Close(); err == nil {
		err = cerr
	}
	return err
}
