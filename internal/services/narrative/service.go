// Package narrative asks a text generation model for advisory analyses of
// the plan. Answers are candidates only: structured suggestions reach the
// plan through the same reducers a user would call.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"bizplan/internal/log"
	"bizplan/internal/models"
)

var (
	ErrUnknownSlot = errors.New("unknown narrative slot")
	ErrDisabled    = errors.New("narrative generation is not configured")
)

// Retry bounds the attempts made for one request. Timeout caps all attempts
// together; zero leaves the request unbounded.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration
}

// DefaultRetry makes three attempts, waiting 1s then 2s, within a minute
func DefaultRetry() Retry {
	return Retry{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 8 * time.Second, Timeout: time.Minute}
}

// delay is the wait before attempt n+1, doubling from BaseDelay up to MaxDelay
func (r Retry) delay(n int) time.Duration {
	d := r.BaseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if d >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	return min(d, r.MaxDelay)
}

// Service runs one generation per slot at a time. Concurrent requests for a
// slot share the running call.
type Service struct {
	provider  Provider
	catalogue Catalogue
	retry     Retry
	logger    *log.Logger
	now       func() time.Time

	group    singleflight.Group
	mu       sync.Mutex
	inflight map[models.NarrativeSlot]bool
}

// NewService builds a service. A nil provider leaves generation disabled.
func NewService(provider Provider, catalogue Catalogue, retry Retry, logger *log.Logger) *Service {
	if catalogue == nil {
		catalogue = DefaultCatalogue()
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{
		provider:  provider,
		catalogue: catalogue,
		retry:     retry,
		logger:    logger.WithComponent(log.ComponentNarrative),
		now:       time.Now,
		inflight:  map[models.NarrativeSlot]bool{},
	}
}

// Enabled reports whether a provider is configured
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Status reports which slots have a request in flight
func (s *Service) Status() map[models.NarrativeSlot]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.NarrativeSlot]bool, len(models.NarrativeSlots))
	for _, slot := range models.NarrativeSlots {
		out[slot] = s.inflight[slot]
	}
	return out
}

func (s *Service) setLoading(slot models.NarrativeSlot, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.inflight[slot] = true
	} else {
		delete(s.inflight, slot)
	}
}

// Generate produces the narrative of slot from a plan snapshot. The caller
// stores the narrative and decides whether to merge the suggestions.
func (s *Service) Generate(ctx context.Context, slot models.NarrativeSlot, doc *models.PlanDocument) (*models.NarrativeResult, error) {
	if _, ok := models.ParseNarrativeSlot(string(slot)); !ok {
		return nil, ErrUnknownSlot
	}
	if s.provider == nil {
		return nil, ErrDisabled
	}
	req := s.catalogue.Request(slot, Digest(doc, slot))

	ch := s.group.DoChan(string(slot), func() (any, error) {
		s.setLoading(slot, true)
		defer s.setLoading(slot, false)
		// detached so one caller giving up does not cancel the others
		runCtx, cancel := s.detach(ctx)
		defer cancel()
		return s.run(runCtx, slot, req)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := *res.Val.(*models.NarrativeResult)
		return &result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// detach drops the caller's cancellation and applies the service's own
// deadline so the shared call always ends.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.retry.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.retry.Timeout)
}

func (s *Service) run(ctx context.Context, slot models.NarrativeSlot, req Request) (*models.NarrativeResult, error) {
	logger := s.logger.With(log.FieldSlot, slot)
	var lastErr error

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := s.retry.delay(attempt - 1)
			logger.Warn("narrative attempt failed, retrying", log.FieldAttempt, attempt-1, log.FieldError, lastErr, "wait", wait)
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}

		raw, err := s.provider.Generate(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		result, err := s.build(slot, req.JSON, raw)
		if err != nil {
			lastErr = err
			continue
		}
		result.Attempts = attempt
		logger.Info("narrative generated", log.FieldAttempt, attempt)
		return result, nil
	}
	return nil, fmt.Errorf("generate %s narrative after %d attempts: %w", slot, s.retry.MaxAttempts, lastErr)
}

func (s *Service) build(slot models.NarrativeSlot, isJSON bool, raw string) (*models.NarrativeResult, error) {
	text := stripFence(raw)
	var suggestions models.Suggestions

	if isJSON {
		parsed, err := ParseSuggestions(raw)
		if err != nil {
			return nil, err
		}
		suggestions = parsed
		if parsed.AnalysisText != "" {
			text = parsed.AnalysisText
		} else {
			text = summarize(parsed)
		}
	}

	html, err := RenderHTML(text)
	if err != nil {
		return nil, fmt.Errorf("render narrative: %w", err)
	}
	return &models.NarrativeResult{
		Slot: slot,
		Narrative: models.Narrative{
			Slot:        slot,
			Text:        text,
			HTML:        html,
			GeneratedAt: s.now().UTC(),
		},
		Suggestions: suggestions,
	}, nil
}
