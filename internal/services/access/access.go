// Package access gates the planning routes on the subscription state.
package access

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

// State of the owner's subscription
type State string

const (
	Active   State = "active"
	Expired  State = "expired"
	Inactive State = "inactive"
	Loading  State = "loading"
)

// Valid reports whether s is a known state
func (s State) Valid() bool {
	switch s {
	case Active, Expired, Inactive, Loading:
		return true
	}
	return false
}

// Gate holds the current state. Planning computations run only while it is
// active.
type Gate struct {
	mu    sync.RWMutex
	state State
}

// NewGate starts in the given state
func NewGate(initial State) *Gate {
	return &Gate{state: initial}
}

// State returns the current state
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Set changes the state; unknown states are ignored
func (g *Gate) Set(s State) {
	if !s.Valid() {
		return
	}
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

// Allowed is true when the gate is open
func (g *Gate) Allowed() bool {
	return g.State() == Active
}

// StatusCode maps a closed gate to an HTTP status
func StatusCode(s State) int {
	switch s {
	case Active:
		return http.StatusOK
	case Loading:
		return http.StatusServiceUnavailable
	}
	return http.StatusPaymentRequired
}

// RequireToken guards state changes with a shared bearer token. With no
// token configured every change is refused.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, http.StatusForbidden, "subscription changes are disabled")
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="access"`)
				writeError(w, http.StatusUnauthorized, "invalid access token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Middleware rejects requests while the gate is closed: 503 while the
// subscription is still loading, 402 when it is expired or inactive
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := g.State()
		if state == Active {
			next.ServeHTTP(w, r)
			return
		}
		code := StatusCode(state)
		if code == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "5")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"error":        "subscription " + string(state),
			"subscription": string(state),
		})
	})
}
