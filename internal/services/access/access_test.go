package access

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGateMiddleware(t *testing.T) {
	tests := []struct {
		state State
		want  int
	}{
		{Active, http.StatusNoContent},
		{Loading, http.StatusServiceUnavailable},
		{Expired, http.StatusPaymentRequired},
		{Inactive, http.StatusPaymentRequired},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			g := NewGate(tt.state)
			rec := httptest.NewRecorder()
			g.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/statements/optimistic", nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGateSet(t *testing.T) {
	g := NewGate(Loading)
	if g.Allowed() {
		t.Fatal("loading gate should be closed")
	}
	g.Set("bogus")
	if g.State() != Loading {
		t.Errorf("unknown state should be ignored, got %s", g.State())
	}
	g.Set(Active)
	if !g.Allowed() {
		t.Error("active gate should be open")
	}
}

func TestRequireToken(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		want       int
	}{
		{"matching token", "s3cret", "Bearer s3cret", http.StatusNoContent},
		{"wrong token", "s3cret", "Bearer s3cre", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"not a bearer", "s3cret", "Basic s3cret", http.StatusUnauthorized},
		{"no token configured", "", "Bearer ", http.StatusForbidden},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/access", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			RequireToken(tt.configured)(next).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
