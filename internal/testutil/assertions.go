package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"bizplan/internal/models"
)

// ResponseAssertion provides fluent assertions for HTTP responses
type ResponseAssertion struct {
	t    *testing.T
	resp *http.Response
	body *string
}

// AssertResponse creates a new ResponseAssertion for the given response
func AssertResponse(t *testing.T, resp *http.Response) *ResponseAssertion {
	t.Helper()
	return &ResponseAssertion{t: t, resp: resp}
}

func (ra *ResponseAssertion) readBody() string {
	if ra.body == nil {
		defer ra.resp.Body.Close()
		data, err := io.ReadAll(ra.resp.Body)
		if err != nil {
			ra.t.Fatalf("read response body: %v", err)
		}
		s := string(data)
		ra.body = &s
	}
	return *ra.body
}

// Status asserts the status code. The body is printed on mismatch since it
// usually carries the error message.
func (ra *ResponseAssertion) Status(code int) *ResponseAssertion {
	ra.t.Helper()
	if ra.resp.StatusCode != code {
		ra.t.Errorf("status = %d, want %d\nbody: %s", ra.resp.StatusCode, code, truncate(ra.readBody(), 300))
	}
	return ra
}

func (ra *ResponseAssertion) StatusOK() *ResponseAssertion {
	ra.t.Helper()
	return ra.Status(http.StatusOK)
}

// ContentType asserts the Content-Type header contains expected
func (ra *ResponseAssertion) ContentType(expected string) *ResponseAssertion {
	ra.t.Helper()
	if ct := ra.resp.Header.Get("Content-Type"); !strings.Contains(ct, expected) {
		ra.t.Errorf("Content-Type = %q, want %q", ct, expected)
	}
	return ra
}

func (ra *ResponseAssertion) ContentTypeHTML() *ResponseAssertion {
	ra.t.Helper()
	return ra.ContentType("text/html")
}

func (ra *ResponseAssertion) ContentTypeJSON() *ResponseAssertion {
	ra.t.Helper()
	return ra.ContentType("application/json")
}

// Contains asserts the body contains substr
func (ra *ResponseAssertion) Contains(substr string) *ResponseAssertion {
	ra.t.Helper()
	return ra.ContainsAll(substr)
}

// ContainsAll asserts the body contains every substring
func (ra *ResponseAssertion) ContainsAll(substrs ...string) *ResponseAssertion {
	ra.t.Helper()
	body := ra.readBody()
	for _, s := range substrs {
		if !strings.Contains(body, s) {
			ra.t.Errorf("body does not contain %q\nbody: %s", s, truncate(body, 500))
		}
	}
	return ra
}

// NotContains asserts the body does not contain substr
func (ra *ResponseAssertion) NotContains(substr string) *ResponseAssertion {
	ra.t.Helper()
	if strings.Contains(ra.readBody(), substr) {
		ra.t.Errorf("body unexpectedly contains %q", substr)
	}
	return ra
}

// HasElement asserts the HTML body has an element with the given id
func (ra *ResponseAssertion) HasElement(id string) *ResponseAssertion {
	ra.t.Helper()
	pattern := `id=["']` + regexp.QuoteMeta(id) + `["']`
	if matched, _ := regexp.MatchString(pattern, ra.readBody()); !matched {
		ra.t.Errorf("body has no element with id=%q", id)
	}
	return ra
}

// JSON decodes the body into v
func (ra *ResponseAssertion) JSON(v any) *ResponseAssertion {
	ra.t.Helper()
	if err := json.Unmarshal([]byte(ra.readBody()), v); err != nil {
		ra.t.Fatalf("decode JSON body: %v\nbody: %s", err, truncate(ra.readBody(), 500))
	}
	return ra
}

// Change decodes the body as the change descriptor a write endpoint
// returns and checks its kind
func (ra *ResponseAssertion) Change(kind models.ChangeKind) models.Change {
	ra.t.Helper()
	var c models.Change
	ra.JSON(&c)
	if c.Kind != kind {
		ra.t.Errorf("change kind = %q, want %q", c.Kind, kind)
	}
	if c.At.IsZero() {
		ra.t.Error("change has no timestamp")
	}
	return c
}

// ErrorContains asserts an error response whose message contains substr
func (ra *ResponseAssertion) ErrorContains(substr string) *ResponseAssertion {
	ra.t.Helper()
	var e struct {
		Error string `json:"error"`
	}
	ra.JSON(&e)
	if !strings.Contains(e.Error, substr) {
		ra.t.Errorf("error = %q, want it to contain %q", e.Error, substr)
	}
	return ra
}

// Body returns the response body as a string
func (ra *ResponseAssertion) Body() string {
	return ra.readBody()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
