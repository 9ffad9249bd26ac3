// Package testutil provides testing utilities for the planner API.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"mime/multipart"
	"net/url"
	"testing"
)

// AccessToken is the subscription token TestEnv configures
const AccessToken = "test-access-token"

// TestServer wraps httptest.Server with convenience methods
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	t       *testing.T
	token   string
}

// TestEnv points the configuration at a temporary data directory with the
// file store and an open subscription gate
func TestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PLANNER_DATA_DIR", dir)
	t.Setenv("PLANNER_LISTEN_ADDR", ":0")
	t.Setenv("PLANNER_STORE", "file")
	t.Setenv("PLANNER_ACCESS_STATE", "active")
	t.Setenv("PLANNER_ACCESS_TOKEN", AccessToken)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PLANNER_AMQP_URL", "")
	return dir
}

// NewTestServer creates a new test server using the application's router
// and closes it when the test ends
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		t:       t,
	}
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()

	resp, err := http.Get(ts.BaseURL + path)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// GETWithQuery performs a GET request with query parameters
func (ts *TestServer) GETWithQuery(path string, query map[string]string) *http.Response {
	ts.t.Helper()

	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	u := ts.BaseURL + path
	if len(values) > 0 {
		u += "?" + values.Encode()
	}

	resp, err := http.Get(u)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// POST performs a POST request to the given path
func (ts *TestServer) POST(path string, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()

	resp, err := http.Post(ts.BaseURL+path, contentType, body)
	if err != nil {
		ts.t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// WithToken returns a server handle that sends token as a bearer token
func (ts *TestServer) WithToken(token string) *TestServer {
	c := *ts
	c.token = token
	return &c
}

// Do sends a request with an optional JSON body
func (ts *TestServer) Do(method, path string, body any) *http.Response {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("encode %s body: %v", path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.BaseURL+path, reader)
	if err != nil {
		ts.t.Fatalf("build %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// POSTJSON performs a POST with a JSON body
func (ts *TestServer) POSTJSON(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodPost, path, body)
}

// PUT performs a PUT with a JSON body
func (ts *TestServer) PUT(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodPut, path, body)
}

// DELETE performs a DELETE request
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodDelete, path, nil)
}

// Upload posts content as the multipart file field "file"
func (ts *TestServer) Upload(path, filename string, content []byte) *http.Response {
	ts.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		ts.t.Fatalf("multipart %s: %v", filename, err)
	}
	if _, err := part.Write(content); err != nil {
		ts.t.Fatalf("multipart %s: %v", filename, err)
	}
	if err := mw.Close(); err != nil {
		ts.t.Fatalf("multipart %s: %v", filename, err)
	}
	return ts.POST(path, mw.FormDataContentType(), &body)
}
