package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bizplan/internal/cli"
)

type endpoint struct {
	path        string
	contentType string
	contains    []string
}

// endpoints are the read-only routes a healthy server answers with 200
var endpoints = []endpoint{
	{path: "/api/health", contentType: "application/json", contains: []string{`"status":"ok"`}},
	{path: "/api/version", contentType: "application/json", contains: []string{`"version"`}},
	{path: "/api/storage/status", contentType: "application/json", contains: []string{`"encrypted"`}},
	{path: "/api/access", contentType: "application/json", contains: []string{`"state"`}},

	{path: "/api/plan", contentType: "application/json", contains: []string{`"base_scenario"`}},
	{path: "/api/plan/status", contentType: "application/json", contains: []string{`"backend"`}},
	{path: "/api/scenarios", contentType: "application/json", contains: []string{"optimistic", "conservative", "disruptive"}},
	{path: "/api/tracking", contentType: "application/json"},
	{path: "/api/tracking/forecast", contentType: "application/json", contains: []string{`"lines"`}},
	{path: "/api/statements/conservative", contentType: "application/json", contains: []string{`"dre"`}},
	{path: "/api/sensitivity/conservative", contentType: "application/json", contains: []string{`"cells"`}},
	{path: "/api/sensitivity/conservative/safety", contentType: "application/json"},
	{path: "/api/pricing/items", contentType: "application/json"},
	{path: "/api/narrative/status", contentType: "application/json", contains: []string{`"enabled"`}},
	{path: "/api/dashboard", contentType: "application/json"},

	{path: "/report", contentType: "text/html", contains: []string{"report-header"}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
}

func (r result) ok() bool {
	return r.err == nil && r.status == http.StatusOK
}

var (
	flagURL     string
	flagTimeout time.Duration
	flagVerbose bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Smoke test the endpoints of a running server",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&flagURL, "url", "http://localhost:8080", "Base URL of the server")
	validateCmd.Flags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "Per request timeout")
	validateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Also list passing endpoints")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	client := &http.Client{Timeout: flagTimeout}
	base := strings.TrimRight(flagURL, "/")

	fmt.Fprintf(out, "Validating server at %s (%d endpoints)\n\n", base, len(endpoints))

	failed := 0
	for _, ep := range endpoints {
		r := check(cmd.Context(), client, base, ep)
		switch {
		case r.err != nil:
			failed++
			fmt.Fprintln(out, cli.Fail("GET "+ep.path))
			fmt.Fprintln(out, cli.Note("  %v", r.err))
		case r.status != http.StatusOK:
			failed++
			fmt.Fprintln(out, cli.Fail("GET "+ep.path))
			fmt.Fprintln(out, cli.Note("  status %d, expected 200", r.status))
		case flagVerbose:
			fmt.Fprintln(out, cli.Pass(fmt.Sprintf("GET %s (%v)", ep.path, r.duration.Round(time.Millisecond))))
		}
	}

	fmt.Fprintf(out, "\nResults: %d passed, %d failed\n", len(endpoints)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d endpoints failed", failed)
	}
	return nil
}

func check(ctx context.Context, client *http.Client, baseURL string, ep endpoint) result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+ep.path, nil)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("build request: %w", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("read body: %w", err)}
	}
	r := result{endpoint: ep, status: resp.StatusCode, duration: time.Since(start)}
	if r.status != http.StatusOK {
		return r
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("content type %q, expected %q", ct, ep.contentType)
		return r
	}
	if ep.contentType == "application/json" && !json.Valid(body) {
		r.err = fmt.Errorf("invalid JSON body")
		return r
	}
	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content %q", needle)
			return r
		}
	}
	return r
}
