package narrative

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/yuin/goldmark"

	"bizplan/internal/models"
)

// ErrUnparsable is returned when a JSON slot's answer cannot be decoded
var ErrUnparsable = errors.New("model answer is not valid JSON")

// stripFence removes a surrounding ``` code block
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}

// decodeLenient tries strict JSON, then a repaired version, then Hjson
func decodeLenient(raw string, v any) error {
	raw = stripFence(raw)
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	if repaired, err := jsonrepair.RepairJSON(raw); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		}
	}

	var generic any
	if err := hjson.Unmarshal([]byte(raw), &generic); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	data, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return nil
}

// ParseSuggestions decodes a JSON slot answer into candidate suggestions
func ParseSuggestions(raw string) (models.Suggestions, error) {
	var s models.Suggestions
	if err := decodeLenient(raw, &s); err != nil {
		return models.Suggestions{}, err
	}
	if len(s.OKRs) == 0 && len(s.KPIs) == 0 && s.AnalysisText == "" && len(s.ActionPlanItems) == 0 {
		return models.Suggestions{}, ErrUnparsable
	}
	return s, nil
}

// summarize turns candidate OKRs and KPIs into a markdown list
func summarize(s models.Suggestions) string {
	var b strings.Builder
	for _, o := range s.OKRs {
		fmt.Fprintf(&b, "- **%s**\n", o.Objective)
		for _, kr := range o.KeyResults {
			fmt.Fprintf(&b, "  - %s\n", kr)
		}
	}
	for _, k := range s.KPIs {
		unit := k.Unit
		if unit != "" {
			unit = " " + unit
		}
		fmt.Fprintf(&b, "- KPI %s: %v%s (%s)\n", k.Name, k.Target, unit, k.Frequency)
	}
	return b.String()
}

// RenderHTML converts markdown text to HTML
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
