// Package cli renders planner figures as terminal tables for planctl.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bizplan/internal/services/narrative"
)

var (
	ColorBorder = lipgloss.Color("#575653")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorRed    = lipgloss.Color("#D14D41")
	ColorMuted  = lipgloss.Color("#6F6E69")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorText)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorBorder)
	goodStyle   = lipgloss.NewStyle().Foreground(ColorGreen)
	badStyle    = lipgloss.NewStyle().Foreground(ColorRed)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Separator is a row that renders as a horizontal rule
var Separator = []string{"---"}

// Table is a bordered table; every column but the first is right aligned
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a boxed title line
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func (t Table) widths() []int {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			continue
		}
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == Separator[0]
}

func rule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// pad aligns a cell that may already carry ANSI styling
func pad(cell string, width int, left bool) string {
	gap := strings.Repeat(" ", max(0, width-lipgloss.Width(cell)))
	if left {
		return " " + cell + gap + " "
	}
	return " " + gap + cell + " "
}

// RenderTable draws the table with rounded box characters
func RenderTable(t Table) string {
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return ""
	}
	widths := t.widths()

	var b strings.Builder
	if t.Title != "" {
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}
	rule(&b, widths, "╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, w := range widths {
			h := ""
			if i < len(t.Headers) {
				h = t.Headers[i]
			}
			b.WriteString(headerStyle.Render(pad(h, w, i == 0)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		rule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if isSeparator(row) {
			rule(&b, widths, "├", "┼", "┤")
			continue
		}
		b.WriteString(dimStyle.Render("│"))
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, w, i == 0)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	rule(&b, widths, "╰", "┴", "╯")
	return b.String()
}

// Money formats a value as R$ 1.234,56
func Money(v float64) string { return narrative.FormatMoney(v) }

// Percent formats a value already expressed in percent as 12,5%
func Percent(v float64) string { return narrative.FormatPercent(v) }

// Count formats a value with thousands separators and no decimals
func Count(v float64) string { return narrative.FormatCount(v) }

// Signed colours a value green when positive and red when negative
func Signed(v float64, text string) string {
	switch {
	case v > 0:
		return goodStyle.Render(text)
	case v < 0:
		return badStyle.Render(text)
	}
	return text
}

// Status colours a variance status
func Status(s string) string {
	switch s {
	case "good":
		return goodStyle.Render(s)
	case "bad":
		return badStyle.Render(s)
	}
	return mutedStyle.Render(s)
}

// Muted renders secondary text
func Muted(s string) string { return mutedStyle.Render(s) }

// Pass and Fail label smoke test results
func Pass(s string) string { return goodStyle.Render("PASS") + " " + s }
func Fail(s string) string { return badStyle.Render("FAIL") + " " + s }

// Note renders an indented line
func Note(format string, args ...any) string {
	return "  " + fmt.Sprintf(format, args...)
}
