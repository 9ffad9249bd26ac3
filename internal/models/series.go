package models

import "strings"

// Month is one of the twelve canonical month keys
type Month string

const (
	Jan Month = "jan"
	Feb Month = "feb"
	Mar Month = "mar"
	Apr Month = "apr"
	May Month = "may"
	Jun Month = "jun"
	Jul Month = "jul"
	Aug Month = "aug"
	Sep Month = "sep"
	Oct Month = "oct"
	Nov Month = "nov"
	Dec Month = "dec"
)

// Months lists the canonical keys in calendar order
var Months = [12]Month{Jan, Feb, Mar, Apr, May, Jun, Jul, Aug, Sep, Oct, Nov, Dec}

// Index returns the zero-based calendar position, or -1 for an unknown key
func (m Month) Index() int {
	for i, k := range Months {
		if k == m {
			return i
		}
	}
	return -1
}

// Valid reports whether m is one of the canonical keys
func (m Month) Valid() bool {
	return m.Index() >= 0
}

// ParseMonth accepts a canonical key ("mar") or a 1-based number ("3")
func ParseMonth(s string) (Month, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := Month(s); m.Valid() {
		return m, true
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
		n = n*10 + int(r-'0')
	}
	if n < 1 || n > 12 {
		return "", false
	}
	return Months[n-1], true
}

// MonthlySeries maps each month to a value. A nil value means "not entered",
// which is not the same as zero.
type MonthlySeries map[Month]*float64

// Float returns a pointer to v, for building series and actual entries
func Float(v float64) *float64 {
	return &v
}

// NewSeries returns a series with every month unset
func NewSeries() MonthlySeries {
	s := make(MonthlySeries, len(Months))
	for _, m := range Months {
		s[m] = nil
	}
	return s
}

// ZeroSeries returns a series with every month set to zero
func ZeroSeries() MonthlySeries {
	return UniformSeries(0)
}

// UniformSeries returns a series with every month set to v
func UniformSeries(v float64) MonthlySeries {
	s := make(MonthlySeries, len(Months))
	for _, m := range Months {
		s[m] = Float(v)
	}
	return s
}

// SeriesFromValues builds a fully populated series in calendar order
func SeriesFromValues(values [12]float64) MonthlySeries {
	s := make(MonthlySeries, len(Months))
	for i, m := range Months {
		s[m] = Float(values[i])
	}
	return s
}

// Get returns the value for m and whether it is present
func (s MonthlySeries) Get(m Month) (float64, bool) {
	v, ok := s[m]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Value returns the value for m, treating a missing entry as zero
func (s MonthlySeries) Value(m Month) float64 {
	v, _ := s.Get(m)
	return v
}

// Set stores v for m. Unknown months are ignored.
func (s MonthlySeries) Set(m Month, v float64) {
	if !m.Valid() {
		return
	}
	s[m] = Float(v)
}

// Clear marks m as not entered
func (s MonthlySeries) Clear(m Month) {
	if !m.Valid() {
		return
	}
	s[m] = nil
}

// Values returns the series in calendar order with missing entries as zero
func (s MonthlySeries) Values() [12]float64 {
	var out [12]float64
	for i, m := range Months {
		out[i] = s.Value(m)
	}
	return out
}

// Clone returns a deep copy
func (s MonthlySeries) Clone() MonthlySeries {
	out := make(MonthlySeries, len(Months))
	for _, m := range Months {
		if v, ok := s.Get(m); ok {
			out[m] = Float(v)
		} else {
			out[m] = nil
		}
	}
	return out
}

// Normalize returns a series holding exactly the twelve canonical keys.
// Unknown keys are dropped and missing keys become unset.
func (s MonthlySeries) Normalize() MonthlySeries {
	return s.Clone()
}
