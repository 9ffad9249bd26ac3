package narrative

import (
	"strings"

	"github.com/shopspring/decimal"
)

// groupThousands inserts "." every three digits of an unsigned integer string
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// brazilian renders v with places decimals, "." for thousands and "," for
// the decimal separator. The sign is returned separately.
func brazilian(v float64, places int32) (neg bool, s string) {
	d := decimal.NewFromFloat(v).Round(places)
	neg = d.IsNegative()
	fixed := d.Abs().StringFixed(places)

	intPart, frac, _ := strings.Cut(fixed, ".")
	s = groupThousands(intPart)
	if places > 0 {
		s += "," + frac
	}
	return neg, s
}

// FormatMoney renders a currency amount as R$ 1.234,56
func FormatMoney(v float64) string {
	neg, s := brazilian(v, 2)
	if neg {
		return "-R$ " + s
	}
	return "R$ " + s
}

// FormatPercent renders a percentage with one decimal, as 12,5%
func FormatPercent(v float64) string {
	neg, s := brazilian(v, 1)
	if neg {
		return "-" + s + "%"
	}
	return s + "%"
}

// FormatCount renders a whole quantity, as 1.234
func FormatCount(v float64) string {
	neg, s := brazilian(v, 0)
	if neg {
		return "-" + s
	}
	return s
}
