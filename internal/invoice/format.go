package invoice

import (
	"strconv" // Base numeric formatting
	"strings" // Digit grouping
)

// FormatMoney renders a monetary amount with two decimal places and
// thousands separators, e.g. 1234567.5 -> "1,234,567.50".
func FormatMoney(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
