package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// All monetary values in the system are integer cents. This package only
// formats and parses them; arithmetic stays plain int64 at the call sites.

// FormatCents renders integer cents as a dollar string, e.g. 2500 -> "$25.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// ParseDollars converts an admin-entered dollar amount ("25", "25.5",
// "25.00") to cents, rounding half away from zero.
func ParseDollars(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("amount must be non-negative")
	}
	return int64(math.Round(f * 100)), nil
}
