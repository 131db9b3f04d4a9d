// Package core holds the data model shared by every computation in the
// tracker: records as the store delivers them, amount parsing and the
// small conventions (currency normalization, goal tags) the components
// agree on.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts an amount string to a decimal. It accepts both
// dot and comma decimal separators. Malformed input yields zero, never
// an error: a bad record must not block an aggregate, the raw string
// stays available for display.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
