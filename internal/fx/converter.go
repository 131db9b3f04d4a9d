// Package fx resolves exchange rates and converts amounts between
// currencies. Rates are expressed as units of a currency per one unit
// of a fixed base currency; the base itself is implicitly 1.0.
package fx

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// Converter converts amounts using a rate table taken from one
// snapshot. It is immutable: build a new one when the snapshot changes.
type Converter struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewConverter indexes the non-deleted rates of a snapshot. Rate
// strings that do not parse stay in the table as zero and trigger the
// degraded pass-through in Convert.
func NewConverter(base string, rates []core.FxRate) *Converter {
	c := &Converter{
		base:  core.NormalizeCurrency(base),
		rates: make(map[string]decimal.Decimal, len(rates)),
	}
	for _, r := range rates {
		if r.Deleted {
			continue
		}
		code := core.NormalizeCurrency(r.Code)
		if code == "" {
			continue
		}
		c.rates[code] = core.ParseAmount(r.PerBase)
	}
	return c
}

// Base returns the base currency code.
func (c *Converter) Base() string {
	return c.base
}

// RateOf returns the per-base rate for a code. A blank code or the base
// currency is always 1. The second return value is false when the code
// is absent from the table.
func (c *Converter) RateOf(code string) (decimal.Decimal, bool) {
	code = core.NormalizeCurrency(code)
	if code == "" || code == c.base {
		return decimal.NewFromInt(1), true
	}
	r, ok := c.rates[code]
	return r, ok
}

// Convert converts an amount string from one currency to another using
// amount * (rateFrom / rateTo). Equal or blank currencies return the
// parsed amount unchanged. When either rate is unresolved or
// non-positive the original amount passes through unconverted:
// conversion failures must never block display.
func (c *Converter) Convert(amount, from, to string) decimal.Decimal {
	a := core.ParseAmount(amount)
	return c.ConvertDecimal(a, from, to)
}

// ConvertDecimal is Convert for an already-parsed amount.
func (c *Converter) ConvertDecimal(a decimal.Decimal, from, to string) decimal.Decimal {
	f := core.NormalizeCurrency(from)
	t := core.NormalizeCurrency(to)
	if f == t || f == "" || t == "" {
		return a
	}
	rf, okf := c.RateOf(f)
	rt, okt := c.RateOf(t)
	if !okf || !okt || !rf.IsPositive() || !rt.IsPositive() {
		return a
	}
	return a.Mul(rf).Div(rt)
}

// KnownCurrencies lists the base plus every code in the table, for
// display-currency pickers.
func (c *Converter) KnownCurrencies() []string {
	out := make([]string, 0, len(c.rates)+1)
	out = append(out, c.base)
	for code := range c.rates {
		out = append(out, code)
	}
	return out
}
