package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateTable holds exchange rates keyed by target currency code. A rate is the
// multiplier that converts an amount into the keyed currency.
type RateTable map[Currency]decimal.Decimal

// ExchangeError signals a conversion that could not be performed because the
// target currency has no registered rate. It is returned, never panicked, so
// enclosing transactions can roll back cleanly.
type ExchangeError struct {
	From Currency
	To   Currency
}

// Error implements the error interface
func (e *ExchangeError) Error() string {
	return fmt.Sprintf("no exchange rate registered for %s -> %s", e.From, e.To)
}

// Exchange converts m into the target currency using the supplied rate table.
// The table must carry a rate for the target currency; a missing rate aborts
// the conversion. Converting into the same currency is the identity. The
// result is not rounded; callers round once, at persistence time.
func Exchange(m Money, to Currency, rates RateTable) (Money, error) {
	if m.Currency() == to {
		return m, nil
	}
	rate, ok := rates[to]
	if !ok {
		return Money{}, &ExchangeError{From: m.Currency(), To: to}
	}
	return Money{amount: m.Amount().Mul(rate), currency: to}, nil
}

// NewRateTable builds a rate table from currency code/rate pairs
func NewRateTable(pairs map[string]decimal.Decimal) RateTable {
	table := make(RateTable, len(pairs))
	for code, rate := range pairs {
		table[Currency(code)] = rate
	}
	return table
}
