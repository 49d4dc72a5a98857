// Package domain defines core data structures used throughout the trading bot.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Statuses a signal row may carry in the store. Only the active ones are
// actionable; everything else (including an empty cell) is ignored.
const (
	StatusActiveRu = "в работе"
	StatusActiveEn = "active"
	StatusPlaced   = "placed"
)

var activeStatuses = map[string]struct{}{
	StatusActiveRu: {},
	StatusActiveEn: {},
}

// IsActiveStatus reports whether a raw status cell marks a signal as active.
// Matching is case- and surrounding-whitespace-insensitive.
func IsActiveStatus(raw string) bool {
	_, ok := activeStatuses[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Signal is a candidate trade read from one row of the signal store.
type Signal struct {
	// Row locates the signal in the store; it is the only back-reference.
	Row    int
	Date   string
	Status string
	Ticker string
	// CurrentPrice last known market price written by a previous run.
	CurrentPrice decimal.Decimal
	EntryPrice   decimal.Decimal
	ExitPrice    decimal.Decimal
	// PlannedAmount capital planned for the signal, quote currency.
	PlannedAmount decimal.Decimal
}

// Quantity converts the planned quote amount into base-asset quantity at the
// entry price. Returns zero when the entry price is unusable so callers never
// divide by zero.
func (s *Signal) Quantity() decimal.Decimal {
	if s.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return s.PlannedAmount.Div(s.EntryPrice)
}

// Allocation is the capital assigned to one signal by the fund allocator.
type Allocation struct {
	Row        int
	Ticker     string
	Amount     decimal.Decimal
	EntryPrice decimal.Decimal
}
