// Package allocator distributes a capital budget across active signals.
package allocator

import (
	"github.com/shopspring/decimal"

	"github.com/elitvinov/sigbot/internal/domain"
)

// AllocationDigits fractional digits every allocated amount is quantized to.
const AllocationDigits = 8

var (
	ratiosThree = []decimal.Decimal{
		decimal.NewFromFloat(0.2),
		decimal.NewFromFloat(0.3),
		decimal.NewFromFloat(0.5),
	}
	ratiosTwo = []decimal.Decimal{
		decimal.NewFromFloat(0.5),
		decimal.NewFromFloat(0.5),
	}
	ratiosOne = []decimal.Decimal{decimal.NewFromInt(1)}
)

// Allocator computes per-signal capital allocations.
type Allocator struct {
	// fraction of the total deposit forming the run's base budget.
	fraction decimal.Decimal
}

// New creates an Allocator spending the given fraction of the deposit per
// run. A non-positive fraction falls back to the default 10%.
func New(fraction decimal.Decimal) *Allocator {
	if fraction.LessThanOrEqual(decimal.Zero) {
		fraction = decimal.NewFromFloat(0.1)
	}
	return &Allocator{fraction: fraction}
}

// Allocate splits the base budget across signals grouped by ticker. Groups
// keep first-seen order and signals keep their original order inside a
// group. Ratio tables exist for group sizes 1-3; in a larger group only the
// first signal is funded and the rest receive nothing. A non-positive
// deposit yields no allocations; this function never fails.
func (a *Allocator) Allocate(signals []domain.Signal, totalDeposit decimal.Decimal) []domain.Allocation {
	if totalDeposit.LessThanOrEqual(decimal.Zero) || len(signals) == 0 {
		return nil
	}

	baseBudget := totalDeposit.Mul(a.fraction).Round(AllocationDigits)

	var tickers []string
	groups := make(map[string][]domain.Signal)
	for _, sig := range signals {
		if _, seen := groups[sig.Ticker]; !seen {
			tickers = append(tickers, sig.Ticker)
		}
		groups[sig.Ticker] = append(groups[sig.Ticker], sig)
	}

	var out []domain.Allocation
	for _, ticker := range tickers {
		group := groups[ticker]
		ratios := ratiosFor(len(group))
		for i, sig := range group {
			if i >= len(ratios) {
				break
			}
			out = append(out, domain.Allocation{
				Row:        sig.Row,
				Ticker:     ticker,
				Amount:     baseBudget.Mul(ratios[i]).Round(AllocationDigits),
				EntryPrice: sig.EntryPrice,
			})
		}
	}
	return out
}

func ratiosFor(size int) []decimal.Decimal {
	switch size {
	case 3:
		return ratiosThree
	case 2:
		return ratiosTwo
	default:
		return ratiosOne
	}
}
