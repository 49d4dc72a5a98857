package domain

import "github.com/shopspring/decimal"

// TxType transaction direction in the account ledger.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
)

// Transaction a single deposit or withdrawal, externally supplied and never
// mutated. Amount is kept as a string so malformed entries can be skipped
// instead of failing the whole ledger.
type Transaction struct {
	Type   TxType `json:"type"`
	Amount string `json:"amount"`
	Asset  string `json:"asset"`
}

// AssetBalance free and locked quantity of one asset.
type AssetBalance struct {
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Total returns free + locked.
func (b AssetBalance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// AccountBalance snapshot of the whole account, keyed by asset symbol.
// Fetched fresh each run, never cached.
type AccountBalance map[string]AssetBalance

// DepositValuation the account's worth expressed in the quote currency.
type DepositValuation struct {
	// Total = FreeQuote + LockedQuote + Equivalent.
	Total decimal.Decimal
	// FreeQuote quote-currency balance available for orders.
	FreeQuote decimal.Decimal
	// LockedQuote quote-currency balance held by open orders.
	LockedQuote decimal.Decimal
	// Equivalent quote value of all other assets at current prices.
	Equivalent decimal.Decimal
}

// IsZero reports whether the valuation degraded to the all-zero sentinel.
// Callers must treat a zero valuation as "do not trade this run".
func (v DepositValuation) IsZero() bool {
	return v.Total.IsZero() && v.FreeQuote.IsZero() && v.LockedQuote.IsZero() && v.Equivalent.IsZero()
}
