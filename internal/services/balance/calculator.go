// Package balance values the trading account in the quote currency.
package balance

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/elitvinov/sigbot/internal/clients"
	"github.com/elitvinov/sigbot/internal/domain"
)

// ReplayLedger folds a transaction list into a net balance. Deposits add,
// withdrawals subtract, anything else is ignored. Every amount is quantized
// to the given number of fractional digits before accumulation so rounding
// matches per-transaction truncation, and the result is quantized once more.
// Malformed amounts are skipped, never fatal.
func ReplayLedger(txs []domain.Transaction, digits int32) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		amount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			continue
		}
		amount = amount.Round(digits)
		switch tx.Type {
		case domain.TxDeposit:
			total = total.Add(amount)
		case domain.TxWithdrawal:
			total = total.Sub(amount)
		}
	}
	return total.Round(digits)
}

// ReplayLedgerForAsset is ReplayLedger restricted to one asset.
func ReplayLedgerForAsset(txs []domain.Transaction, asset string, digits int32) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Asset != asset {
			continue
		}
		amount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			continue
		}
		amount = amount.Round(digits)
		switch tx.Type {
		case domain.TxDeposit:
			total = total.Add(amount)
		case domain.TxWithdrawal:
			total = total.Sub(amount)
		}
	}
	return total.Round(digits)
}

// Calculator produces live deposit valuations from exchange state.
type Calculator struct {
	exchange   clients.ExchangeClient
	logger     *zap.Logger
	quoteAsset string
}

// NewCalculator creates a Calculator valuing the account in quoteAsset.
func NewCalculator(exchange clients.ExchangeClient, quoteAsset string, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{exchange: exchange, logger: logger, quoteAsset: quoteAsset}
}

// ValueAccount fetches a fresh account snapshot and converts it into a quote
// currency valuation. The quote asset is counted directly; every other asset
// with a positive balance is converted at the current market price. An asset
// whose price cannot be fetched is logged and omitted. A failed account query
// degrades to the all-zero valuation rather than an error so downstream
// decisioning is never blocked; callers check DepositValuation.IsZero.
func (c *Calculator) ValueAccount(ctx context.Context) domain.DepositValuation {
	account := c.exchange.GetAccountBalance(ctx)

	var valuation domain.DepositValuation
	valuation.FreeQuote = decimal.Zero
	valuation.LockedQuote = decimal.Zero
	valuation.Equivalent = decimal.Zero

	if quote, ok := account[c.quoteAsset]; ok {
		valuation.FreeQuote = quote.Free
		valuation.LockedQuote = quote.Locked
	}

	for asset, bal := range account {
		if asset == c.quoteAsset {
			continue
		}
		amount := bal.Total()
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		symbol := asset + c.quoteAsset
		prices := c.exchange.GetPrices(ctx, []string{symbol})
		price, ok := prices[symbol]
		if !ok {
			c.logger.Warn("no price for asset, omitting from valuation",
				zap.String("asset", asset),
				zap.String("symbol", symbol))
			continue
		}
		valuation.Equivalent = valuation.Equivalent.Add(amount.Mul(price))
	}

	valuation.Total = valuation.FreeQuote.Add(valuation.LockedQuote).Add(valuation.Equivalent)
	return valuation
}
