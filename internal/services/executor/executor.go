// Package executor drives orders for signals through either a simulated or
// a live execution path.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/elitvinov/sigbot/internal/clients"
	"github.com/elitvinov/sigbot/internal/domain"
	"github.com/elitvinov/sigbot/internal/storage/sheet"
)

// ErrInsufficientBalance is returned when the buy-side precheck finds less
// free quote balance than the order notional. The order is never attempted.
var ErrInsufficientBalance = errors.New("insufficient quote balance")

// APIError wraps any order-placement failure, keeping the original message.
type APIError struct {
	Err error
}

func (e *APIError) Error() string { return fmt.Sprintf("order failed: %v", e.Err) }

func (e *APIError) Unwrap() error { return e.Err }

const timeFormat = "2006-01-02 15:04:05"

// Executor places orders for signals. The mode (dry-run vs live) is fixed at
// construction, not per call.
type Executor struct {
	exchange   clients.ExchangeClient
	store      sheet.Store
	logger     *zap.Logger
	quoteAsset string
	dryRun     bool
	now        func() time.Time
}

// New creates an Executor. In dry-run mode orders are written to the store
// as synthetic fills and the exchange is never contacted.
func New(exchange clients.ExchangeClient, store sheet.Store, quoteAsset string, dryRun bool, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("order executor initialized", zap.Bool("dry_run", dryRun))
	return &Executor{
		exchange:   exchange,
		store:      store,
		logger:     logger,
		quoteAsset: quoteAsset,
		dryRun:     dryRun,
		now:        time.Now,
	}
}

// PlaceTakeProfitBuy places a take-profit buy for one signal. Live mode
// prechecks the free quote balance against price*quantity and returns
// ErrInsufficientBalance without touching the exchange when it falls short.
// Placement failures are wrapped into *APIError.
func (e *Executor) PlaceTakeProfitBuy(ctx context.Context, sig domain.Signal, price, quantity decimal.Decimal) (domain.OrderResult, error) {
	e.logger.Info("processing take-profit buy",
		zap.String("ticker", sig.Ticker),
		zap.String("quantity", quantity.String()),
		zap.String("price", price.String()),
		zap.Int("row", sig.Row))

	if e.dryRun {
		return e.simulate(domain.SideBuy, sig, price, quantity), nil
	}

	free := e.exchange.GetAccountBalance(ctx)[e.quoteAsset].Free
	required := price.Mul(quantity)
	if free.LessThan(required) {
		return domain.OrderResult{Status: domain.OrderFailed, Row: sig.Row},
			errors.Wrapf(ErrInsufficientBalance, "need %s %s, have %s", required, e.quoteAsset, free)
	}

	resp, err := e.exchange.PlaceOrder(ctx, clients.OrderRequest{
		Symbol:    sig.Ticker,
		Side:      domain.SideBuy,
		Type:      domain.OrderTypeTakeProfit,
		Quantity:  quantity,
		Price:     price,
		StopPrice: price,
	})
	if err != nil {
		return domain.OrderResult{Status: domain.OrderFailed, Row: sig.Row}, &APIError{Err: err}
	}

	e.logger.Info("order placed",
		zap.String("ticker", sig.Ticker),
		zap.String("order_id", resp.OrderID),
		zap.String("status", resp.Status))
	return domain.OrderResult{Status: domain.OrderPlaced, OrderID: resp.OrderID, Row: sig.Row}, nil
}

// PlaceLimitSell places a limit sell for one signal. Selling has no balance
// precheck: asset holdings are constrained upstream.
func (e *Executor) PlaceLimitSell(ctx context.Context, sig domain.Signal, price, quantity decimal.Decimal) (domain.OrderResult, error) {
	e.logger.Info("processing limit sell",
		zap.String("ticker", sig.Ticker),
		zap.String("quantity", quantity.String()),
		zap.String("price", price.String()),
		zap.Int("row", sig.Row))

	if e.dryRun {
		return e.simulate(domain.SideSell, sig, price, quantity), nil
	}

	resp, err := e.exchange.PlaceOrder(ctx, clients.OrderRequest{
		Symbol:   sig.Ticker,
		Side:     domain.SideSell,
		Type:     domain.OrderTypeLimit,
		Quantity: quantity,
		Price:    price,
	})
	if err != nil {
		return domain.OrderResult{Status: domain.OrderFailed, Row: sig.Row}, &APIError{Err: err}
	}

	e.logger.Info("order placed",
		zap.String("ticker", sig.Ticker),
		zap.String("order_id", resp.OrderID),
		zap.String("status", resp.Status))
	return domain.OrderResult{Status: domain.OrderPlaced, OrderID: resp.OrderID, Row: sig.Row}, nil
}

// simulate writes a synthetic fill into the signal row and returns a
// simulated result with a deterministic order id.
func (e *Executor) simulate(side domain.Side, sig domain.Signal, price, quantity decimal.Decimal) domain.OrderResult {
	row := sig.Row
	notional := price.Mul(quantity)
	stamp := e.now().Format(timeFormat)

	e.store.SetCell(sheet.ColAction, row, string(side))
	if side == domain.SideBuy {
		e.store.SetCell(sheet.ColPositionState, row, "open")
		e.store.SetCell(sheet.ColMarket, row, "spot")
	} else {
		e.store.SetCell(sheet.ColPositionState, row, "closed")
	}

	e.store.SetCell(sheet.ColOpenTime, row, stamp)
	e.store.SetCell(sheet.ColOpenPrice, row, price.String())
	e.store.SetCell(sheet.ColOpenQty, row, quantity.String())
	e.store.SetCell(sheet.ColOpenNotional, row, notional.String())
	e.store.SetCell(sheet.ColCloseTime, row, stamp)
	e.store.SetCell(sheet.ColClosePrice, row, price.String())
	e.store.SetCell(sheet.ColCloseQty, row, quantity.String())
	e.store.SetCell(sheet.ColCloseNotional, row, notional.String())

	orderID := fmt.Sprintf("SIM_%s_%d", sig.Ticker, row)
	e.logger.Info("simulated order",
		zap.String("side", string(side)),
		zap.Int("row", row),
		zap.String("quantity", quantity.String()),
		zap.String("price", price.String()),
		zap.String("order_id", orderID))
	return domain.OrderResult{Status: domain.OrderSimulated, OrderID: orderID, Row: row}
}
