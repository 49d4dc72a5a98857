// Package internal wires the trading pipeline together.
package internal

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/elitvinov/sigbot/config"
	"github.com/elitvinov/sigbot/internal/clients"
	"github.com/elitvinov/sigbot/internal/domain"
	"github.com/elitvinov/sigbot/internal/services/allocator"
	"github.com/elitvinov/sigbot/internal/services/balance"
	"github.com/elitvinov/sigbot/internal/services/executor"
	"github.com/elitvinov/sigbot/internal/services/signals"
	"github.com/elitvinov/sigbot/internal/storage/sheet"
)

// Bot runs the signal pipeline once: value the account, gate on minimum
// balance, collect active signals, refresh prices, allocate capital, and
// place one order per funded signal.
type Bot struct {
	cfg        config.Config
	exchange   clients.ExchangeClient
	store      sheet.Store
	calculator *balance.Calculator
	processor  *signals.Processor
	allocator  *allocator.Allocator
	executor   *executor.Executor
	logger     *zap.Logger
}

// NewBot wires all pipeline components over the given collaborators.
func NewBot(cfg config.Config, exchange clients.ExchangeClient, store sheet.Store, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		cfg:        cfg,
		exchange:   exchange,
		store:      store,
		calculator: balance.NewCalculator(exchange, cfg.QuoteAsset, logger),
		processor:  signals.NewProcessor(store, logger),
		allocator:  allocator.New(cfg.DepositFraction),
		executor:   executor.New(exchange, store, cfg.QuoteAsset, cfg.DryRun, logger),
		logger:     logger,
	}
}

// Run executes one synchronous pass over the signal store. Per-signal
// failures are logged and isolated; the run always tries to save whatever
// partial results exist.
func (b *Bot) Run(ctx context.Context) error {
	valuation := b.calculator.ValueAccount(ctx)
	b.logger.Info("account valued",
		zap.String("total", valuation.Total.String()),
		zap.String("free", valuation.FreeQuote.String()),
		zap.String("locked", valuation.LockedQuote.String()),
		zap.String("equivalent", valuation.Equivalent.String()))

	if valuation.IsZero() {
		b.logger.Error("valuation degraded to zero, skipping run")
		return nil
	}
	if valuation.Total.LessThan(b.cfg.MinBalance) && valuation.Equivalent.LessThan(b.cfg.MinEquivalent) {
		b.logger.Error("insufficient funds for a run",
			zap.String("total", valuation.Total.String()),
			zap.String("min_balance", b.cfg.MinBalance.String()),
			zap.String("min_equivalent", b.cfg.MinEquivalent.String()))
		return nil
	}

	b.processor.WriteHeader(
		valuation.FreeQuote.Round(b.cfg.QuantizeDigits),
		valuation.Total.Round(b.cfg.QuantizeDigits))

	sigs := b.processor.ActiveSignals()
	if len(sigs) == 0 {
		b.logger.Warn("no active signals in store")
		return errors.Wrap(b.store.Save(), "save signal store")
	}
	b.logger.Info("active signals found", zap.Int("count", len(sigs)))

	prices := b.exchange.GetPrices(ctx, activeTickers(sigs))
	updated := b.processor.RefreshPrices(prices)
	b.logger.Info("prices refreshed", zap.Int("tickers", len(prices)), zap.Int("rows", updated))

	allocs := b.allocator.Allocate(sigs, valuation.Total)
	b.processor.WriteAllocations(allocs)
	b.logger.Info("funds allocated", zap.Int("signals", len(allocs)))

	allocByRow := make(map[int]domain.Allocation, len(allocs))
	for _, a := range allocs {
		allocByRow[a.Row] = a
	}

	for _, sig := range sigs {
		if err := b.executeSignal(ctx, sig, allocByRow); err != nil {
			b.logger.Error("signal execution failed",
				zap.Int("row", sig.Row),
				zap.String("ticker", sig.Ticker),
				zap.Error(err))
		}
	}

	return errors.Wrap(b.store.Save(), "save signal store")
}

func (b *Bot) executeSignal(ctx context.Context, sig domain.Signal, allocByRow map[int]domain.Allocation) error {
	alloc, ok := allocByRow[sig.Row]
	if !ok {
		b.logger.Debug("signal received no allocation, skipping",
			zap.Int("row", sig.Row), zap.String("ticker", sig.Ticker))
		return nil
	}
	if sig.EntryPrice.LessThanOrEqual(decimal.Zero) {
		b.logger.Warn("signal has no usable entry price, skipping",
			zap.Int("row", sig.Row), zap.String("ticker", sig.Ticker))
		return nil
	}

	quantity := alloc.Amount.Div(sig.EntryPrice)
	result, err := b.executor.PlaceTakeProfitBuy(ctx, sig, sig.EntryPrice, quantity)
	if err != nil {
		return err
	}

	if result.Status == domain.OrderPlaced {
		if err := b.processor.UpdateStatus(sig.Row, domain.StatusPlaced); err != nil {
			return errors.Wrap(err, "order placed but status update failed")
		}
	}
	return nil
}

func activeTickers(sigs []domain.Signal) []string {
	seen := make(map[string]struct{}, len(sigs))
	var out []string
	for _, s := range sigs {
		if _, ok := seen[s.Ticker]; ok {
			continue
		}
		seen[s.Ticker] = struct{}{}
		out = append(out, s.Ticker)
	}
	return out
}
