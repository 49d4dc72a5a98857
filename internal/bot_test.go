package internal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elitvinov/sigbot/config"
	"github.com/elitvinov/sigbot/internal/clients"
	"github.com/elitvinov/sigbot/internal/domain"
	"github.com/elitvinov/sigbot/internal/storage/sheet"
)

type fakeExchange struct {
	balances   domain.AccountBalance
	prices     map[string]decimal.Decimal
	placed     []clients.OrderRequest
	failSymbol string
}

func (f *fakeExchange) GetAccountBalance(ctx context.Context) domain.AccountBalance {
	return f.balances
}

func (f *fakeExchange) GetPrices(ctx context.Context, symbols []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, s := range symbols {
		if p, ok := f.prices[s]; ok {
			out[s] = p
		}
	}
	return out
}

func (f *fakeExchange) PlaceOrder(ctx context.Context, req clients.OrderRequest) (clients.OrderResponse, error) {
	if req.Symbol == f.failSymbol {
		return clients.OrderResponse{}, errors.New("rejected by exchange")
	}
	f.placed = append(f.placed, req)
	return clients.OrderResponse{OrderID: "42", Status: "NEW"}, nil
}

func testConfig(t *testing.T, dryRun bool) config.Config {
	t.Helper()
	return config.Config{
		QuoteAsset:      "USDT",
		QuantizeDigits:  2,
		DepositFraction: decimal.NewFromFloat(0.1),
		MinBalance:      decimal.NewFromInt(50),
		MinEquivalent:   decimal.NewFromInt(50),
		DryRun:          dryRun,
		APITimeout:      time.Second,
		StorePath:       filepath.Join(t.TempDir(), "signals.csv"),
	}
}

func seedSignals(t *testing.T, path string, rows ...[3]string) *sheet.CSVStore {
	t.Helper()
	store, err := sheet.OpenCSV(path)
	require.NoError(t, err)
	for i, r := range rows {
		row := sheet.FirstSignalRow + i
		store.SetCell(sheet.ColStatus, row, r[0])
		store.SetCell(sheet.ColTicker, row, r[1])
		store.SetCell(sheet.ColEntryPrice, row, r[2])
	}
	return store
}

func cellDecimal(t *testing.T, store sheet.Store, col string, row int) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(store.Cell(col, row))
	require.NoError(t, err, "cell %s%d", col, row)
	return d
}

func TestRunDryRunPipeline(t *testing.T) {
	cfg := testConfig(t, true)
	store := seedSignals(t, cfg.StorePath,
		[3]string{"в работе", "BTCUSDT", "50000"},
		[3]string{"в работе", "BTCUSDT", "50000"},
		[3]string{"в работе", "BTCUSDT", "50000"},
	)
	exchange := &fakeExchange{
		balances: domain.AccountBalance{"USDT": {Free: decimal.NewFromInt(10000)}},
		prices:   map[string]decimal.Decimal{"BTCUSDT": decimal.NewFromInt(51000)},
	}

	bot := NewBot(cfg, exchange, store, zap.NewNop())
	require.NoError(t, bot.Run(context.Background()))

	// no live orders in dry-run
	assert.Empty(t, exchange.placed)

	// allocations written per the 0.2/0.3/0.5 table over the 1000 budget
	assert.True(t, cellDecimal(t, store, sheet.ColPlannedAmount, 6).Equal(decimal.NewFromInt(200)))
	assert.True(t, cellDecimal(t, store, sheet.ColPlannedAmount, 7).Equal(decimal.NewFromInt(300)))
	assert.True(t, cellDecimal(t, store, sheet.ColPlannedAmount, 8).Equal(decimal.NewFromInt(500)))

	// prices refreshed and header updated
	assert.True(t, cellDecimal(t, store, sheet.ColCurrentPrice, 6).Equal(decimal.NewFromInt(51000)))
	assert.True(t, cellDecimal(t, store, sheet.HeaderBalanceCol, sheet.HeaderFreeRow).Equal(decimal.NewFromInt(10000)))
	assert.True(t, cellDecimal(t, store, sheet.HeaderBalanceCol, sheet.HeaderDepositRow).Equal(decimal.NewFromInt(10000)))

	// synthetic fills recorded for every funded signal
	for row := 6; row <= 8; row++ {
		assert.Equal(t, "BUY", store.Cell(sheet.ColAction, row), "row %d", row)
		assert.Equal(t, "open", store.Cell(sheet.ColPositionState, row), "row %d", row)
	}

	// results survived the final save
	reloaded, err := sheet.OpenCSV(cfg.StorePath)
	require.NoError(t, err)
	assert.Equal(t, "BUY", reloaded.Cell(sheet.ColAction, 6))
}

func TestRunSkipsOnZeroValuation(t *testing.T) {
	cfg := testConfig(t, true)
	store := seedSignals(t, cfg.StorePath, [3]string{"в работе", "BTCUSDT", "50000"})
	exchange := &fakeExchange{balances: domain.AccountBalance{}}

	bot := NewBot(cfg, exchange, store, zap.NewNop())
	require.NoError(t, bot.Run(context.Background()))

	assert.Empty(t, store.Cell(sheet.ColAction, 6), "no orders on a degraded valuation")
}

func TestRunSkipsBelowMinimums(t *testing.T) {
	cfg := testConfig(t, true)
	store := seedSignals(t, cfg.StorePath, [3]string{"в работе", "BTCUSDT", "50000"})
	exchange := &fakeExchange{
		balances: domain.AccountBalance{"USDT": {Free: decimal.NewFromInt(10)}},
	}

	bot := NewBot(cfg, exchange, store, zap.NewNop())
	require.NoError(t, bot.Run(context.Background()))

	assert.Empty(t, store.Cell(sheet.ColAction, 6))
}

func TestRunLiveIsolatesFailingSignal(t *testing.T) {
	cfg := testConfig(t, false)
	store := seedSignals(t, cfg.StorePath,
		[3]string{"в работе", "BTCUSDT", "50000"},
		[3]string{"в работе", "ETHUSDT", "3000"},
	)
	exchange := &fakeExchange{
		balances: domain.AccountBalance{"USDT": {Free: decimal.NewFromInt(10000)}},
		prices: map[string]decimal.Decimal{
			"BTCUSDT": decimal.NewFromInt(51000),
			"ETHUSDT": decimal.NewFromInt(3100),
		},
		failSymbol: "BTCUSDT",
	}

	bot := NewBot(cfg, exchange, store, zap.NewNop())
	require.NoError(t, bot.Run(context.Background()))

	// ETH order went through despite the BTC failure
	require.Len(t, exchange.placed, 1)
	assert.Equal(t, "ETHUSDT", exchange.placed[0].Symbol)

	// placed signal is marked so a rerun cannot double-execute it
	assert.Equal(t, domain.StatusPlaced, store.Cell(sheet.ColStatus, 7))
	assert.Equal(t, "в работе", store.Cell(sheet.ColStatus, 6))
}
