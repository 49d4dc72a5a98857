package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/elitvinov/sigbot/config"
	"github.com/elitvinov/sigbot/internal"
	"github.com/elitvinov/sigbot/internal/clients"
	"github.com/elitvinov/sigbot/internal/secrets"
	"github.com/elitvinov/sigbot/internal/storage/sheet"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}
	decimal.DivisionPrecision = cfg.DecimalPrecision

	store, err := sheet.OpenCSV(cfg.StorePath)
	if err != nil {
		logger.Fatal("failed to open signal store", zap.Error(err))
	}
	logger.Info("signal store loaded", zap.String("path", cfg.StorePath), zap.Int("rows", store.MaxRow()))

	var client *binance.Client
	if cfg.DryRun {
		client = clients.NewPublicClient()
		logger.Info("running in dry-run mode, orders will be simulated")
	} else {
		keys, err := secrets.Load(cfg.SecretKeyPath, cfg.APIKeysPath)
		if err != nil {
			logger.Fatal("failed to load API credentials", zap.Error(err))
		}
		client = clients.NewBinanceClient(keys.APIKey, keys.SecretKey)
	}
	exchange := clients.NewBinanceExchange(client, logger, cfg.APITimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot := internal.NewBot(cfg, exchange, store, logger)
	if err := bot.Run(ctx); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
	logger.Info("run finished")
}
