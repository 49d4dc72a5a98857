package clients

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/elitvinov/sigbot/internal/domain"
)

// BinanceExchange implements ExchangeClient on top of the Binance spot API.
type BinanceExchange struct {
	client  *binance.Client
	logger  *zap.Logger
	timeout time.Duration
}

// NewBinanceClient creates an authenticated Binance API client.
func NewBinanceClient(apiKey, apiSecret string) *binance.Client {
	return binance.NewClient(apiKey, apiSecret)
}

// NewPublicClient creates a Binance client without credentials. Public
// endpoints (prices) still work, which is all a dry run needs.
func NewPublicClient() *binance.Client {
	return binance.NewClient("", "")
}

// NewBinanceExchange wraps a Binance client into the core's exchange contract.
func NewBinanceExchange(client *binance.Client, logger *zap.Logger, timeout time.Duration) *BinanceExchange {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BinanceExchange{client: client, logger: logger, timeout: timeout}
}

func (e *BinanceExchange) GetAccountBalance(ctx context.Context) domain.AccountBalance {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	account, err := e.client.NewGetAccountService().Do(ctx)
	if err != nil {
		e.logger.Error("failed to fetch account balance", zap.Error(err))
		return domain.AccountBalance{}
	}

	balances := make(domain.AccountBalance, len(account.Balances))
	for _, b := range account.Balances {
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			e.logger.Warn("skipping unparseable balance", zap.String("asset", b.Asset), zap.Error(err))
			continue
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			e.logger.Warn("skipping unparseable balance", zap.String("asset", b.Asset), zap.Error(err))
			continue
		}
		balances[b.Asset] = domain.AssetBalance{Free: free, Locked: locked}
	}
	return balances
}

func (e *BinanceExchange) GetPrices(ctx context.Context, symbols []string) map[string]decimal.Decimal {
	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	list, err := e.client.NewListPricesService().Symbols(symbols).Do(ctx)
	if err != nil {
		e.logger.Error("failed to fetch prices", zap.Strings("symbols", symbols), zap.Error(err))
		return map[string]decimal.Decimal{}
	}

	prices := make(map[string]decimal.Decimal, len(list))
	for _, p := range list {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			e.logger.Warn("skipping unparseable price", zap.String("symbol", p.Symbol), zap.Error(err))
			continue
		}
		prices[p.Symbol] = price
	}
	return prices
}

func (e *BinanceExchange) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	svc := e.client.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(binance.SideType(req.Side)).
		Type(binance.OrderType(req.Type)).
		Quantity(req.Quantity.String()).
		NewClientOrderID(uuid.NewString())

	if req.Price.GreaterThan(decimal.Zero) {
		svc = svc.Price(req.Price.String()).TimeInForce(binance.TimeInForceTypeGTC)
	}
	if req.StopPrice.GreaterThan(decimal.Zero) {
		svc = svc.StopPrice(req.StopPrice.String())
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return OrderResponse{}, errors.Wrapf(err, "place %s %s %s", req.Side, req.Type, req.Symbol)
	}

	return OrderResponse{
		OrderID: strconv.FormatInt(resp.OrderID, 10),
		Status:  string(resp.Status),
	}, nil
}
