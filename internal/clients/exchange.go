// Package clients wraps exchange connectivity behind the narrow contract the
// trading core depends on.
package clients

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/elitvinov/sigbot/internal/domain"
)

// OrderRequest describes one order to place on the exchange.
type OrderRequest struct {
	Symbol    string
	Side      domain.Side
	Type      domain.OrderType
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	StopPrice decimal.Decimal
}

// OrderResponse is the exchange's acknowledgement of a placed order.
type OrderResponse struct {
	OrderID string
	Status  string
}

// ExchangeClient is the exchange surface the core uses. Balance and price
// queries never fail: on any transport or decode error they log and return
// empty results, and the caller degrades accordingly. Order placement is the
// only call that surfaces errors.
type ExchangeClient interface {
	GetAccountBalance(ctx context.Context) domain.AccountBalance
	GetPrices(ctx context.Context, symbols []string) map[string]decimal.Decimal
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResponse, error)
}
