package domain

// OrderStatus outcome of driving one signal through the executor.
type OrderStatus string

const (
	OrderSimulated OrderStatus = "simulated"
	OrderPlaced    OrderStatus = "placed"
	OrderFailed    OrderStatus = "failed"
)

// Side order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType exchange order type.
type OrderType string

const (
	OrderTypeTakeProfit OrderType = "TAKE_PROFIT"
	OrderTypeLimit      OrderType = "LIMIT"
)

// OrderResult transient result of one placement, written back to the store
// and then discarded.
type OrderResult struct {
	Status  OrderStatus
	OrderID string
	Row     int
}
