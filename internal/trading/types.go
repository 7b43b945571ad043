package trading

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the other direction.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType mirrors the Binance Futures order types the bot places.
type OrderType string

const (
	OrderTypeMarket           OrderType = "MARKET"
	OrderTypeLimit            OrderType = "LIMIT"
	OrderTypeStop             OrderType = "STOP"
	OrderTypeStopMarket       OrderType = "STOP_MARKET"
	OrderTypeTakeProfit       OrderType = "TAKE_PROFIT"
	OrderTypeTakeProfitMarket OrderType = "TAKE_PROFIT_MARKET"
)

// TimeInForce controls how long a limit order stays on the book.
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// OrderStatus is the venue-reported order state.
type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// Terminal reports whether the order can no longer change state.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// OrderRequest describes an order to be submitted. Price is required for
// LIMIT and STOP types; StopPrice for the STOP/TAKE_PROFIT families.
type OrderRequest struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	StopPrice   decimal.Decimal
	TimeInForce TimeInForce
}

// OrderHandle is the bot's view of an order on the exchange. It is only
// mutated by re-querying the gateway, never locally.
type OrderHandle struct {
	OrderID     int64
	Symbol      string
	Side        Side
	Type        OrderType
	Status      OrderStatus
	Price       decimal.Decimal
	OrigQty     decimal.Decimal
	ExecutedQty decimal.Decimal
	AvgPrice    decimal.Decimal
	UpdatedAt   time.Time
}

// SymbolFilters are the venue trading rules a symbol carries.
type SymbolFilters struct {
	StepSize    decimal.Decimal // LOT_SIZE quantity increment
	MinQty      decimal.Decimal // LOT_SIZE minimum quantity
	TickSize    decimal.Decimal // PRICE_FILTER price increment
	MinNotional decimal.Decimal // minimum order value in quote asset
}

// QuantizeQty rounds q down to the symbol's step size. A zero step size
// leaves q untouched.
func (f SymbolFilters) QuantizeQty(q decimal.Decimal) decimal.Decimal {
	if f.StepSize.IsZero() {
		return q
	}
	return q.Div(f.StepSize).Floor().Mul(f.StepSize)
}

// QuantizePrice rounds p down to the symbol's tick size.
func (f SymbolFilters) QuantizePrice(p decimal.Decimal) decimal.Decimal {
	if f.TickSize.IsZero() {
		return p
	}
	return p.Div(f.TickSize).Floor().Mul(f.TickSize)
}
