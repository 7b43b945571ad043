package trading

import (
	"context"

	"github.com/shopspring/decimal"
)

// CancelOutcome distinguishes the three ways a cancel can end. Cancelling an
// order that already filled or was already cancelled is routine during OCO
// resolution and must not be treated as a failure.
type CancelOutcome string

const (
	CancelDone            CancelOutcome = "canceled"
	CancelAlreadyResolved CancelOutcome = "already_resolved"
)

// CancelResult reports how a cancel request ended. Hard failures come back
// as an error from CancelOrder instead.
type CancelResult struct {
	Outcome CancelOutcome
	Status  OrderStatus
}

// Gateway defines the exchange capability the coordinators run against.
type Gateway interface {
	// PlaceOrder submits a new order and returns the venue's handle.
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderHandle, error)

	// CancelOrder cancels an open order. An order that is already in a
	// terminal state yields CancelAlreadyResolved, not an error.
	CancelOrder(ctx context.Context, symbol string, orderID int64) (CancelResult, error)

	// GetOrderStatus re-queries an order.
	GetOrderStatus(ctx context.Context, symbol string, orderID int64) (OrderHandle, error)

	// GetCurrentPrice returns the last traded price for a symbol.
	GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// GetBalance returns the available futures balance for an asset.
	GetBalance(ctx context.Context, asset string) (decimal.Decimal, error)

	// GetSymbolFilters returns the venue trading rules for a symbol.
	GetSymbolFilters(ctx context.Context, symbol string) (SymbolFilters, error)

	// CancelAllOpenOrders cancels every open order on a symbol.
	CancelAllOpenOrders(ctx context.Context, symbol string) error

	// ListOpenOrders returns all open orders on a symbol.
	ListOpenOrders(ctx context.Context, symbol string) ([]OrderHandle, error)
}
