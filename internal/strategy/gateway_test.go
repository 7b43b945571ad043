package strategy

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

// fakeGateway is an in-memory exchange used by the coordinator tests. Market
// orders fill immediately at the current price; everything else rests until a
// test fills it explicitly.
type fakeGateway struct {
	mu      sync.Mutex
	nextID  int64
	orders  map[int64]trading.OrderHandle
	price   decimal.Decimal
	filters trading.SymbolFilters

	placed   []trading.OrderRequest
	canceled []int64

	// placeHook can reject a placement; called with the request and the
	// 1-based placement count.
	placeHook func(n int, req trading.OrderRequest) error
	// statusHook runs before every status query, keyed by order ID.
	statusHook func(g *fakeGateway, orderID int64)
}

func newFakeGateway(price string) *fakeGateway {
	return &fakeGateway{
		orders: make(map[int64]trading.OrderHandle),
		price:  decimal.RequireFromString(price),
		filters: trading.SymbolFilters{
			StepSize: decimal.RequireFromString("0.001"),
			TickSize: decimal.RequireFromString("0.1"),
		},
	}
}

func (g *fakeGateway) PlaceOrder(ctx context.Context, req trading.OrderRequest) (trading.OrderHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.placed = append(g.placed, req)
	if g.placeHook != nil {
		if err := g.placeHook(len(g.placed), req); err != nil {
			return trading.OrderHandle{}, err
		}
	}

	g.nextID++
	handle := trading.OrderHandle{
		OrderID: g.nextID,
		Symbol:  req.Symbol,
		Side:    req.Side,
		Type:    req.Type,
		Status:  trading.StatusNew,
		Price:   req.Price,
		OrigQty: req.Quantity,
	}
	if req.Type == trading.OrderTypeMarket {
		handle.Status = trading.StatusFilled
		handle.ExecutedQty = req.Quantity
		handle.AvgPrice = g.price
	}
	g.orders[handle.OrderID] = handle
	return handle, nil
}

func (g *fakeGateway) CancelOrder(ctx context.Context, symbol string, orderID int64) (trading.CancelResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.canceled = append(g.canceled, orderID)
	handle, ok := g.orders[orderID]
	if !ok {
		return trading.CancelResult{}, fmt.Errorf("cancel order: %w", trading.ErrOrderNotFound)
	}
	if handle.Status.Terminal() {
		return trading.CancelResult{Outcome: trading.CancelAlreadyResolved, Status: handle.Status}, nil
	}
	handle.Status = trading.StatusCanceled
	g.orders[orderID] = handle
	return trading.CancelResult{Outcome: trading.CancelDone, Status: trading.StatusCanceled}, nil
}

func (g *fakeGateway) GetOrderStatus(ctx context.Context, symbol string, orderID int64) (trading.OrderHandle, error) {
	if g.statusHook != nil {
		g.statusHook(g, orderID)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	handle, ok := g.orders[orderID]
	if !ok {
		return trading.OrderHandle{}, fmt.Errorf("get order status: %w", trading.ErrOrderNotFound)
	}
	return handle, nil
}

func (g *fakeGateway) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.price, nil
}

func (g *fakeGateway) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	return decimal.NewFromInt(10000), nil
}

func (g *fakeGateway) GetSymbolFilters(ctx context.Context, symbol string) (trading.SymbolFilters, error) {
	return g.filters, nil
}

func (g *fakeGateway) CancelAllOpenOrders(ctx context.Context, symbol string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, handle := range g.orders {
		if !handle.Status.Terminal() {
			handle.Status = trading.StatusCanceled
			g.orders[id] = handle
		}
	}
	return nil
}

func (g *fakeGateway) ListOpenOrders(ctx context.Context, symbol string) ([]trading.OrderHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var open []trading.OrderHandle
	for _, handle := range g.orders {
		if !handle.Status.Terminal() {
			open = append(open, handle)
		}
	}
	return open, nil
}

// fill marks a resting order as filled at the given price.
func (g *fakeGateway) fill(orderID int64, price string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	handle := g.orders[orderID]
	handle.Status = trading.StatusFilled
	handle.ExecutedQty = handle.OrigQty
	handle.AvgPrice = decimal.RequireFromString(price)
	g.orders[orderID] = handle
}

// setStatus forces an order into an arbitrary state.
func (g *fakeGateway) setStatus(orderID int64, status trading.OrderStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	handle := g.orders[orderID]
	handle.Status = status
	g.orders[orderID] = handle
}

func (g *fakeGateway) cancelCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.canceled)
}
