package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

// stubGateway returns canned answers and records the submitted requests.
type stubGateway struct {
	price    decimal.Decimal
	priceErr error
	placed   []trading.OrderRequest
}

func (s *stubGateway) PlaceOrder(ctx context.Context, req trading.OrderRequest) (trading.OrderHandle, error) {
	s.placed = append(s.placed, req)
	return trading.OrderHandle{
		OrderID: int64(len(s.placed)),
		Symbol:  req.Symbol,
		Side:    req.Side,
		Type:    req.Type,
		Status:  trading.StatusNew,
		Price:   req.Price,
		OrigQty: req.Quantity,
	}, nil
}

func (s *stubGateway) CancelOrder(ctx context.Context, symbol string, orderID int64) (trading.CancelResult, error) {
	return trading.CancelResult{Outcome: trading.CancelDone, Status: trading.StatusCanceled}, nil
}

func (s *stubGateway) GetOrderStatus(ctx context.Context, symbol string, orderID int64) (trading.OrderHandle, error) {
	return trading.OrderHandle{}, nil
}

func (s *stubGateway) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return s.price, s.priceErr
}

func (s *stubGateway) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubGateway) GetSymbolFilters(ctx context.Context, symbol string) (trading.SymbolFilters, error) {
	return trading.SymbolFilters{}, nil
}

func (s *stubGateway) CancelAllOpenOrders(ctx context.Context, symbol string) error { return nil }

func (s *stubGateway) ListOpenOrders(ctx context.Context, symbol string) ([]trading.OrderHandle, error) {
	return nil, nil
}

func newTestPlacer(price string) (*Placer, *stubGateway) {
	gw := &stubGateway{price: decimal.RequireFromString(price)}
	return NewPlacer(gw, "USDT", nil), gw
}

func TestMarket(t *testing.T) {
	placer, gw := newTestPlacer("60000")

	_, err := placer.Market(context.Background(), "BTCUSDT", trading.SideBuy, decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	require.Len(t, gw.placed, 1)
	req := gw.placed[0]
	assert.Equal(t, trading.OrderTypeMarket, req.Type)
	assert.Equal(t, trading.SideBuy, req.Side)
	assert.True(t, req.Price.IsZero())
	assert.Empty(t, req.TimeInForce)
}

func TestMarketRejectsBadInput(t *testing.T) {
	placer, gw := newTestPlacer("60000")

	tests := []struct {
		name     string
		symbol   string
		side     trading.Side
		quantity string
	}{
		{"lowercase symbol", "btcusdt", trading.SideBuy, "0.01"},
		{"wrong quote asset", "BTCBUSD", trading.SideBuy, "0.01"},
		{"bad side", "BTCUSDT", "HOLD", "0.01"},
		{"zero quantity", "BTCUSDT", trading.SideBuy, "0"},
		{"negative quantity", "BTCUSDT", trading.SideBuy, "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := placer.Market(context.Background(), tt.symbol, tt.side, decimal.RequireFromString(tt.quantity))
			require.Error(t, err)
		})
	}

	// No rejected input may reach the gateway.
	assert.Empty(t, gw.placed)
}

func TestLimit(t *testing.T) {
	placer, gw := newTestPlacer("60000")

	_, err := placer.Limit(context.Background(), "BTCUSDT", trading.SideSell,
		decimal.RequireFromString("0.01"), decimal.RequireFromString("61000"), trading.TimeInForceIOC)
	require.NoError(t, err)

	require.Len(t, gw.placed, 1)
	req := gw.placed[0]
	assert.Equal(t, trading.OrderTypeLimit, req.Type)
	assert.Equal(t, trading.TimeInForceIOC, req.TimeInForce)
	assert.True(t, req.Price.Equal(decimal.RequireFromString("61000")))
}

func TestLimitDefaultsToGTC(t *testing.T) {
	placer, gw := newTestPlacer("60000")

	_, err := placer.Limit(context.Background(), "BTCUSDT", trading.SideBuy,
		decimal.RequireFromString("0.01"), decimal.RequireFromString("59000"), "")
	require.NoError(t, err)
	assert.Equal(t, trading.TimeInForceGTC, gw.placed[0].TimeInForce)

	_, err = placer.Limit(context.Background(), "BTCUSDT", trading.SideBuy,
		decimal.RequireFromString("0.01"), decimal.RequireFromString("59000"), "GTX")
	require.Error(t, err)
}

func TestStopLimit(t *testing.T) {
	placer, gw := newTestPlacer("60000")

	_, err := placer.StopLimit(context.Background(), "BTCUSDT", trading.SideSell,
		decimal.RequireFromString("0.01"),
		decimal.RequireFromString("58000"),
		decimal.RequireFromString("57900"))
	require.NoError(t, err)

	require.Len(t, gw.placed, 1)
	req := gw.placed[0]
	assert.Equal(t, trading.OrderTypeStop, req.Type)
	assert.True(t, req.StopPrice.Equal(decimal.RequireFromString("58000")))
	assert.True(t, req.Price.Equal(decimal.RequireFromString("57900")))
	assert.Equal(t, trading.TimeInForceGTC, req.TimeInForce)
}

func TestStopLimitRejectsWrongSideOfMarket(t *testing.T) {
	placer, gw := newTestPlacer("60000")

	// A SELL stop above the market would trigger immediately.
	_, err := placer.StopLimit(context.Background(), "BTCUSDT", trading.SideSell,
		decimal.RequireFromString("0.01"),
		decimal.RequireFromString("61000"),
		decimal.RequireFromString("60900"))
	require.Error(t, err)

	// A BUY stop below the market likewise.
	_, err = placer.StopLimit(context.Background(), "BTCUSDT", trading.SideBuy,
		decimal.RequireFromString("0.01"),
		decimal.RequireFromString("59000"),
		decimal.RequireFromString("59100"))
	require.Error(t, err)

	assert.Empty(t, gw.placed)
}

func TestStopLimitPriceRelationship(t *testing.T) {
	placer, _ := newTestPlacer("60000")

	// A SELL limit above its stop asks for more than the trigger delivers.
	_, err := placer.StopLimit(context.Background(), "BTCUSDT", trading.SideSell,
		decimal.RequireFromString("0.01"),
		decimal.RequireFromString("58000"),
		decimal.RequireFromString("58500"))
	require.Error(t, err)

	// A BUY limit below its stop can never fill once triggered.
	_, err = placer.StopLimit(context.Background(), "BTCUSDT", trading.SideBuy,
		decimal.RequireFromString("0.01"),
		decimal.RequireFromString("62000"),
		decimal.RequireFromString("61500"))
	require.Error(t, err)
}
