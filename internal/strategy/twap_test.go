package strategy

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

func twapParams() TWAPParams {
	return TWAPParams{
		Symbol:        "BTCUSDT",
		Side:          trading.SideBuy,
		TotalQuantity: decimal.RequireFromString("0.01"),
		Duration:      0,
		Chunks:        5,
	}
}

func TestTWAPValidate(t *testing.T) {
	twap := NewTWAP(newFakeGateway("60000"), "USDT", nil)

	p := twapParams()
	require.NoError(t, twap.Validate(p))

	p = twapParams()
	p.Chunks = 0
	require.Error(t, twap.Validate(p))

	p = twapParams()
	p.TotalQuantity = decimal.Zero
	require.Error(t, twap.Validate(p))

	p = twapParams()
	p.Duration = -1
	require.Error(t, twap.Validate(p))
}

func TestSliceQuantities(t *testing.T) {
	step := trading.SymbolFilters{StepSize: decimal.RequireFromString("0.001")}

	t.Run("even split", func(t *testing.T) {
		slices, err := SliceQuantities(decimal.RequireFromString("0.01"), 5, step)
		require.NoError(t, err)
		require.Len(t, slices, 5)
		for _, q := range slices {
			assert.True(t, q.Equal(decimal.RequireFromString("0.002")), "got %s", q)
		}
	})

	t.Run("remainder folded into final slice", func(t *testing.T) {
		slices, err := SliceQuantities(decimal.RequireFromString("0.01"), 3, step)
		require.NoError(t, err)
		require.Len(t, slices, 3)
		assert.True(t, slices[0].Equal(decimal.RequireFromString("0.003")))
		assert.True(t, slices[1].Equal(decimal.RequireFromString("0.003")))
		assert.True(t, slices[2].Equal(decimal.RequireFromString("0.004")))

		sum := decimal.Zero
		for _, q := range slices {
			sum = sum.Add(q)
		}
		assert.True(t, sum.Equal(decimal.RequireFromString("0.01")))
	})

	t.Run("chunk below step size", func(t *testing.T) {
		_, err := SliceQuantities(decimal.RequireFromString("0.002"), 5, step)
		require.Error(t, err)
	})
}

func TestTWAPExecutesAllChunks(t *testing.T) {
	gw := newFakeGateway("60000")
	twap := NewTWAP(gw, "USDT", nil)

	report, err := twap.Execute(context.Background(), twapParams())
	require.NoError(t, err)

	require.Len(t, report.Fills, 5)
	assert.Empty(t, report.Failures)
	assert.True(t, report.Executed.Equal(report.Requested),
		"executed %s, requested %s", report.Executed, report.Requested)
	assert.True(t, report.VWAP.Equal(decimal.RequireFromString("60000")))

	for _, req := range gw.placed {
		assert.Equal(t, trading.OrderTypeMarket, req.Type)
	}
}

func TestTWAPContinuesAfterFailedChunk(t *testing.T) {
	gw := newFakeGateway("60000")
	gw.placeHook = func(n int, req trading.OrderRequest) error {
		if n == 2 {
			return trading.ErrInsufficientBalance
		}
		return nil
	}
	twap := NewTWAP(gw, "USDT", nil)

	report, err := twap.Execute(context.Background(), twapParams())
	require.NoError(t, err)

	require.Len(t, report.Fills, 4)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 2, report.Failures[0].Index)
	require.ErrorIs(t, report.Failures[0].Err, trading.ErrInsufficientBalance)
	assert.True(t, report.Executed.Equal(decimal.RequireFromString("0.008")),
		"got %s", report.Executed)
}

func TestTWAPStopsOnCancel(t *testing.T) {
	gw := newFakeGateway("60000")
	ctx, cancel := context.WithCancel(context.Background())
	gw.placeHook = func(n int, req trading.OrderRequest) error {
		if n == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}
	twap := NewTWAP(gw, "USDT", nil)

	report, err := twap.Execute(ctx, twapParams())
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Len(t, report.Fills, 2)
}
