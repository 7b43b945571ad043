package validate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		wantErr bool
	}{
		{"valid pair", "BTCUSDT", false},
		{"valid pair with digits", "1000PEPEUSDT", false},
		{"empty", "", true},
		{"lowercase", "btcusdt", true},
		{"mixed case", "BtcUSDT", true},
		{"wrong quote asset", "BTCBUSD", true},
		{"quote asset only", "USDT", true},
		{"illegal characters", "BTC-USDT", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Symbol(tt.symbol, "USDT")
			if tt.wantErr {
				require.Error(t, err)
				var inputErr *InputError
				require.True(t, errors.As(err, &inputErr))
				assert.Equal(t, "symbol", inputErr.Field)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("buy")
	require.NoError(t, err)
	assert.Equal(t, trading.SideBuy, side)

	side, err = ParseSide("SELL")
	require.NoError(t, err)
	assert.Equal(t, trading.SideSell, side)

	_, err = ParseSide("HOLD")
	require.Error(t, err)
}

func TestQuantity(t *testing.T) {
	require.NoError(t, Quantity(decimal.NewFromFloat(0.001)))
	require.Error(t, Quantity(decimal.Zero))
	require.Error(t, Quantity(decimal.NewFromFloat(-0.5)))
}

func TestPrice(t *testing.T) {
	require.NoError(t, Price("price", decimal.NewFromInt(50000)))

	err := Price("stopPrice", decimal.Zero)
	require.Error(t, err)
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "stopPrice", inputErr.Field)
}

func TestStopPrice(t *testing.T) {
	market := decimal.NewFromInt(60000)

	tests := []struct {
		name    string
		stop    decimal.Decimal
		side    trading.Side
		wantErr bool
	}{
		{"sell stop below market", decimal.NewFromInt(58000), trading.SideSell, false},
		{"sell stop above market", decimal.NewFromInt(61000), trading.SideSell, true},
		{"sell stop at market", market, trading.SideSell, true},
		{"buy stop above market", decimal.NewFromInt(61000), trading.SideBuy, false},
		{"buy stop below market", decimal.NewFromInt(58000), trading.SideBuy, true},
		{"buy stop at market", market, trading.SideBuy, true},
		{"zero stop", decimal.Zero, trading.SideSell, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StopPrice(tt.stop, market, tt.side)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTimeInForce(t *testing.T) {
	require.NoError(t, TimeInForce(trading.TimeInForceGTC))
	require.NoError(t, TimeInForce(trading.TimeInForceIOC))
	require.NoError(t, TimeInForce(trading.TimeInForceFOK))
	require.Error(t, TimeInForce("GTX"))
	require.Error(t, TimeInForce(""))
}

func TestInputErrorMessage(t *testing.T) {
	err := &InputError{Field: "quantity", Value: "-1", Reason: "must be greater than 0"}
	assert.Equal(t, `invalid quantity "-1": must be greater than 0`, err.Error())
}
