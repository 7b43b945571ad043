package orders

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/validate"
)

// limit orders more than this far from the market draw a warning, they may
// never fill
var deviationWarnThreshold = decimal.NewFromFloat(0.5)

// Limit submits a limit order with the given time-in-force. A price far away
// from the current market is allowed but logged as a warning.
func (p *Placer) Limit(ctx context.Context, symbol string, side trading.Side, quantity, price decimal.Decimal, tif trading.TimeInForce) (trading.OrderHandle, error) {
	if err := validate.Symbol(symbol, p.quoteAsset); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Side(side); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Quantity(quantity); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Price("price", price); err != nil {
		return trading.OrderHandle{}, err
	}
	if tif == "" {
		tif = trading.TimeInForceGTC
	}
	if err := validate.TimeInForce(tif); err != nil {
		return trading.OrderHandle{}, err
	}

	if current, err := p.gateway.GetCurrentPrice(ctx, symbol); err == nil && current.IsPositive() {
		deviation := price.Sub(current).Abs().Div(current)
		if deviation.GreaterThan(deviationWarnThreshold) {
			p.logger.Warn("limit price far from market, order may never fill",
				zap.String("symbol", symbol),
				zap.String("limit_price", price.String()),
				zap.String("current_price", current.String()),
				zap.String("deviation", deviation.String()),
			)
		}
	}

	req := trading.OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Type:        trading.OrderTypeLimit,
		Quantity:    quantity,
		Price:       price,
		TimeInForce: tif,
	}
	if err := p.guard.CheckOrder(ctx, req, decimal.Zero); err != nil {
		return trading.OrderHandle{}, err
	}

	return p.gateway.PlaceOrder(ctx, req)
}
