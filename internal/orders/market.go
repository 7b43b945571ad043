package orders

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/validate"
)

// Market submits a market order. The current price is fetched first for the
// audit log only; market orders fill at whatever the book offers.
func (p *Placer) Market(ctx context.Context, symbol string, side trading.Side, quantity decimal.Decimal) (trading.OrderHandle, error) {
	if err := validate.Symbol(symbol, p.quoteAsset); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Side(side); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Quantity(quantity); err != nil {
		return trading.OrderHandle{}, err
	}

	refPrice := decimal.Zero
	if price, err := p.gateway.GetCurrentPrice(ctx, symbol); err == nil {
		refPrice = price
		p.logger.Info("reference price before market order",
			zap.String("symbol", symbol),
			zap.String("price", price.String()),
		)
	}

	req := trading.OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Type:     trading.OrderTypeMarket,
		Quantity: quantity,
	}
	if err := p.guard.CheckOrder(ctx, req, refPrice); err != nil {
		return trading.OrderHandle{}, err
	}

	return p.gateway.PlaceOrder(ctx, req)
}
