package orders

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/validate"
)

// StopLimit submits a two-stage conditional order: dormant until the market
// reaches stopPrice, then a limit order at limitPrice. The stop must sit on
// the trigger side of the market (SELL below, BUY above) and the limit price
// must not be better than the stop can deliver: a SELL is willing to sell
// down to the limit, a BUY to buy up to it.
func (p *Placer) StopLimit(ctx context.Context, symbol string, side trading.Side, quantity, stopPrice, limitPrice decimal.Decimal) (trading.OrderHandle, error) {
	if err := validate.Symbol(symbol, p.quoteAsset); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Side(side); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Quantity(quantity); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Price("stopPrice", stopPrice); err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.Price("price", limitPrice); err != nil {
		return trading.OrderHandle{}, err
	}

	switch side {
	case trading.SideSell:
		if limitPrice.GreaterThan(stopPrice) {
			return trading.OrderHandle{}, &validate.InputError{
				Field:  "price",
				Value:  limitPrice.String(),
				Reason: "SELL stop-limit price must be at or below the stop price",
			}
		}
	case trading.SideBuy:
		if limitPrice.LessThan(stopPrice) {
			return trading.OrderHandle{}, &validate.InputError{
				Field:  "price",
				Value:  limitPrice.String(),
				Reason: "BUY stop-limit price must be at or above the stop price",
			}
		}
	}

	market, err := p.gateway.GetCurrentPrice(ctx, symbol)
	if err != nil {
		return trading.OrderHandle{}, err
	}
	if err := validate.StopPrice(stopPrice, market, side); err != nil {
		return trading.OrderHandle{}, err
	}

	req := trading.OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Type:        trading.OrderTypeStop,
		Quantity:    quantity,
		Price:       limitPrice,
		StopPrice:   stopPrice,
		TimeInForce: trading.TimeInForceGTC,
	}
	if err := p.guard.CheckOrder(ctx, req, market); err != nil {
		return trading.OrderHandle{}, err
	}

	return p.gateway.PlaceOrder(ctx, req)
}
