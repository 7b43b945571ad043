// Package risk holds the client-side pre-trade checks that run between
// validation and submission. The venue enforces the same rules; catching them
// here turns an API rejection into an immediate, readable error.
package risk

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

// Guard checks an order against the symbol's venue filters before it is
// submitted.
type Guard struct {
	gateway trading.Gateway
	logger  *zap.Logger
}

// NewGuard wires a Guard.
func NewGuard(gateway trading.Gateway, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		gateway: gateway,
		logger:  logger.Named("risk"),
	}
}

// CheckOrder verifies the request against the symbol's LOT_SIZE and notional
// filters. refPrice values the order when the request itself carries no price
// (market orders); if both are zero the current price is fetched. Filter
// lookup failures are logged and waved through, the venue remains the
// authority.
func (g *Guard) CheckOrder(ctx context.Context, req trading.OrderRequest, refPrice decimal.Decimal) error {
	filters, err := g.gateway.GetSymbolFilters(ctx, req.Symbol)
	if err != nil {
		g.logger.Warn("pre-trade filter lookup failed, deferring to the venue",
			zap.String("symbol", req.Symbol),
			zap.Error(err),
		)
		return nil
	}

	if filters.MinQty.IsPositive() && req.Quantity.LessThan(filters.MinQty) {
		return fmt.Errorf("quantity %s below the venue minimum %s for %s: %w",
			req.Quantity, filters.MinQty, req.Symbol, trading.ErrMinNotional)
	}

	if !filters.MinNotional.IsPositive() {
		return nil
	}

	price := req.Price
	if price.IsZero() {
		price = refPrice
	}
	if price.IsZero() {
		price, err = g.gateway.GetCurrentPrice(ctx, req.Symbol)
		if err != nil {
			g.logger.Warn("pre-trade price lookup failed, deferring to the venue",
				zap.String("symbol", req.Symbol),
				zap.Error(err),
			)
			return nil
		}
	}

	notional := req.Quantity.Mul(price)
	if notional.LessThan(filters.MinNotional) {
		return fmt.Errorf("order notional %s below the venue minimum %s for %s: %w",
			notional, filters.MinNotional, req.Symbol, trading.ErrMinNotional)
	}

	g.logger.Debug("pre-trade checks passed",
		zap.String("symbol", req.Symbol),
		zap.String("quantity", req.Quantity.String()),
		zap.String("notional", notional.String()),
	)
	return nil
}
