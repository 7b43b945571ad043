// Package orders builds and submits the simple order types: market, limit
// and stop-limit. The strategy coordinators compose these same primitives.
package orders

import (
	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/risk"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

// Placer validates order parameters, runs the pre-trade checks and submits
// through the gateway.
type Placer struct {
	gateway    trading.Gateway
	guard      *risk.Guard
	quoteAsset string
	logger     *zap.Logger
}

// NewPlacer wires a Placer.
func NewPlacer(gateway trading.Gateway, quoteAsset string, logger *zap.Logger) *Placer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Placer{
		gateway:    gateway,
		guard:      risk.NewGuard(gateway, logger),
		quoteAsset: quoteAsset,
		logger:     logger.Named("orders"),
	}
}
