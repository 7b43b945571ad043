package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/validate"
)

// gridFailureBudget aborts monitoring after this many consecutive gateway
// failures, leaving the resting orders live.
const gridFailureBudget = 3

// GridParams describes a ladder of limit orders between LowerPrice and
// UpperPrice: Levels intervals, Levels+1 price points, a fixed quantity at
// each armed level.
type GridParams struct {
	Symbol           string
	LowerPrice       decimal.Decimal
	UpperPrice       decimal.Decimal
	Levels           int
	QuantityPerLevel decimal.Decimal
}

// GridReport summarizes a grid run.
type GridReport struct {
	PricePoints   []decimal.Decimal
	OrdersPlaced  int
	Fills         int
	Replenished   int
	SkippedRearms int
}

// gridSlot tracks the live order resting at one price point.
type gridSlot struct {
	side   trading.Side
	handle trading.OrderHandle
}

// Grid places the ladder and keeps it self-replenishing: a filled BUY is
// answered with a SELL one level above, a filled SELL with a BUY one level
// below, capturing the spacing as spread.
type Grid struct {
	gateway    trading.Gateway
	quoteAsset string
	poll       Poller
	logger     *zap.Logger
}

// NewGrid wires a grid executor.
func NewGrid(gateway trading.Gateway, quoteAsset string, pollInterval time.Duration, logger *zap.Logger) *Grid {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("grid")
	return &Grid{
		gateway:    gateway,
		quoteAsset: quoteAsset,
		logger:     logger,
		poll: Poller{
			Interval:      pollInterval,
			FailureBudget: gridFailureBudget,
			Logger:        logger,
		},
	}
}

// Validate checks the grid parameters.
func (g *Grid) Validate(p GridParams) error {
	if err := validate.Symbol(p.Symbol, g.quoteAsset); err != nil {
		return err
	}
	if err := validate.Price("lowerPrice", p.LowerPrice); err != nil {
		return err
	}
	if err := validate.Price("upperPrice", p.UpperPrice); err != nil {
		return err
	}
	if err := validate.Quantity(p.QuantityPerLevel); err != nil {
		return err
	}
	if p.UpperPrice.LessThanOrEqual(p.LowerPrice) {
		return &validate.InputError{
			Field:  "upperPrice",
			Value:  p.UpperPrice.String(),
			Reason: fmt.Sprintf("must be above lowerPrice %s", p.LowerPrice),
		}
	}
	if p.Levels < 2 {
		return &validate.InputError{
			Field:  "levels",
			Value:  fmt.Sprintf("%d", p.Levels),
			Reason: "must be at least 2",
		}
	}
	return nil
}

// ComputeLevels returns the levels+1 evenly spaced, strictly increasing
// price points from lower to upper inclusive.
func ComputeLevels(lower, upper decimal.Decimal, levels int) []decimal.Decimal {
	step := upper.Sub(lower).Div(decimal.NewFromInt(int64(levels)))
	points := make([]decimal.Decimal, 0, levels+1)
	for i := 0; i <= levels; i++ {
		if i == levels {
			// Land exactly on the upper bound regardless of division
			// precision.
			points = append(points, upper)
			break
		}
		points = append(points, lower.Add(step.Mul(decimal.NewFromInt(int64(i)))))
	}
	return points
}

// Execute places the initial ladder around the current price and, unless
// monitor is false, runs the replenishing loop until the context is
// canceled or the failure budget is exhausted. Resting orders are never
// auto-cancelled on exit.
func (g *Grid) Execute(ctx context.Context, p GridParams, monitor bool) (*GridReport, error) {
	if err := g.Validate(p); err != nil {
		return nil, err
	}

	current, err := g.gateway.GetCurrentPrice(ctx, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current price: %w", err)
	}

	filters, err := g.gateway.GetSymbolFilters(ctx, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch symbol filters: %w", err)
	}

	points := ComputeLevels(p.LowerPrice, p.UpperPrice, p.Levels)
	report := &GridReport{PricePoints: points}
	active := make(map[int]*gridSlot, len(points))

	g.logger.Info("placing grid",
		zap.String("symbol", p.Symbol),
		zap.String("range_low", p.LowerPrice.String()),
		zap.String("range_high", p.UpperPrice.String()),
		zap.Int("levels", p.Levels),
		zap.String("current_price", current.String()),
	)

	for i, point := range points {
		var side trading.Side
		switch {
		case point.LessThan(current):
			side = trading.SideBuy
		case point.GreaterThan(current):
			side = trading.SideSell
		default:
			// A level sitting exactly on the market anchors the grid
			// and stays unarmed.
			continue
		}

		handle, err := g.placeLevel(ctx, p, filters, side, point)
		if err != nil {
			g.logger.Error("failed to arm grid level",
				zap.String("side", string(side)),
				zap.String("price", point.String()),
				zap.Error(err),
			)
			continue
		}
		active[i] = &gridSlot{side: side, handle: handle}
		report.OrdersPlaced++
	}

	g.logger.Info("grid armed", zap.Int("orders_placed", report.OrdersPlaced))

	if !monitor || report.OrdersPlaced == 0 {
		return report, nil
	}

	err = g.monitor(ctx, p, filters, points, active, report)
	return report, err
}

// CancelAll tears down every open order on the symbol.
func (g *Grid) CancelAll(ctx context.Context, symbol string) error {
	if err := validate.Symbol(symbol, g.quoteAsset); err != nil {
		return err
	}
	return g.gateway.CancelAllOpenOrders(ctx, symbol)
}

// monitor watches the armed levels. A fill removes its slot and re-arms the
// opposite side one level away, clamped to the grid bounds; if the target
// level already carries a live order the re-arm is skipped rather than
// stacked.
func (g *Grid) monitor(ctx context.Context, p GridParams, filters trading.SymbolFilters, points []decimal.Decimal, active map[int]*gridSlot, report *GridReport) error {
	return g.poll.Run(ctx, func(ctx context.Context) (bool, error) {
		for idx, slot := range active {
			handle, err := g.gateway.GetOrderStatus(ctx, p.Symbol, slot.handle.OrderID)
			if err != nil {
				return false, err
			}
			if handle.Status != trading.StatusFilled {
				if handle.Status.Terminal() {
					// Cancelled or rejected outside our control:
					// stop tracking the slot.
					g.logger.Warn("grid order ended without filling",
						zap.Int64("order_id", handle.OrderID),
						zap.String("status", string(handle.Status)),
					)
					delete(active, idx)
				}
				continue
			}

			report.Fills++
			delete(active, idx)
			g.logger.Info("grid level filled",
				zap.String("side", string(slot.side)),
				zap.String("price", points[idx].String()),
				zap.Int("total_fills", report.Fills),
			)

			target := idx + 1
			newSide := trading.SideSell
			if slot.side == trading.SideSell {
				target = idx - 1
				newSide = trading.SideBuy
			}
			if target < 0 || target >= len(points) {
				continue
			}
			if _, occupied := active[target]; occupied {
				// Two adjacent fills racing can both point at the
				// same level; one resting order per level.
				report.SkippedRearms++
				g.logger.Debug("re-arm skipped, level already armed",
					zap.String("price", points[target].String()))
				continue
			}

			replenished, err := g.placeLevel(ctx, p, filters, newSide, points[target])
			if err != nil {
				return false, err
			}
			active[target] = &gridSlot{side: newSide, handle: replenished}
			report.Replenished++
			g.logger.Info("grid level re-armed",
				zap.String("side", string(newSide)),
				zap.String("price", points[target].String()),
			)
		}
		return false, nil
	})
}

func (g *Grid) placeLevel(ctx context.Context, p GridParams, filters trading.SymbolFilters, side trading.Side, price decimal.Decimal) (trading.OrderHandle, error) {
	return g.gateway.PlaceOrder(ctx, trading.OrderRequest{
		Symbol:      p.Symbol,
		Side:        side,
		Type:        trading.OrderTypeLimit,
		Quantity:    p.QuantityPerLevel,
		Price:       filters.QuantizePrice(price),
		TimeInForce: trading.TimeInForceGTC,
	})
}
