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

// TWAPParams describes a time-sliced execution: TotalQuantity split into
// Chunks market orders spread evenly over Duration.
type TWAPParams struct {
	Symbol        string
	Side          trading.Side
	TotalQuantity decimal.Decimal
	Duration      time.Duration
	Chunks        int
}

// ChunkFill records one executed slice.
type ChunkFill struct {
	Index    int
	OrderID  int64
	Quantity decimal.Decimal
	AvgPrice decimal.Decimal
	Time     time.Time
}

// ChunkFailure records a slice that the venue rejected. A failed chunk does
// not abort the plan.
type ChunkFailure struct {
	Index int
	Err   error
}

// TWAPReport summarizes the run: executed vs requested totals, the
// volume-weighted average fill price, and any failures.
type TWAPReport struct {
	Requested decimal.Decimal
	Executed  decimal.Decimal
	VWAP      decimal.Decimal
	Fills     []ChunkFill
	Failures  []ChunkFailure
}

// TWAP executes a large order as evenly spaced market order slices to limit
// market impact.
type TWAP struct {
	gateway    trading.Gateway
	quoteAsset string
	logger     *zap.Logger
}

// NewTWAP wires a TWAP executor.
func NewTWAP(gateway trading.Gateway, quoteAsset string, logger *zap.Logger) *TWAP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TWAP{
		gateway:    gateway,
		quoteAsset: quoteAsset,
		logger:     logger.Named("twap"),
	}
}

// Validate checks the plan parameters.
func (t *TWAP) Validate(p TWAPParams) error {
	if err := validate.Symbol(p.Symbol, t.quoteAsset); err != nil {
		return err
	}
	if err := validate.Side(p.Side); err != nil {
		return err
	}
	if err := validate.Quantity(p.TotalQuantity); err != nil {
		return err
	}
	if p.Chunks < 1 {
		return &validate.InputError{
			Field:  "chunks",
			Value:  fmt.Sprintf("%d", p.Chunks),
			Reason: "must be at least 1",
		}
	}
	if p.Duration < 0 {
		return &validate.InputError{
			Field:  "duration",
			Value:  p.Duration.String(),
			Reason: "must not be negative",
		}
	}
	return nil
}

// SliceQuantities splits total into n slices on the venue's step grid. Every
// slice but the last is total/n rounded down to the step; the remainder is
// folded into the final slice so the sum equals total exactly (up to the
// venue's quantity precision).
func SliceQuantities(total decimal.Decimal, n int, filters trading.SymbolFilters) ([]decimal.Decimal, error) {
	base := filters.QuantizeQty(total.Div(decimal.NewFromInt(int64(n))))
	if !base.IsPositive() {
		return nil, &validate.InputError{
			Field:  "chunks",
			Value:  fmt.Sprintf("%d", n),
			Reason: fmt.Sprintf("chunk size %s below the venue step size %s", total.Div(decimal.NewFromInt(int64(n))), filters.StepSize),
		}
	}

	slices := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		slices[i] = base
	}
	last := total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
	slices[n-1] = filters.QuantizeQty(last)
	if !slices[n-1].IsPositive() {
		return nil, &validate.InputError{
			Field:  "totalQuantity",
			Value:  total.String(),
			Reason: "final chunk rounds to zero at the venue step size",
		}
	}
	return slices, nil
}

// Execute runs the plan synchronously: one market order per chunk with a
// fixed interval in between, no delay after the final chunk. A failed chunk
// is recorded, its delay skipped, and the plan continues.
func (t *TWAP) Execute(ctx context.Context, p TWAPParams) (*TWAPReport, error) {
	if err := t.Validate(p); err != nil {
		return nil, err
	}

	filters, err := t.gateway.GetSymbolFilters(ctx, p.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch symbol filters: %w", err)
	}

	slices, err := SliceQuantities(p.TotalQuantity, p.Chunks, filters)
	if err != nil {
		return nil, err
	}

	interval := p.Duration / time.Duration(p.Chunks)
	t.logger.Info("starting TWAP execution",
		zap.String("symbol", p.Symbol),
		zap.String("side", string(p.Side)),
		zap.String("total_quantity", p.TotalQuantity.String()),
		zap.Int("chunks", p.Chunks),
		zap.Duration("interval", interval),
	)

	report := &TWAPReport{Requested: p.TotalQuantity}
	cost := decimal.Zero

	for i, qty := range slices {
		handle, err := t.submitChunk(ctx, p, qty)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			t.logger.Error("TWAP chunk failed, continuing",
				zap.Int("chunk", i+1),
				zap.Int("of", p.Chunks),
				zap.Error(err),
			)
			report.Failures = append(report.Failures, ChunkFailure{Index: i + 1, Err: err})
			// Skip this chunk's delay and move straight on.
			continue
		}

		fill := ChunkFill{
			Index:    i + 1,
			OrderID:  handle.OrderID,
			Quantity: handle.ExecutedQty,
			AvgPrice: handle.AvgPrice,
			Time:     time.Now(),
		}
		report.Fills = append(report.Fills, fill)
		report.Executed = report.Executed.Add(fill.Quantity)
		cost = cost.Add(fill.Quantity.Mul(fill.AvgPrice))

		t.logger.Info("TWAP chunk filled",
			zap.Int("chunk", i+1),
			zap.Int("of", p.Chunks),
			zap.String("quantity", fill.Quantity.String()),
			zap.String("avg_price", fill.AvgPrice.String()),
		)

		if i < len(slices)-1 {
			if err := sleep(ctx, interval); err != nil {
				return report, err
			}
		}
	}

	if report.Executed.IsPositive() {
		report.VWAP = cost.Div(report.Executed)
	}

	t.logger.Info("TWAP complete",
		zap.String("executed", report.Executed.String()),
		zap.String("requested", report.Requested.String()),
		zap.String("vwap", report.VWAP.String()),
		zap.Int("failed_chunks", len(report.Failures)),
	)
	return report, nil
}

func (t *TWAP) submitChunk(ctx context.Context, p TWAPParams, qty decimal.Decimal) (trading.OrderHandle, error) {
	handle, err := t.gateway.PlaceOrder(ctx, trading.OrderRequest{
		Symbol:   p.Symbol,
		Side:     p.Side,
		Type:     trading.OrderTypeMarket,
		Quantity: qty,
	})
	if err != nil {
		return trading.OrderHandle{}, err
	}

	// Market orders normally come back FILLED; if not, re-query once so
	// the report carries the final fill numbers.
	if handle.Status != trading.StatusFilled {
		if updated, qerr := t.gateway.GetOrderStatus(ctx, p.Symbol, handle.OrderID); qerr == nil {
			handle = updated
		}
	}
	return handle, nil
}
