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

// PairState is the OCO pair lifecycle.
type PairState string

const (
	PairActive   PairState = "ACTIVE"
	PairResolved PairState = "RESOLVED"
)

// Leg names the two sides of the pair.
type Leg string

const (
	LegTakeProfit Leg = "take_profit"
	LegStopLoss   Leg = "stop_loss"
)

// OCOParams describes a one-cancels-the-other pair: a take-profit and a
// stop-loss protecting the same position, so both legs share side and
// quantity.
type OCOParams struct {
	Symbol          string
	Side            trading.Side
	Quantity        decimal.Decimal
	TakeProfitPrice decimal.Decimal
	StopLossPrice   decimal.Decimal
}

// OCOResult reports how the pair ended. While State is ACTIVE both handles
// are live on the exchange and it is the operator's job to reconcile them.
type OCOResult struct {
	TakeProfit trading.OrderHandle
	StopLoss   trading.OrderHandle
	State      PairState

	// ResolvedLeg is the leg that filled; empty when the pair ended
	// abnormally (a leg was cancelled or rejected externally).
	ResolvedLeg Leg
	FillPrice   decimal.Decimal

	// CanceledStatus is the sibling's final status after the cancel.
	CanceledStatus trading.OrderStatus

	// Warning is set for tolerated anomalies, e.g. both legs filling in
	// the same poll window.
	Warning string
}

// OCO places a take-profit / stop-loss pair and monitors it until one leg
// fills, then cancels the other. Binance Futures has no native OCO order,
// so the linkage lives entirely in this loop.
type OCO struct {
	gateway    trading.Gateway
	quoteAsset string
	poll       Poller
	logger     *zap.Logger
}

// NewOCO wires an OCO coordinator. pollInterval paces the monitoring loop
// and maxMonitor bounds it (zero means unbounded).
func NewOCO(gateway trading.Gateway, quoteAsset string, pollInterval, maxMonitor time.Duration, logger *zap.Logger) *OCO {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("oco")
	return &OCO{
		gateway:    gateway,
		quoteAsset: quoteAsset,
		logger:     logger,
		poll: Poller{
			Interval:   pollInterval,
			MaxElapsed: maxMonitor,
			Logger:     logger,
		},
	}
}

// Validate checks the pair parameters, including the price relationship:
// closing a long (SELL) needs the take-profit above the stop-loss, closing a
// short (BUY) the other way around.
func (o *OCO) Validate(p OCOParams) error {
	if err := validate.Symbol(p.Symbol, o.quoteAsset); err != nil {
		return err
	}
	if err := validate.Side(p.Side); err != nil {
		return err
	}
	if err := validate.Quantity(p.Quantity); err != nil {
		return err
	}
	if err := validate.Price("takeProfitPrice", p.TakeProfitPrice); err != nil {
		return err
	}
	if err := validate.Price("stopLossPrice", p.StopLossPrice); err != nil {
		return err
	}

	switch p.Side {
	case trading.SideSell:
		if p.TakeProfitPrice.LessThanOrEqual(p.StopLossPrice) {
			return &validate.InputError{
				Field:  "takeProfitPrice",
				Value:  p.TakeProfitPrice.String(),
				Reason: fmt.Sprintf("SELL OCO take-profit must be above stop-loss %s", p.StopLossPrice),
			}
		}
	case trading.SideBuy:
		if p.StopLossPrice.LessThanOrEqual(p.TakeProfitPrice) {
			return &validate.InputError{
				Field:  "stopLossPrice",
				Value:  p.StopLossPrice.String(),
				Reason: fmt.Sprintf("BUY OCO stop-loss must be above take-profit %s", p.TakeProfitPrice),
			}
		}
	}
	return nil
}

// Execute places both legs and, unless monitor is false, polls until the
// pair resolves. With monitor false the caller gets both live handles back
// immediately and must reconcile externally.
func (o *OCO) Execute(ctx context.Context, p OCOParams, monitor bool) (*OCOResult, error) {
	if err := o.Validate(p); err != nil {
		return nil, err
	}

	if price, err := o.gateway.GetCurrentPrice(ctx, p.Symbol); err == nil {
		o.logger.Info("current price before OCO placement",
			zap.String("symbol", p.Symbol),
			zap.String("price", price.String()),
		)
	}

	tp, err := o.gateway.PlaceOrder(ctx, trading.OrderRequest{
		Symbol:    p.Symbol,
		Side:      p.Side,
		Type:      trading.OrderTypeTakeProfitMarket,
		Quantity:  p.Quantity,
		StopPrice: p.TakeProfitPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("take-profit leg failed: %w", err)
	}
	o.logger.Info("take-profit leg placed",
		zap.Int64("order_id", tp.OrderID),
		zap.String("trigger", p.TakeProfitPrice.String()),
	)

	sl, err := o.gateway.PlaceOrder(ctx, trading.OrderRequest{
		Symbol:    p.Symbol,
		Side:      p.Side,
		Type:      trading.OrderTypeStopMarket,
		Quantity:  p.Quantity,
		StopPrice: p.StopLossPrice,
	})
	if err != nil {
		// Do not leave an orphaned take-profit behind.
		o.logger.Warn("stop-loss leg failed, cancelling take-profit", zap.Error(err))
		if _, cerr := o.gateway.CancelOrder(ctx, p.Symbol, tp.OrderID); cerr != nil {
			o.logger.Error("failed to cancel orphaned take-profit", zap.Error(cerr))
		}
		return nil, fmt.Errorf("stop-loss leg failed: %w", err)
	}
	o.logger.Info("stop-loss leg placed",
		zap.Int64("order_id", sl.OrderID),
		zap.String("trigger", p.StopLossPrice.String()),
	)

	result := &OCOResult{TakeProfit: tp, StopLoss: sl, State: PairActive}
	if !monitor {
		o.logger.Info("monitoring disabled, pair left active",
			zap.Int64("take_profit_id", tp.OrderID),
			zap.Int64("stop_loss_id", sl.OrderID),
		)
		return result, nil
	}

	if err := o.monitor(ctx, p.Symbol, result); err != nil {
		return result, err
	}
	return result, nil
}

// monitor polls both legs until one fills, then issues exactly one cancel
// against the sibling.
func (o *OCO) monitor(ctx context.Context, symbol string, result *OCOResult) error {
	return o.poll.Run(ctx, func(ctx context.Context) (bool, error) {
		tp, err := o.gateway.GetOrderStatus(ctx, symbol, result.TakeProfit.OrderID)
		if err != nil {
			return false, err
		}
		sl, err := o.gateway.GetOrderStatus(ctx, symbol, result.StopLoss.OrderID)
		if err != nil {
			return false, err
		}
		result.TakeProfit = tp
		result.StopLoss = sl

		o.logger.Debug("OCO poll",
			zap.String("take_profit", string(tp.Status)),
			zap.String("stop_loss", string(sl.Status)),
		)

		// Both legs filling is an inherent race of two independent
		// orders: detect it, resolve, warn, and skip the cancel.
		if tp.Status == trading.StatusFilled && sl.Status == trading.StatusFilled {
			result.State = PairResolved
			result.ResolvedLeg = LegTakeProfit
			result.FillPrice = tp.AvgPrice
			result.CanceledStatus = sl.Status
			result.Warning = "both legs filled before cancellation could be issued"
			o.logger.Warn("both OCO legs filled, position doubled",
				zap.Int64("take_profit_id", tp.OrderID),
				zap.Int64("stop_loss_id", sl.OrderID),
			)
			return true, nil
		}

		if tp.Status == trading.StatusFilled {
			return true, o.resolve(ctx, result, LegTakeProfit, tp, sl)
		}
		if sl.Status == trading.StatusFilled {
			return true, o.resolve(ctx, result, LegStopLoss, sl, tp)
		}

		// A leg dying outside our control (cancelled on the venue,
		// rejected, expired) ends the pair too.
		if tp.Status.Terminal() {
			o.logger.Warn("take-profit leg ended without filling, cancelling stop-loss",
				zap.String("status", string(tp.Status)))
			return true, o.cancelSibling(ctx, result, sl)
		}
		if sl.Status.Terminal() {
			o.logger.Warn("stop-loss leg ended without filling, cancelling take-profit",
				zap.String("status", string(sl.Status)))
			return true, o.cancelSibling(ctx, result, tp)
		}

		return false, nil
	})
}

func (o *OCO) resolve(ctx context.Context, result *OCOResult, leg Leg, filled, sibling trading.OrderHandle) error {
	o.logger.Info("OCO leg filled, cancelling sibling",
		zap.String("leg", string(leg)),
		zap.String("fill_price", filled.AvgPrice.String()),
		zap.Int64("sibling_id", sibling.OrderID),
	)

	cancel, err := o.gateway.CancelOrder(ctx, filled.Symbol, sibling.OrderID)
	if err != nil {
		return fmt.Errorf("failed to cancel sibling %d: %w", sibling.OrderID, err)
	}

	result.State = PairResolved
	result.ResolvedLeg = leg
	result.FillPrice = filled.AvgPrice
	result.CanceledStatus = cancel.Status
	if cancel.Outcome == trading.CancelAlreadyResolved {
		result.Warning = "sibling leg had already reached a terminal state"
	}
	return nil
}

func (o *OCO) cancelSibling(ctx context.Context, result *OCOResult, sibling trading.OrderHandle) error {
	cancel, err := o.gateway.CancelOrder(ctx, sibling.Symbol, sibling.OrderID)
	if err != nil {
		return fmt.Errorf("failed to cancel sibling %d: %w", sibling.OrderID, err)
	}
	result.State = PairResolved
	result.CanceledStatus = cancel.Status
	result.Warning = "a leg ended without filling; the pair was closed"
	return nil
}
