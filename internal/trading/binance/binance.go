// Package binance adapts the go-binance USDT-M futures client to the
// trading.Gateway capability the coordinators run against.
package binance

import (
	"context"
	"errors"
	"fmt"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/configs"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

// Gateway implements trading.Gateway against Binance USDT-M futures.
type Gateway struct {
	client *futures.Client
	logger *zap.Logger
}

// New builds a futures gateway from the immutable config. The testnet flag
// is honored before the client is constructed.
func New(cfg configs.Config, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	futures.UseTestnet = cfg.UseTestnet

	if cfg.UseTestnet {
		logger.Info("connected to Binance Futures testnet")
	} else {
		logger.Warn("connected to Binance Futures PRODUCTION, real funds at risk")
	}

	return &Gateway{
		client: binance.NewFuturesClient(cfg.APIKey, cfg.SecretKey),
		logger: logger.Named("gateway"),
	}
}

// PlaceOrder submits an order built from req.
func (g *Gateway) PlaceOrder(ctx context.Context, req trading.OrderRequest) (trading.OrderHandle, error) {
	svc := g.client.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(futures.SideType(req.Side)).
		Type(futures.OrderType(req.Type)).
		Quantity(req.Quantity.String())

	if !req.Price.IsZero() {
		svc.Price(req.Price.String())
	}
	if !req.StopPrice.IsZero() {
		svc.StopPrice(req.StopPrice.String())
	}
	if req.Type == trading.OrderTypeLimit || req.Type == trading.OrderTypeStop || req.Type == trading.OrderTypeTakeProfit {
		tif := req.TimeInForce
		if tif == "" {
			tif = trading.TimeInForceGTC
		}
		svc.TimeInForce(futures.TimeInForceType(tif))
	}

	g.logger.Debug("placing order",
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.String("type", string(req.Type)),
		zap.String("quantity", req.Quantity.String()),
		zap.String("price", req.Price.String()),
		zap.String("stop_price", req.StopPrice.String()),
	)

	res, err := svc.Do(ctx)
	if err != nil {
		return trading.OrderHandle{}, g.classify("place order", err)
	}

	handle := trading.OrderHandle{
		OrderID:     res.OrderID,
		Symbol:      res.Symbol,
		Side:        trading.Side(res.Side),
		Type:        trading.OrderType(res.Type),
		Status:      trading.OrderStatus(res.Status),
		Price:       parseDecimal(res.Price),
		OrigQty:     parseDecimal(res.OrigQuantity),
		ExecutedQty: parseDecimal(res.ExecutedQuantity),
		AvgPrice:    parseDecimal(res.AvgPrice),
		UpdatedAt:   time.UnixMilli(res.UpdateTime),
	}

	g.logger.Info("order placed",
		zap.Int64("order_id", handle.OrderID),
		zap.String("symbol", handle.Symbol),
		zap.String("status", string(handle.Status)),
	)
	return handle, nil
}

// CancelOrder cancels an open order. Cancelling an order that has already
// reached a terminal state is reported as CancelAlreadyResolved with the
// final status, so callers can tell the benign case apart.
func (g *Gateway) CancelOrder(ctx context.Context, symbol string, orderID int64) (trading.CancelResult, error) {
	res, err := g.client.NewCancelOrderService().
		Symbol(symbol).
		OrderID(orderID).
		Do(ctx)
	if err != nil {
		classified := g.classify("cancel order", err)
		if !errors.Is(classified, trading.ErrOrderNotFound) {
			return trading.CancelResult{}, classified
		}

		// Gone from the open set: fetch the final status for the report.
		handle, qerr := g.GetOrderStatus(ctx, symbol, orderID)
		if qerr != nil {
			g.logger.Debug("cancel target already resolved, final status unknown",
				zap.Int64("order_id", orderID), zap.Error(qerr))
			return trading.CancelResult{Outcome: trading.CancelAlreadyResolved}, nil
		}
		return trading.CancelResult{Outcome: trading.CancelAlreadyResolved, Status: handle.Status}, nil
	}

	g.logger.Info("order canceled",
		zap.Int64("order_id", orderID),
		zap.String("symbol", symbol),
	)
	return trading.CancelResult{Outcome: trading.CancelDone, Status: trading.OrderStatus(res.Status)}, nil
}

// GetOrderStatus re-queries an order.
func (g *Gateway) GetOrderStatus(ctx context.Context, symbol string, orderID int64) (trading.OrderHandle, error) {
	res, err := g.client.NewGetOrderService().
		Symbol(symbol).
		OrderID(orderID).
		Do(ctx)
	if err != nil {
		return trading.OrderHandle{}, g.classify("get order status", err)
	}

	return trading.OrderHandle{
		OrderID:     res.OrderID,
		Symbol:      res.Symbol,
		Side:        trading.Side(res.Side),
		Type:        trading.OrderType(res.Type),
		Status:      trading.OrderStatus(res.Status),
		Price:       parseDecimal(res.Price),
		OrigQty:     parseDecimal(res.OrigQuantity),
		ExecutedQty: parseDecimal(res.ExecutedQuantity),
		AvgPrice:    parseDecimal(res.AvgPrice),
		UpdatedAt:   time.UnixMilli(res.UpdateTime),
	}, nil
}

// GetCurrentPrice returns the last traded price for a symbol.
func (g *Gateway) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := g.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, g.classify("get current price", err)
	}
	for _, p := range prices {
		if p.Symbol == symbol {
			price, err := decimal.NewFromString(p.Price)
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to parse price %q: %w", p.Price, err)
			}
			return price, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %s", trading.ErrInvalidSymbol, symbol)
}

// GetBalance returns the available futures balance for an asset.
func (g *Gateway) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	balances, err := g.client.NewGetBalanceService().Do(ctx)
	if err != nil {
		return decimal.Zero, g.classify("get balance", err)
	}
	for _, b := range balances {
		if b.Asset == asset {
			avail, err := decimal.NewFromString(b.AvailableBalance)
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to parse balance %q: %w", b.AvailableBalance, err)
			}
			return avail, nil
		}
	}
	return decimal.Zero, fmt.Errorf("asset %s not found in futures balances", asset)
}

// GetSymbolFilters returns the venue trading rules for a symbol.
func (g *Gateway) GetSymbolFilters(ctx context.Context, symbol string) (trading.SymbolFilters, error) {
	info, err := g.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return trading.SymbolFilters{}, g.classify("get exchange info", err)
	}

	for i := range info.Symbols {
		s := &info.Symbols[i]
		if s.Symbol != symbol {
			continue
		}
		var filters trading.SymbolFilters
		if lot := s.LotSizeFilter(); lot != nil {
			filters.StepSize = parseDecimal(lot.StepSize)
			filters.MinQty = parseDecimal(lot.MinQuantity)
		}
		if pf := s.PriceFilter(); pf != nil {
			filters.TickSize = parseDecimal(pf.TickSize)
		}
		if mn := s.MinNotionalFilter(); mn != nil {
			filters.MinNotional = parseDecimal(mn.Notional)
		}
		return filters, nil
	}

	return trading.SymbolFilters{}, fmt.Errorf("%w: %s", trading.ErrInvalidSymbol, symbol)
}

// CancelAllOpenOrders cancels every open order on a symbol.
func (g *Gateway) CancelAllOpenOrders(ctx context.Context, symbol string) error {
	if err := g.client.NewCancelAllOpenOrdersService().Symbol(symbol).Do(ctx); err != nil {
		return g.classify("cancel all open orders", err)
	}
	g.logger.Info("all open orders canceled", zap.String("symbol", symbol))
	return nil
}

// ListOpenOrders returns all open orders on a symbol.
func (g *Gateway) ListOpenOrders(ctx context.Context, symbol string) ([]trading.OrderHandle, error) {
	orders, err := g.client.NewListOpenOrdersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, g.classify("list open orders", err)
	}

	handles := make([]trading.OrderHandle, 0, len(orders))
	for _, o := range orders {
		handles = append(handles, trading.OrderHandle{
			OrderID:     o.OrderID,
			Symbol:      o.Symbol,
			Side:        trading.Side(o.Side),
			Type:        trading.OrderType(o.Type),
			Status:      trading.OrderStatus(o.Status),
			Price:       parseDecimal(o.Price),
			OrigQty:     parseDecimal(o.OrigQuantity),
			ExecutedQty: parseDecimal(o.ExecutedQuantity),
			AvgPrice:    parseDecimal(o.AvgPrice),
			UpdatedAt:   time.UnixMilli(o.UpdateTime),
		})
	}
	return handles, nil
}

// classify maps venue error codes into the gateway taxonomy and records the
// failure in the audit log with full context.
func (g *Gateway) classify(operation string, err error) error {
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) {
		g.logger.Error("gateway call failed", zap.String("operation", operation), zap.Error(err))
		return fmt.Errorf("%s: %w: %v", operation, trading.ErrNetwork, err)
	}

	g.logger.Error("gateway call rejected",
		zap.String("operation", operation),
		zap.Int64("code", apiErr.Code),
		zap.String("message", apiErr.Message),
	)

	var sentinel error
	switch apiErr.Code {
	case -1022, -2014, -2015:
		sentinel = trading.ErrAuth
	case -1121:
		sentinel = trading.ErrInvalidSymbol
	case -2018, -2019:
		sentinel = trading.ErrInsufficientBalance
	case -4164:
		sentinel = trading.ErrMinNotional
	case -1003, -1015:
		sentinel = trading.ErrRateLimit
	case -2011, -2013:
		sentinel = trading.ErrOrderNotFound
	default:
		return fmt.Errorf("%s: binance error %d: %s", operation, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%s: %w (code %d: %s)", operation, sentinel, apiErr.Code, apiErr.Message)
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
