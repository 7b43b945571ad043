package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/analysis"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/configs"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/logging"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/orders"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/strategy"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading/binance"
	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/validate"
)

const usageText = `Binance USDT-M Futures trading bot

Usage:
  binance-bot <command> [arguments]

Trading commands:
  market     SYMBOL SIDE QUANTITY
  limit      SYMBOL SIDE QUANTITY PRICE [--tif GTC|IOC|FOK]
  stop-limit SYMBOL SIDE QUANTITY STOP_PRICE LIMIT_PRICE
  oco        SYMBOL SIDE QUANTITY TAKE_PROFIT_PRICE STOP_LOSS_PRICE [--no-monitor]
  twap       SYMBOL SIDE TOTAL_QUANTITY DURATION_SECONDS CHUNKS
  grid       SYMBOL LOWER_PRICE UPPER_PRICE LEVELS QTY_PER_LEVEL [--no-monitor]

Account commands:
  price      SYMBOL
  balance    [ASSET]
  cancel-all SYMBOL

Analysis commands:
  history    [--file PATH] [--coin COIN] [--top N]
  sentiment  [--file PATH] [--latest N] [--signal] [--live]
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "market":
		return cmdMarket(rest)
	case "limit":
		return cmdLimit(rest)
	case "stop-limit":
		return cmdStopLimit(rest)
	case "oco":
		return cmdOCO(rest)
	case "twap":
		return cmdTWAP(rest)
	case "grid":
		return cmdGrid(rest)
	case "price":
		return cmdPrice(rest)
	case "balance":
		return cmdBalance(rest)
	case "cancel-all":
		return cmdCancelAll(rest)
	case "history":
		return cmdHistory(rest)
	case "sentiment":
		return cmdSentiment(rest)
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usageText)
		return 1
	}
}

// setup builds the shared trading dependencies: config, audit logger,
// gateway, and an interrupt-aware context. Ctrl-C cancels the polling loops
// but never cancels orders already resting on the exchange.
func setup() (configs.Config, *zap.Logger, *binance.Gateway, context.Context, context.CancelFunc, error) {
	cfg, err := configs.Load()
	if err != nil {
		return configs.Config{}, nil, nil, nil, nil, err
	}
	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		return configs.Config{}, nil, nil, nil, nil, err
	}
	gw := binance.New(cfg, logger)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return cfg, logger, gw, ctx, cancel, nil
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "interrupted; orders already placed remain live on the exchange")
	}
	return 1
}

func parseDecimalArg(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &validate.InputError{Field: name, Value: s, Reason: "must be a number"}
	}
	return d, nil
}

func cmdMarket(args []string) int {
	fs := flag.NewFlagSet("market", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: binance-bot market SYMBOL SIDE QUANTITY")
		return 1
	}

	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	side, err := validate.ParseSide(fs.Arg(1))
	if err != nil {
		return fail(err)
	}
	qty, err := parseDecimalArg("quantity", fs.Arg(2))
	if err != nil {
		return fail(err)
	}

	placer := orders.NewPlacer(gw, cfg.QuoteAsset, logger)
	handle, err := placer.Market(ctx, fs.Arg(0), side, qty)
	if err != nil {
		return fail(err)
	}
	printHandle(handle)
	return 0
}

func cmdLimit(args []string) int {
	fs := flag.NewFlagSet("limit", flag.ExitOnError)
	tif := fs.String("tif", "GTC", "time in force: GTC, IOC or FOK")
	fs.Parse(args)
	if fs.NArg() != 4 {
		fmt.Fprintln(os.Stderr, "usage: binance-bot limit SYMBOL SIDE QUANTITY PRICE [--tif GTC|IOC|FOK]")
		return 1
	}

	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	side, err := validate.ParseSide(fs.Arg(1))
	if err != nil {
		return fail(err)
	}
	qty, err := parseDecimalArg("quantity", fs.Arg(2))
	if err != nil {
		return fail(err)
	}
	price, err := parseDecimalArg("price", fs.Arg(3))
	if err != nil {
		return fail(err)
	}

	placer := orders.NewPlacer(gw, cfg.QuoteAsset, logger)
	handle, err := placer.Limit(ctx, fs.Arg(0), side, qty, price, trading.TimeInForce(*tif))
	if err != nil {
		return fail(err)
	}
	printHandle(handle)
	if handle.Status == trading.StatusNew {
		fmt.Printf("order resting on the book, fills when the market reaches %s\n", price)
	}
	return 0
}

func cmdStopLimit(args []string) int {
	fs := flag.NewFlagSet("stop-limit", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 5 {
		fmt.Fprintln(os.Stderr, "usage: binance-bot stop-limit SYMBOL SIDE QUANTITY STOP_PRICE LIMIT_PRICE")
		return 1
	}

	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	side, err := validate.ParseSide(fs.Arg(1))
	if err != nil {
		return fail(err)
	}
	qty, err := parseDecimalArg("quantity", fs.Arg(2))
	if err != nil {
		return fail(err)
	}
	stopPrice, err := parseDecimalArg("stopPrice", fs.Arg(3))
	if err != nil {
		return fail(err)
	}
	limitPrice, err := parseDecimalArg("price", fs.Arg(4))
	if err != nil {
		return fail(err)
	}

	placer := orders.NewPlacer(gw, cfg.QuoteAsset, logger)
	handle, err := placer.StopLimit(ctx, fs.Arg(0), side, qty, stopPrice, limitPrice)
	if err != nil {
		return fail(err)
	}
	printHandle(handle)
	return 0
}

func cmdOCO(args []string) int {
	fs := flag.NewFlagSet("oco", flag.ExitOnError)
	noMonitor := fs.Bool("no-monitor", false, "place both legs and return without polling")
	fs.Parse(args)
	if fs.NArg() != 5 {
		fmt.Fprintln(os.Stderr, "usage: binance-bot oco SYMBOL SIDE QUANTITY TAKE_PROFIT_PRICE STOP_LOSS_PRICE [--no-monitor]")
		return 1
	}

	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	side, err := validate.ParseSide(fs.Arg(1))
	if err != nil {
		return fail(err)
	}
	qty, err := parseDecimalArg("quantity", fs.Arg(2))
	if err != nil {
		return fail(err)
	}
	tpPrice, err := parseDecimalArg("takeProfitPrice", fs.Arg(3))
	if err != nil {
		return fail(err)
	}
	slPrice, err := parseDecimalArg("stopLossPrice", fs.Arg(4))
	if err != nil {
		return fail(err)
	}

	oco := strategy.NewOCO(gw, cfg.QuoteAsset, cfg.OCOPollInterval, cfg.MonitorTimeout, logger)
	result, err := oco.Execute(ctx, strategy.OCOParams{
		Symbol:          fs.Arg(0),
		Side:            side,
		Quantity:        qty,
		TakeProfitPrice: tpPrice,
		StopLossPrice:   slPrice,
	}, !*noMonitor)
	if err != nil {
		if result != nil {
			printOCOResult(result)
		}
		return fail(err)
	}

	printOCOResult(result)
	return 0
}

func printOCOResult(r *strategy.OCOResult) {
	fmt.Printf("take-profit order : %d (%s)\n", r.TakeProfit.OrderID, r.TakeProfit.Status)
	fmt.Printf("stop-loss order   : %d (%s)\n", r.StopLoss.OrderID, r.StopLoss.Status)
	fmt.Printf("pair state        : %s\n", r.State)
	if r.ResolvedLeg != "" {
		fmt.Printf("resolved leg      : %s filled at %s\n", r.ResolvedLeg, r.FillPrice)
		fmt.Printf("sibling status    : %s\n", r.CanceledStatus)
	}
	if r.Warning != "" {
		fmt.Printf("warning           : %s\n", r.Warning)
	}
}

func cmdTWAP(args []string) int {
	fs := flag.NewFlagSet("twap", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 5 {
		fmt.Fprintln(os.Stderr, "usage: binance-bot twap SYMBOL SIDE TOTAL_QUANTITY DURATION_SECONDS CHUNKS")
		return 1
	}

	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	side, err := validate.ParseSide(fs.Arg(1))
	if err != nil {
		return fail(err)
	}
	qty, err := parseDecimalArg("totalQuantity", fs.Arg(2))
	if err != nil {
		return fail(err)
	}
	durationSec, err := parseDecimalArg("duration", fs.Arg(3))
	if err != nil {
		return fail(err)
	}
	var chunks int
	if _, err := fmt.Sscanf(fs.Arg(4), "%d", &chunks); err != nil {
		return fail(&validate.InputError{Field: "chunks", Value: fs.Arg(4), Reason: "must be an integer"})
	}

	twap := strategy.NewTWAP(gw, cfg.QuoteAsset, logger)
	report, err := twap.Execute(ctx, strategy.TWAPParams{
		Symbol:        fs.Arg(0),
		Side:          side,
		TotalQuantity: qty,
		Duration:      time.Duration(durationSec.IntPart()) * time.Second,
		Chunks:        chunks,
	})
	if err != nil {
		if report != nil {
			printTWAPReport(report)
		}
		return fail(err)
	}

	printTWAPReport(report)
	if len(report.Failures) == chunks {
		return 1
	}
	return 0
}

func printTWAPReport(r *strategy.TWAPReport) {
	fmt.Printf("requested : %s\n", r.Requested)
	fmt.Printf("executed  : %s\n", r.Executed)
	fmt.Printf("vwap      : %s\n", r.VWAP)
	fmt.Printf("chunks    : %d filled, %d failed\n", len(r.Fills), len(r.Failures))
	for _, f := range r.Failures {
		fmt.Printf("  chunk %d failed: %v\n", f.Index, f.Err)
	}
}

func cmdGrid(args []string) int {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	noMonitor := fs.Bool("no-monitor", false, "place the ladder and return without polling")
	fs.Parse(args)
	if fs.NArg() != 5 {
		fmt.Fprintln(os.Stderr, "usage: binance-bot grid SYMBOL LOWER_PRICE UPPER_PRICE LEVELS QTY_PER_LEVEL [--no-monitor]")
		return 1
	}

	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	lower, err := parseDecimalArg("lowerPrice", fs.Arg(1))
	if err != nil {
		return fail(err)
	}
	upper, err := parseDecimalArg("upperPrice", fs.Arg(2))
	if err != nil {
		return fail(err)
	}
	var levels int
	if _, err := fmt.Sscanf(fs.Arg(3), "%d", &levels); err != nil {
		return fail(&validate.InputError{Field: "levels", Value: fs.Arg(3), Reason: "must be an integer"})
	}
	qty, err := parseDecimalArg("quantityPerLevel", fs.Arg(4))
	if err != nil {
		return fail(err)
	}

	grid := strategy.NewGrid(gw, cfg.QuoteAsset, cfg.GridPollInterval, logger)
	report, err := grid.Execute(ctx, strategy.GridParams{
		Symbol:           fs.Arg(0),
		LowerPrice:       lower,
		UpperPrice:       upper,
		Levels:           levels,
		QuantityPerLevel: qty,
	}, !*noMonitor)
	if err != nil && report == nil {
		return fail(err)
	}

	fmt.Printf("price points : %d\n", len(report.PricePoints))
	fmt.Printf("orders placed: %d\n", report.OrdersPlaced)
	fmt.Printf("fills        : %d (replenished %d, skipped %d)\n",
		report.Fills, report.Replenished, report.SkippedRearms)
	if err != nil {
		fmt.Fprintln(os.Stderr, "grid monitoring stopped; resting orders remain live")
		if !errors.Is(err, context.Canceled) {
			return fail(err)
		}
	}
	return 0
}

func cmdPrice(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: binance-bot price SYMBOL")
		return 1
	}

	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	if err := validate.Symbol(args[0], cfg.QuoteAsset); err != nil {
		return fail(err)
	}
	price, err := gw.GetCurrentPrice(ctx, args[0])
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%s: %s\n", args[0], price)
	return 0
}

func cmdBalance(args []string) int {
	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	asset := cfg.QuoteAsset
	if len(args) > 0 {
		asset = args[0]
	}
	balance, err := gw.GetBalance(ctx, asset)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%s available: %s\n", asset, balance)
	return 0
}

func cmdCancelAll(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: binance-bot cancel-all SYMBOL")
		return 1
	}

	cfg, logger, gw, ctx, cancel, err := setup()
	if err != nil {
		return fail(err)
	}
	defer cancel()
	defer logger.Sync()

	if err := validate.Symbol(args[0], cfg.QuoteAsset); err != nil {
		return fail(err)
	}
	if err := gw.CancelAllOpenOrders(ctx, args[0]); err != nil {
		return fail(err)
	}
	fmt.Printf("all open orders on %s canceled\n", args[0])
	return 0
}

func cmdHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	file := fs.String("file", "historical_data.csv", "path to the trade history CSV")
	coin := fs.String("coin", "", "filter by coin")
	top := fs.Int("top", 10, "show top N coins by volume")
	fs.Parse(args)

	cfg := configs.LoadAnalysis()
	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()

	trades, err := analysis.LoadTrades(*file, logger)
	if err != nil {
		return fail(err)
	}
	if *coin != "" {
		trades = analysis.FilterByCoin(trades, *coin)
		if len(trades) == 0 {
			fmt.Fprintf(os.Stderr, "no trades found for coin %q\n", *coin)
			return 1
		}
	}
	analysis.WriteHistoryReport(os.Stdout, trades, *top)
	return 0
}

func cmdSentiment(args []string) int {
	fs := flag.NewFlagSet("sentiment", flag.ExitOnError)
	file := fs.String("file", "fear_greed_index.csv", "path to the sentiment index CSV")
	latest := fs.Int("latest", 0, "analyze only the latest N days")
	signalFlag := fs.Bool("signal", false, "show the contrarian trading signal")
	live := fs.Bool("live", false, "fetch the current reading from the live feed")
	fs.Parse(args)

	cfg := configs.LoadAnalysis()
	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		return fail(err)
	}
	defer logger.Sync()

	if *live {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		entry, err := analysis.FetchLatestSentiment(ctx)
		if err != nil {
			return fail(err)
		}
		fmt.Printf("Live Reading: %d/100 (%s)\n", entry.Value, analysis.SentimentLabel(entry.Value))
		if *signalFlag {
			fmt.Printf("Contrarian Signal: %s\n", analysis.SentimentSignal(entry.Value))
		}
		return 0
	}

	entries, err := analysis.LoadSentiment(*file, logger)
	if err != nil {
		return fail(err)
	}
	analysis.WriteSentimentReport(os.Stdout, entries, *latest, *signalFlag)
	return 0
}

func printHandle(h trading.OrderHandle) {
	fmt.Printf("order id : %d\n", h.OrderID)
	fmt.Printf("symbol   : %s\n", h.Symbol)
	fmt.Printf("side     : %s\n", h.Side)
	fmt.Printf("type     : %s\n", h.Type)
	fmt.Printf("status   : %s\n", h.Status)
	if h.ExecutedQty.IsPositive() {
		fmt.Printf("filled   : %s @ %s\n", h.ExecutedQty, h.AvgPrice)
	}
}
