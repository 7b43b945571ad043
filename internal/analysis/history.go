// Package analysis holds the offline CSV reporters. They never touch the
// trading gateway; their only inputs are flat files and the public sentiment
// feed.
package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
)

// Trade is one fill from the trade-history export. A large order can appear
// as many fills.
type Trade struct {
	Coin      string
	Price     float64
	SizeUSD   float64
	Side      string
	Direction string
	ClosedPnL float64
	Fee       float64
	Timestamp string
}

// OverallStats aggregates the whole history.
type OverallStats struct {
	TotalTrades int
	UniqueCoins int
	VolumeUSD   float64
	RealizedPnL float64
	Fees        float64
	NetPnL      float64
	BuyTrades   int
	SellTrades  int
}

// CoinStats aggregates a single coin.
type CoinStats struct {
	Coin        string
	Trades      int
	VolumeUSD   float64
	RealizedPnL float64
	Fees        float64
	NetPnL      float64
	WinRate     float64
	AvgTradeUSD float64
}

// LoadTrades reads the trade-history CSV. Rows with unparseable numeric
// fields are skipped rather than failing the whole report.
func LoadTrades(path string, logger *zap.Logger) ([]Trade, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade history %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var trades []Trade
	skipped := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		t := Trade{
			Coin:      field(row, col, "Coin"),
			Side:      strings.ToUpper(field(row, col, "Side")),
			Direction: field(row, col, "Direction"),
			Timestamp: field(row, col, "Timestamp IST"),
		}
		var perr error
		t.Price, perr = parseFloat(field(row, col, "Execution Price"), perr)
		t.SizeUSD, perr = parseFloat(field(row, col, "Size USD"), perr)
		t.ClosedPnL, perr = parseFloat(field(row, col, "Closed PnL"), perr)
		t.Fee, perr = parseFloat(field(row, col, "Fee"), perr)
		if perr != nil || t.Coin == "" {
			skipped++
			continue
		}
		trades = append(trades, t)
	}

	logger.Info("loaded trade history",
		zap.String("path", path),
		zap.Int("trades", len(trades)),
		zap.Int("skipped_rows", skipped),
	)
	return trades, nil
}

// Summarize computes the overall portfolio statistics.
func Summarize(trades []Trade) OverallStats {
	stats := OverallStats{TotalTrades: len(trades)}
	coins := make(map[string]struct{})
	for _, t := range trades {
		coins[t.Coin] = struct{}{}
		stats.VolumeUSD += t.SizeUSD
		stats.RealizedPnL += t.ClosedPnL
		stats.Fees += t.Fee
		switch t.Side {
		case "BUY":
			stats.BuyTrades++
		case "SELL":
			stats.SellTrades++
		}
	}
	stats.UniqueCoins = len(coins)
	stats.NetPnL = stats.RealizedPnL - stats.Fees
	return stats
}

// SummarizeByCoin computes per-coin statistics sorted by volume descending.
func SummarizeByCoin(trades []Trade) []CoinStats {
	byCoin := make(map[string][]Trade)
	for _, t := range trades {
		byCoin[t.Coin] = append(byCoin[t.Coin], t)
	}

	stats := make([]CoinStats, 0, len(byCoin))
	for coin, coinTrades := range byCoin {
		s := CoinStats{Coin: coin, Trades: len(coinTrades)}
		wins, closing := 0, 0
		for _, t := range coinTrades {
			s.VolumeUSD += t.SizeUSD
			s.RealizedPnL += t.ClosedPnL
			s.Fees += t.Fee
			if t.ClosedPnL != 0 {
				closing++
				if t.ClosedPnL > 0 {
					wins++
				}
			}
		}
		s.NetPnL = s.RealizedPnL - s.Fees
		if closing > 0 {
			s.WinRate = float64(wins) / float64(closing) * 100
		}
		s.AvgTradeUSD = s.VolumeUSD / float64(len(coinTrades))
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].VolumeUSD > stats[j].VolumeUSD })
	return stats
}

// FilterByCoin keeps only trades for one coin (case-insensitive).
func FilterByCoin(trades []Trade, coin string) []Trade {
	var out []Trade
	for _, t := range trades {
		if strings.EqualFold(t.Coin, coin) {
			out = append(out, t)
		}
	}
	return out
}

// WriteHistoryReport renders the aggregates. topN bounds the per-coin table.
func WriteHistoryReport(w io.Writer, trades []Trade, topN int) {
	overall := Summarize(trades)
	coins := SummarizeByCoin(trades)
	if topN > 0 && len(coins) > topN {
		coins = coins[:topN]
	}

	fmt.Fprintf(w, "Total Trades   : %d\n", overall.TotalTrades)
	fmt.Fprintf(w, "Unique Coins   : %d\n", overall.UniqueCoins)
	fmt.Fprintf(w, "Total Volume   : $%.2f\n", overall.VolumeUSD)
	fmt.Fprintf(w, "Realized PnL   : $%.2f\n", overall.RealizedPnL)
	fmt.Fprintf(w, "Total Fees     : $%.2f\n", overall.Fees)
	fmt.Fprintf(w, "Net PnL        : $%.2f\n", overall.NetPnL)
	fmt.Fprintf(w, "Buy/Sell Split : %d / %d\n\n", overall.BuyTrades, overall.SellTrades)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COIN\tTRADES\tVOLUME\tNET PNL\tWIN%")
	for _, c := range coins {
		fmt.Fprintf(tw, "%s\t%d\t$%.2f\t$%.2f\t%.1f%%\n",
			c.Coin, c.Trades, c.VolumeUSD, c.NetPnL, c.WinRate)
	}
	tw.Flush()
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string, prev error) (float64, error) {
	if prev != nil {
		return 0, prev
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
