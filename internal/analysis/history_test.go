package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyCSV = `Coin,Execution Price,Size USD,Side,Direction,Closed PnL,Fee,Timestamp IST
BTC,60000,1200.50,BUY,Open Long,0,0.60,2025-01-02 10:00
BTC,61000,1220.00,SELL,Close Long,20.00,0.61,2025-01-03 11:00
ETH,3000,900.00,BUY,Open Long,0,0.45,2025-01-04 09:30
ETH,2900,870.00,SELL,Close Long,-30.00,0.44,2025-01-05 16:00
SOL,150,300.00,BUY,Open Long,0,0.15,2025-01-06 12:00
SOL,not-a-number,300.00,SELL,Close Long,5,0.15,2025-01-07 12:00
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTrades(t *testing.T) {
	trades, err := LoadTrades(writeTempCSV(t, historyCSV), nil)
	require.NoError(t, err)

	// The unparseable SOL row is skipped, not fatal.
	require.Len(t, trades, 5)
	assert.Equal(t, "BTC", trades[0].Coin)
	assert.Equal(t, "BUY", trades[0].Side)
	assert.InDelta(t, 1200.50, trades[0].SizeUSD, 1e-9)
	assert.InDelta(t, 20.00, trades[1].ClosedPnL, 1e-9)
}

func TestLoadTradesMissingFile(t *testing.T) {
	_, err := LoadTrades(filepath.Join(t.TempDir(), "nope.csv"), nil)
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	trades, err := LoadTrades(writeTempCSV(t, historyCSV), nil)
	require.NoError(t, err)

	stats := Summarize(trades)
	assert.Equal(t, 5, stats.TotalTrades)
	assert.Equal(t, 3, stats.UniqueCoins)
	assert.Equal(t, 3, stats.BuyTrades)
	assert.Equal(t, 2, stats.SellTrades)
	assert.InDelta(t, 4490.50, stats.VolumeUSD, 1e-9)
	assert.InDelta(t, -10.00, stats.RealizedPnL, 1e-9)
	assert.InDelta(t, 2.25, stats.Fees, 1e-9)
	assert.InDelta(t, -12.25, stats.NetPnL, 1e-9)
}

func TestSummarizeByCoin(t *testing.T) {
	trades, err := LoadTrades(writeTempCSV(t, historyCSV), nil)
	require.NoError(t, err)

	stats := SummarizeByCoin(trades)
	require.Len(t, stats, 3)

	// Sorted by volume descending.
	assert.Equal(t, "BTC", stats[0].Coin)
	assert.Equal(t, "ETH", stats[1].Coin)
	assert.Equal(t, "SOL", stats[2].Coin)

	// BTC: one closing trade, one win.
	assert.Equal(t, 2, stats[0].Trades)
	assert.InDelta(t, 100.0, stats[0].WinRate, 1e-9)

	// ETH: one closing trade, zero wins.
	assert.InDelta(t, 0.0, stats[1].WinRate, 1e-9)

	// SOL: no closing trades at all, win rate stays zero.
	assert.InDelta(t, 0.0, stats[2].WinRate, 1e-9)
}

func TestFilterByCoin(t *testing.T) {
	trades, err := LoadTrades(writeTempCSV(t, historyCSV), nil)
	require.NoError(t, err)

	btc := FilterByCoin(trades, "btc")
	require.Len(t, btc, 2)
	for _, tr := range btc {
		assert.Equal(t, "BTC", tr.Coin)
	}

	assert.Empty(t, FilterByCoin(trades, "DOGE"))
}

func TestWriteHistoryReport(t *testing.T) {
	trades, err := LoadTrades(writeTempCSV(t, historyCSV), nil)
	require.NoError(t, err)

	var sb strings.Builder
	WriteHistoryReport(&sb, trades, 2)
	out := sb.String()

	assert.Contains(t, out, "Total Trades   : 5")
	assert.Contains(t, out, "Unique Coins   : 3")
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "ETH")
	// topN 2 cuts the per-coin table before SOL; the header block still
	// counts it.
	assert.NotContains(t, out, "SOL")
}
