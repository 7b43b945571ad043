package analysis

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/utils/request"
)

// Fear & Greed thresholds on the 0-100 scale.
const (
	ExtremeFearThreshold  = 25
	FearThreshold         = 45
	GreedThreshold        = 55
	ExtremeGreedThreshold = 75
)

// fngAPIURL is the public feed the historical CSV snapshots come from.
const fngAPIURL = "https://api.alternative.me/fng/"

// SentimentEntry is one daily index reading.
type SentimentEntry struct {
	Date           string
	Value          int
	Classification string
}

// SentimentStats summarizes a window of readings.
type SentimentStats struct {
	PeriodStart      string
	PeriodEnd        string
	TotalDays        int
	Average          float64
	Min              int
	Max              int
	Latest           SentimentEntry
	ExtremeFearDays  int
	ExtremeGreedDays int
	Distribution     map[string]int
}

// LoadSentiment reads the daily index CSV (columns: timestamp, value,
// classification, date) sorted by date ascending.
func LoadSentiment(path string, logger *zap.Logger) ([]SentimentEntry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sentiment data %s: %w", path, err)
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
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var entries []SentimentEntry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		value, err := strconv.Atoi(field(row, col, "value"))
		if err != nil {
			continue
		}
		entries = append(entries, SentimentEntry{
			Date:           field(row, col, "date"),
			Value:          value,
			Classification: field(row, col, "classification"),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	logger.Info("loaded sentiment index",
		zap.String("path", path),
		zap.Int("entries", len(entries)),
	)
	return entries, nil
}

// FetchLatestSentiment pulls the current reading from the live feed.
func FetchLatestSentiment(ctx context.Context) (SentimentEntry, error) {
	resp, err := request.Client.R().SetContext(ctx).Get(fngAPIURL)
	if err != nil {
		return SentimentEntry{}, fmt.Errorf("failed to fetch sentiment index: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return SentimentEntry{}, fmt.Errorf("sentiment feed returned status %d", resp.StatusCode())
	}

	var payload struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
			Timestamp      string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return SentimentEntry{}, fmt.Errorf("failed to decode sentiment feed: %w", err)
	}
	if len(payload.Data) == 0 {
		return SentimentEntry{}, fmt.Errorf("sentiment feed returned no data")
	}

	value, err := strconv.Atoi(payload.Data[0].Value)
	if err != nil {
		return SentimentEntry{}, fmt.Errorf("failed to parse sentiment value %q: %w", payload.Data[0].Value, err)
	}
	return SentimentEntry{
		Date:           payload.Data[0].Timestamp,
		Value:          value,
		Classification: payload.Data[0].Classification,
	}, nil
}

// SentimentLabel maps a 0-100 value to its band.
func SentimentLabel(value int) string {
	switch {
	case value < ExtremeFearThreshold:
		return "Extreme Fear"
	case value < FearThreshold:
		return "Fear"
	case value < GreedThreshold:
		return "Neutral"
	case value < ExtremeGreedThreshold:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}

// SentimentSignal generates the contrarian signal: buy fear, sell greed.
func SentimentSignal(value int) string {
	switch {
	case value < ExtremeFearThreshold:
		return "BUY - market in extreme fear, potential bottom"
	case value < FearThreshold:
		return "ACCUMULATE - market fearful, cautious buying"
	case value < GreedThreshold:
		return "NEUTRAL - no sentiment edge"
	case value < ExtremeGreedThreshold:
		return "CAUTION - market greedy, consider taking profits"
	default:
		return "SELL - market in extreme greed, potential top"
	}
}

// AnalyzeSentiment computes statistics over the latestN most recent entries
// (all of them when latestN <= 0).
func AnalyzeSentiment(entries []SentimentEntry, latestN int) SentimentStats {
	if latestN > 0 && len(entries) > latestN {
		entries = entries[len(entries)-latestN:]
	}
	if len(entries) == 0 {
		return SentimentStats{Distribution: map[string]int{}}
	}

	stats := SentimentStats{
		PeriodStart:  entries[0].Date,
		PeriodEnd:    entries[len(entries)-1].Date,
		TotalDays:    len(entries),
		Min:          entries[0].Value,
		Max:          entries[0].Value,
		Latest:       entries[len(entries)-1],
		Distribution: make(map[string]int),
	}

	sum := 0
	for _, e := range entries {
		sum += e.Value
		if e.Value < stats.Min {
			stats.Min = e.Value
		}
		if e.Value > stats.Max {
			stats.Max = e.Value
		}
		if e.Value < ExtremeFearThreshold {
			stats.ExtremeFearDays++
		}
		if e.Value >= ExtremeGreedThreshold {
			stats.ExtremeGreedDays++
		}
		stats.Distribution[e.Classification]++
	}
	stats.Average = float64(sum) / float64(len(entries))
	return stats
}

// WriteSentimentReport renders the index summary.
func WriteSentimentReport(w io.Writer, entries []SentimentEntry, latestN int, showSignal bool) {
	stats := AnalyzeSentiment(entries, latestN)
	if stats.TotalDays == 0 {
		fmt.Fprintln(w, "no sentiment data to analyze")
		return
	}

	fmt.Fprintf(w, "Latest Reading : %d/100 (%s)\n", stats.Latest.Value, SentimentLabel(stats.Latest.Value))
	fmt.Fprintf(w, "Date           : %s\n", stats.Latest.Date)
	fmt.Fprintf(w, "Period         : %s to %s (%d days)\n", stats.PeriodStart, stats.PeriodEnd, stats.TotalDays)
	fmt.Fprintf(w, "Average        : %.1f/100\n", stats.Average)
	fmt.Fprintf(w, "Min / Max      : %d / %d\n", stats.Min, stats.Max)
	fmt.Fprintf(w, "Extreme Fear   : %d days\n", stats.ExtremeFearDays)
	fmt.Fprintf(w, "Extreme Greed  : %d days\n", stats.ExtremeGreedDays)

	order := []string{"Extreme Fear", "Fear", "Neutral", "Greed", "Extreme Greed"}
	fmt.Fprintln(w, "\nDistribution:")
	for _, cls := range order {
		count := stats.Distribution[cls]
		pct := float64(count) / float64(stats.TotalDays) * 100
		fmt.Fprintf(w, "  %-14s %5d (%5.1f%%)\n", cls, count, pct)
	}

	if showSignal {
		fmt.Fprintf(w, "\nContrarian Signal: %s\n", SentimentSignal(stats.Latest.Value))
	}
}
