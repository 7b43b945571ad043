// Package validate holds the pure input guards that run before any gateway
// call. Every validator is deterministic and touches no network state, so a
// rejected input never costs an API request.
package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Pruthvi1001/pruthvijain-binance-bot/internal/trading"
)

// InputError reports the offending field and value.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Symbol checks that s is an uppercase alphanumeric pair ending in the quote
// asset suffix (e.g. "USDT"). USDT-M futures only.
func Symbol(s, quoteAsset string) error {
	if s == "" {
		return &InputError{Field: "symbol", Value: s, Reason: "must not be empty"}
	}
	if s != strings.ToUpper(s) {
		return &InputError{
			Field:  "symbol",
			Value:  s,
			Reason: fmt.Sprintf("must be uppercase, did you mean %q", strings.ToUpper(s)),
		}
	}
	if !strings.HasSuffix(s, quoteAsset) {
		return &InputError{
			Field:  "symbol",
			Value:  s,
			Reason: fmt.Sprintf("must end with %q (%s-margined futures only)", quoteAsset, quoteAsset),
		}
	}
	if len(s) <= len(quoteAsset) {
		return &InputError{
			Field:  "symbol",
			Value:  s,
			Reason: fmt.Sprintf("too short, expected a base asset before %q", quoteAsset),
		}
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return &InputError{Field: "symbol", Value: s, Reason: "must contain only uppercase letters and digits"}
		}
	}
	return nil
}

// Side checks that s is BUY or SELL.
func Side(s trading.Side) error {
	if s != trading.SideBuy && s != trading.SideSell {
		return &InputError{Field: "side", Value: string(s), Reason: "must be BUY or SELL"}
	}
	return nil
}

// ParseSide normalizes a CLI argument into a Side.
func ParseSide(s string) (trading.Side, error) {
	side := trading.Side(strings.ToUpper(s))
	if err := Side(side); err != nil {
		return "", err
	}
	return side, nil
}

// Quantity checks that q is strictly positive.
func Quantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return &InputError{Field: "quantity", Value: q.String(), Reason: "must be greater than 0"}
	}
	return nil
}

// Price checks that a named price field is strictly positive.
func Price(field string, p decimal.Decimal) error {
	if !p.IsPositive() {
		return &InputError{Field: field, Value: p.String(), Reason: "must be greater than 0"}
	}
	return nil
}

// StopPrice checks the directional relationship between a stop trigger and
// the current market price: a SELL stop triggers on the way down and must sit
// below market, a BUY stop triggers on the way up and must sit above it.
func StopPrice(stop, market decimal.Decimal, side trading.Side) error {
	if err := Price("stopPrice", stop); err != nil {
		return err
	}
	if err := Price("marketPrice", market); err != nil {
		return err
	}
	if err := Side(side); err != nil {
		return err
	}

	switch side {
	case trading.SideSell:
		if stop.GreaterThanOrEqual(market) {
			return &InputError{
				Field:  "stopPrice",
				Value:  stop.String(),
				Reason: fmt.Sprintf("SELL stop must be below current price %s", market),
			}
		}
	case trading.SideBuy:
		if stop.LessThanOrEqual(market) {
			return &InputError{
				Field:  "stopPrice",
				Value:  stop.String(),
				Reason: fmt.Sprintf("BUY stop must be above current price %s", market),
			}
		}
	}
	return nil
}

// TimeInForce checks a limit order duration flag.
func TimeInForce(tif trading.TimeInForce) error {
	switch tif {
	case trading.TimeInForceGTC, trading.TimeInForceIOC, trading.TimeInForceFOK:
		return nil
	}
	return &InputError{Field: "timeInForce", Value: string(tif), Reason: "must be GTC, IOC or FOK"}
}
