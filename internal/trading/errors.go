package trading

import (
	"context"
	"errors"
	"net"
)

// Gateway error taxonomy. The non-retryable sentinels are surfaced to the
// operator verbatim together with the venue's error code; transient errors
// are retried by the polling loops.
var (
	ErrAuth                = errors.New("authentication failed")
	ErrInvalidSymbol       = errors.New("invalid symbol")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrMinNotional         = errors.New("order below minimum notional")
	ErrRateLimit           = errors.New("rate limit exceeded")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNetwork             = errors.New("network error")
)

// IsTransient reports whether err is worth retrying on the next poll tick:
// rate limiting, network failures and timeouts. Everything else aborts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimit) || errors.Is(err, ErrNetwork) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
