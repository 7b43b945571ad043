package request

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the shared HTTP client for public (unauthenticated) APIs such as
// the sentiment index feed. Proxy settings come from the environment.
var Client = resty.New().
	SetTransport(&http.Transport{Proxy: http.ProxyFromEnvironment}).
	SetTimeout(10 * time.Second).
	SetRetryCount(3)
