package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Futures REST endpoints. The testnet endpoint is the default; production
// must be selected explicitly via USE_TESTNET=false.
const (
	TestnetBaseURL    = "https://testnet.binancefuture.com"
	ProductionBaseURL = "https://fapi.binance.com"
)

// Config carries everything the bot needs at startup. It is built once in
// main and passed by value into constructors; nothing mutates it afterwards.
type Config struct {
	APIKey    string
	SecretKey string

	// UseTestnet selects the Binance Futures testnet endpoint.
	UseTestnet bool

	// QuoteAsset is the required symbol suffix (USDT-M futures only).
	QuoteAsset string

	// LogFile receives the append-only audit log.
	LogFile string

	// OCOPollInterval and GridPollInterval pace the monitoring loops.
	OCOPollInterval  time.Duration
	GridPollInterval time.Duration

	// MonitorTimeout bounds OCO monitoring; zero means no bound.
	MonitorTimeout time.Duration
}

// Load reads configuration from a .env file (if present) and the process
// environment. A missing .env file is not an error; missing credentials are,
// since every trading command needs them.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIKey:           os.Getenv("BINANCE_API_KEY"),
		SecretKey:        os.Getenv("BINANCE_API_SECRET"),
		UseTestnet:       envBool("USE_TESTNET", true),
		QuoteAsset:       envString("QUOTE_ASSET", "USDT"),
		LogFile:          envString("LOG_FILE", "bot.log"),
		OCOPollInterval:  envDuration("OCO_POLL_INTERVAL", 5*time.Second),
		GridPollInterval: envDuration("GRID_POLL_INTERVAL", 10*time.Second),
		MonitorTimeout:   envDuration("MONITOR_TIMEOUT", 24*time.Hour),
	}

	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return cfg, fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET must be set in the environment or a .env file")
	}

	return cfg, nil
}

// LoadAnalysis is Load without the credential requirement, for the offline
// CSV reporting commands.
func LoadAnalysis() Config {
	_ = godotenv.Load()

	return Config{
		QuoteAsset: envString("QUOTE_ASSET", "USDT"),
		LogFile:    envString("LOG_FILE", "bot.log"),
	}
}

// BaseURL returns the active REST endpoint.
func (c Config) BaseURL() string {
	if c.UseTestnet {
		return TestnetBaseURL
	}
	return ProductionBaseURL
}

// MaskedKey returns the API key safe for printing.
func (c Config) MaskedKey() string {
	if len(c.APIKey) <= 4 {
		return "NOT SET"
	}
	return c.APIKey[:4] + "****"
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
