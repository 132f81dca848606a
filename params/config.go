package params

import (
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultSeparator is printed by the host after every non-empty report.
var DefaultSeparator = strings.Repeat("-", 40)

type Log struct {
	File  string `env:"LOG_FILE"`
	Level string `env:"LOG_LEVEL"`
}

type Storage struct {
	// JournalFile receives every applied state-changing command. Empty disables it.
	JournalFile string `env:"JOURNAL_FILE"`
	// TradeDB is the pebble directory for the trade tape. Empty keeps trades in memory.
	TradeDB string `env:"TRADE_DB"`
}

type API struct {
	// Addr of the read-only inspection API, e.g. ":8080". Empty disables it.
	Addr        string   `env:"API_ADDR"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

type Config struct {
	Symbol    string `env:"SYMBOL"`
	Separator string `env:"SEPARATOR"`

	Log     Log
	Storage Storage
	API     API
}

// Default is the configuration used for anything the environment leaves unset.
func Default() Config {
	return Config{
		Symbol:    "DEFAULT",
		Separator: DefaultSeparator,
		Log: Log{
			File:  "data/matchd.log",
			Level: "info",
		},
		API: API{
			CORSOrigins: []string{"http://localhost:3000"},
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	// The .env file is optional
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	// Unset variables keep the values from Default.
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	if cfg.Separator == "" {
		cfg.Separator = DefaultSeparator
	}
	return cfg, nil
}
