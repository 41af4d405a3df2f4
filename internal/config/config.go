package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port            int
	TenantsFile     string
	BinanceBaseURL  string
	RedisURL        string
	SnapshotTTLSecs int
}

func Load() *Config {
	cfg := &Config{
		BinanceBaseURL: strings.TrimSpace(os.Getenv("BINANCE_BASE_URL")),
		RedisURL:       os.Getenv("REDIS_URL"),
	}

	cfg.Port = 5000
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}

	cfg.TenantsFile = strings.TrimSpace(os.Getenv("TENANTS_FILE"))
	if cfg.TenantsFile == "" {
		cfg.TenantsFile = "bot_config.json"
	}

	if cfg.BinanceBaseURL == "" {
		log.Println("Warning: BINANCE_BASE_URL not set, using the Binance spot testnet")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, snapshot cache will be disabled")
	}

	cfg.SnapshotTTLSecs = 10
	if v := strings.TrimSpace(os.Getenv("SNAPSHOT_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SnapshotTTLSecs = n
		}
	}

	return cfg
}
