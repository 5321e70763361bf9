package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP API
	APIAddr string
	APIKey  string
	DevMode bool

	// Pool bootstrap
	AssetA         string
	AssetB         string
	FeeRateBps     uint64
	AdminAccount   string
	CustodyAccount string

	// Demo/bootstrap balances minted to the admin account at startup.
	SeedAmountA uint64
	SeedAmountB uint64

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// HTTP server tuning
	RequestTimeout time.Duration
}

func Load() *Config {
	return &Config{
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		AssetA:         getEnv("POOL_ASSET_A", ""),
		AssetB:         getEnv("POOL_ASSET_B", ""),
		FeeRateBps:     getUintEnv("POOL_FEE_BPS", 30),
		AdminAccount:   getEnv("POOL_ADMIN_ACCOUNT", "admin"),
		CustodyAccount: getEnv("POOL_CUSTODY_ACCOUNT", "pool"),
		SeedAmountA:    getUintEnv("POOL_SEED_A", 0),
		SeedAmountB:    getUintEnv("POOL_SEED_B", 0),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "amm"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) Validate() error {
	if c.AssetA == "" || c.AssetB == "" {
		return fmt.Errorf("POOL_ASSET_A and POOL_ASSET_B are required")
	}
	if c.AssetA == c.AssetB {
		return fmt.Errorf("pool assets must differ")
	}
	if c.FeeRateBps > 1000 {
		return fmt.Errorf("POOL_FEE_BPS must be <= 1000")
	}
	if c.AdminAccount == "" {
		return fmt.Errorf("POOL_ADMIN_ACCOUNT is required")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getUintEnv(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
