package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	VenueWallet VenueWalletConfig
	Chain       ChainConfig
	Deposits    DepositConfig
	Payouts     PayoutConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// VenueWalletConfig points at the venue POS wallet service.
type VenueWalletConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ChainConfig points at the custody payment-network API used for payouts.
type ChainConfig struct {
	BaseURL        string
	APIKey         string
	CustodyAccount string
	Timeout        time.Duration
}

type DepositConfig struct {
	// WebhookSecret signs inbound deposit notifications (HMAC-SHA256 over
	// the raw body). Empty disables verification (development only).
	WebhookSecret string
}

type PayoutConfig struct {
	// Interval between automatic payout runs. Zero disables the loop.
	Interval time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DB_DSN", "tably:tably@tcp(localhost:3306)/tably?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASS"),
			DB:       getenvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "tably",
		},
		VenueWallet: VenueWalletConfig{
			BaseURL: getenv("VENUE_WALLET_URL", "https://pos-wallet.example.com"),
			APIKey:  os.Getenv("VENUE_WALLET_API_KEY"),
			Timeout: 15 * time.Second,
		},
		Chain: ChainConfig{
			BaseURL:        getenv("CHAIN_API_URL", "https://custody.example.com"),
			APIKey:         os.Getenv("CHAIN_API_KEY"),
			CustodyAccount: os.Getenv("CHAIN_CUSTODY_ACCOUNT"),
			Timeout:        30 * time.Second,
		},
		Deposits: DepositConfig{
			WebhookSecret: os.Getenv("DEPOSIT_WEBHOOK_SECRET"),
		},
		Payouts: PayoutConfig{
			Interval: time.Duration(getenvInt("PAYOUT_INTERVAL_SEC", 300)) * time.Second,
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
