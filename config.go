package z402

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Blessedbiello/Z402/pkg/budget"
	"github.com/Blessedbiello/Z402/pkg/redisconn"
)

// Configuration errors.
var (
	ErrParsingConfig = errors.New("failed to parse environment into config")
)

// BudgetBackend selects where the spend ledger lives.
type BudgetBackend string

const (
	BudgetBackendMemory BudgetBackend = "memory"
	BudgetBackendRedis  BudgetBackend = "redis"
)

// Config holds client settings loadable from the environment (and an
// optional .env file).
type Config struct {
	APIKey     string        `env:"Z402_API_KEY"`
	Network    Network       `env:"Z402_NETWORK" envDefault:"testnet"`
	BaseURL    string        `env:"Z402_BASE_URL"`
	Timeout    time.Duration `env:"Z402_TIMEOUT" envDefault:"30s"`
	MaxRetries int           `env:"Z402_MAX_RETRIES" envDefault:"3"`

	// Budget limits as decimal strings; the daily limit enables the ledger.
	DailyLimit       string `env:"Z402_DAILY_LIMIT"`
	HourlyLimit      string `env:"Z402_HOURLY_LIMIT"`
	TransactionLimit string `env:"Z402_TRANSACTION_LIMIT"`

	BudgetBackend BudgetBackend `env:"Z402_BUDGET_BACKEND" envDefault:"memory"`
	BudgetKey     string        `env:"Z402_BUDGET_KEY" envDefault:"z402:budget"`
	Redis         redisconn.Config

	WebhookSecret string `env:"Z402_WEBHOOK_SECRET"`
}

var loadEnvFile sync.Once

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded once per process when present.
func LoadConfig() (Config, error) {
	loadEnvFile.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// NewFromEnv builds a client from environment configuration, wiring a
// budget manager when a daily limit is set. With the redis backend the
// ledger is shared across every process using the same budget key.
func NewFromEnv(ctx context.Context, extra ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(ctx, cfg, extra...)
}

// NewFromConfig builds a client from an explicit Config. Options in extra
// are applied after the config-derived ones and take precedence.
func NewFromConfig(ctx context.Context, cfg Config, extra ...Option) (*Client, error) {
	opts := []Option{
		WithNetwork(cfg.Network),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}

	if cfg.DailyLimit != "" {
		limits, err := budget.ParseLimits(cfg.DailyLimit, cfg.HourlyLimit, cfg.TransactionLimit)
		if err != nil {
			return nil, err
		}

		var budgetOpts []budget.Option
		if cfg.BudgetBackend == BudgetBackendRedis {
			rdb, err := redisconn.Connect(ctx, cfg.Redis)
			if err != nil {
				return nil, fmt.Errorf("connect budget store: %w", err)
			}
			budgetOpts = append(budgetOpts, budget.WithStore(budget.NewRedisStore(rdb, cfg.BudgetKey)))
		}

		mgr, err := budget.New(limits, budgetOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithBudget(mgr))
	}

	opts = append(opts, extra...)
	return New(cfg.APIKey, opts...)
}
