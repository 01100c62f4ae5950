package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/fx"
)

type Config struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret     string `env:"JWT_SECRET,required,notEmpty"`
	Port          int    `env:"PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv        string `env:"APP_ENV" envDefault:"production"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// FXDefaultRates are used when no stored rate covers a pair, e.g.
	// FX_DEFAULT_RATES=USD_ARS:1000,USD_EUR:0.92.
	FXDefaultRates      map[string]string `env:"FX_DEFAULT_RATES" envKeyValSeparator:":"`
	FXPreferredRateType string            `env:"FX_PREFERRED_RATE_TYPE"`

	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
}

// Load reads the given dotenv files (".env" when none are named) and then
// the environment. Missing files are skipped and variables already set in
// the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if _, err := cfg.FallbackRates(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if _, err := cfg.PreferredRateType(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) FallbackRates() (map[string]decimal.Decimal, error) {
	rates, err := fx.ParseFallbackRates(c.FXDefaultRates)
	if err != nil {
		return nil, fmt.Errorf("FX_DEFAULT_RATES: %w", err)
	}
	return rates, nil
}

// PreferredRateType is nil when no preference is configured.
func (c *Config) PreferredRateType() (*domain.RateType, error) {
	if c.FXPreferredRateType == "" {
		return nil, nil
	}
	t, err := domain.ParseRateType(c.FXPreferredRateType)
	if err != nil {
		return nil, fmt.Errorf("FX_PREFERRED_RATE_TYPE: %w", err)
	}
	return &t, nil
}
