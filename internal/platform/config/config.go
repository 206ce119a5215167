package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string        `env:"DATABASE_URL"`
	DataEncryptionKey string        `env:"DATA_ENCRYPTION_KEY"`
	Environment       string        `env:"APP_ENV" envDefault:"development"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	Workers           int           `env:"PAYROLL_WORKERS" envDefault:"4"`
	StoreTimeout      time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	StoreMaxRetries   uint64        `env:"STORE_MAX_RETRIES" envDefault:"3"`
	StoreRetryBase    time.Duration `env:"STORE_RETRY_BASE" envDefault:"100ms"`
	DefaultTaxRegime  string        `env:"DEFAULT_TAX_REGIME" envDefault:"new"`
	RedisURL          string        `env:"REDIS_URL"`
	RunLockTTL        time.Duration `env:"RUN_LOCK_TTL" envDefault:"30m"`
	ScheduleInterval  time.Duration `env:"SCHEDULE_INTERVAL" envDefault:"0s"`
	PayslipDir        string        `env:"PAYSLIP_DIR" envDefault:"storage/payslips"`
	MigrationsDir     string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	RunMigrations     bool          `env:"RUN_MIGRATIONS" envDefault:"false"`
	RunSeed           bool          `env:"RUN_SEED" envDefault:"true"`
	ExcludeMonthlyCTC bool          `env:"EXCLUDE_MONTHLY_CTC" envDefault:"false"`
}

// Load reads the environment after applying any existing dotenv files.
// Variables already set in the process environment win over file values.
func Load(envFiles ...string) (Config, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks settings every command needs. DATABASE_URL is checked by
// the commands that open a pool.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("PAYROLL_WORKERS must be positive")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	if c.StoreRetryBase <= 0 {
		return errors.New("STORE_RETRY_BASE must be positive")
	}
	if c.RunLockTTL <= 0 {
		return errors.New("RUN_LOCK_TTL must be positive")
	}
	if c.ScheduleInterval < 0 {
		return errors.New("SCHEDULE_INTERVAL must not be negative")
	}
	if strings.TrimSpace(c.DefaultTaxRegime) == "" {
		return errors.New("DEFAULT_TAX_REGIME must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.Environment == "production" && strings.TrimSpace(c.DataEncryptionKey) == "" {
		return errors.New("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
	}
	return nil
}

func (c Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}
