package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/foodcost/internal/catalog"
)

const (
	defaultEnv            = "dev"
	defaultPort           = "8080"
	defaultDBPath         = "./foodcost.db"
	defaultLogLevel       = "info"
	defaultPrinterAddr    = "localhost:9100"
	defaultPrinterTimeout = 3 * time.Second
	defaultLabelDir       = "labels"
	defaultCurrencySymbol = "$"
	defaultReportTimezone = "UTC"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env      string
	Port     string
	DBPath   string
	LogLevel string

	PrinterAddr    string
	PrinterTimeout time.Duration
	LabelDir       string
	CurrencySymbol string

	Margin MarginPolicy

	ReportCron     string
	ReportTimezone string

	SeedDemo bool
}

// MarginPolicy bounds the margin accepted at batch creation. Nil bounds are open.
type MarginPolicy struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// Validate reports a validation error when margin falls outside the policy.
func (p MarginPolicy) Validate(margin decimal.Decimal) error {
	if p.Min != nil && margin.LessThan(*p.Min) {
		return catalog.Validation("gainPercentage", "must be at least "+p.Min.String())
	}
	if p.Max != nil && margin.GreaterThan(*p.Max) {
		return catalog.Validation("gainPercentage", "must be at most "+p.Max.String())
	}
	return nil
}

func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// Load reads an optional dotenv file, then the environment. Variables already
// present in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := Config{
		Env:            getenvWithDefault("APP_ENV", defaultEnv),
		Port:           getenvWithDefault("PORT", defaultPort),
		DBPath:         getenvWithDefault("DB_PATH", defaultDBPath),
		LogLevel:       getenvWithDefault("LOG_LEVEL", defaultLogLevel),
		PrinterAddr:    getenvWithDefault("PRINTER_ADDR", defaultPrinterAddr),
		LabelDir:       getenvWithDefault("LABEL_DIR", defaultLabelDir),
		CurrencySymbol: getenvWithDefault("CURRENCY_SYMBOL", defaultCurrencySymbol),
		ReportCron:     strings.TrimSpace(os.Getenv("REPORT_CRON")),
		ReportTimezone: getenvWithDefault("REPORT_TIMEZONE", defaultReportTimezone),
	}

	var err error
	if cfg.PrinterTimeout, err = durationEnv("PRINTER_TIMEOUT", defaultPrinterTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Margin.Min, err = decimalEnv("MARGIN_MIN"); err != nil {
		return Config{}, err
	}
	if cfg.Margin.Max, err = decimalEnv("MARGIN_MAX"); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemo, err = boolEnv("SEED_DEMO", cfg.IsDev()); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must be provided")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must be provided")
	}
	if c.Margin.Min != nil && c.Margin.Max != nil && c.Margin.Min.GreaterThan(*c.Margin.Max) {
		return fmt.Errorf("MARGIN_MIN (%s) must not exceed MARGIN_MAX (%s)", c.Margin.Min, c.Margin.Max)
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE: %w", err)
	}
	return nil
}

// Location resolves ReportTimezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}

func decimalEnv(key string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %q: %w", key, v, err)
	}
	return &d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q: %w", key, v, err)
	}
	return b, nil
}
