package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"adventureworks-report/internal/errors"
)

const envFile = ".env"

type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Analysis AnalysisConfig
	Logger   LoggerConfig
	Preview  PreviewConfig
	Security SecurityConfig
}

type InputConfig struct {
	MonthlySalesCSV  string
	CustomerSalesCSV string
	CustomerIDColumn string
}

type OutputConfig struct {
	Dir                 string
	MonthlyChartFile    string
	CumulativeChartFile string
	ParetoChartFile     string
	ChartDPI            int
	ParetoChartDPI      int
}

type AnalysisConfig struct {
	ParetoThreshold float64
	RunTimeout      time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type PreviewConfig struct {
	Enabled         bool
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	TrustedProxies  []string
}

// Load reads .env (if present) and then the process environment. Variables
// already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Input: InputConfig{
			MonthlySalesCSV:  getEnvString("MONTHLY_SALES_CSV", "monthly_sales_by_country.csv"),
			CustomerSalesCSV: getEnvString("CUSTOMER_SALES_CSV", "Customers_Sales.csv"),
			CustomerIDColumn: getEnvString("CUSTOMER_ID_COLUMN", "CustomerKey"),
		},
		Output: OutputConfig{
			Dir:                 getEnvString("OUTPUT_DIR", "."),
			MonthlyChartFile:    getEnvString("MONTHLY_CHART_FILE", "MonthlySales.png"),
			CumulativeChartFile: getEnvString("CUMULATIVE_CHART_FILE", "CumulativeSales.png"),
			ParetoChartFile:     getEnvString("PARETO_CHART_FILE", "customer_sales_pareto.png"),
			ChartDPI:            getEnvInt("CHART_DPI", 100),
			ParetoChartDPI:      getEnvInt("PARETO_CHART_DPI", 300),
		},
		Analysis: AnalysisConfig{
			ParetoThreshold: getEnvFloat("PARETO_THRESHOLD", 80),
			RunTimeout:      getEnvDuration("RUN_TIMEOUT", 2*time.Minute),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "text"),
		},
		Preview: PreviewConfig{
			Enabled:         getEnvBool("PREVIEW_ENABLED", false),
			Host:            getEnvString("PREVIEW_HOST", "localhost"),
			Port:            getEnvInt("PREVIEW_PORT", 8084),
			ReadTimeout:     getEnvDuration("PREVIEW_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("PREVIEW_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("PREVIEW_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("PREVIEW_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.ValidationWrap(err, "invalid configuration")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Input.MonthlySalesCSV == "" {
		return fmt.Errorf("monthly sales CSV path cannot be empty")
	}

	if c.Input.CustomerSalesCSV == "" {
		return fmt.Errorf("customer sales CSV path cannot be empty")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	for name, file := range map[string]string{
		"monthly chart":    c.Output.MonthlyChartFile,
		"cumulative chart": c.Output.CumulativeChartFile,
		"pareto chart":     c.Output.ParetoChartFile,
	} {
		if file == "" {
			return fmt.Errorf("%s file name cannot be empty", name)
		}
		if !strings.EqualFold(filepath.Ext(file), ".png") {
			return fmt.Errorf("%s file %q must have a .png extension", name, file)
		}
	}

	// Charts are written concurrently; each needs its own file.
	seen := make(map[string]string, 3)
	for name, path := range map[string]string{
		"monthly chart":    c.MonthlyChartPath(),
		"cumulative chart": c.CumulativeChartPath(),
		"pareto chart":     c.ParetoChartPath(),
	} {
		key := filepath.Clean(path)
		if other, dup := seen[key]; dup {
			first, second := min(name, other), max(name, other)
			return fmt.Errorf("%s and %s both write to %q", first, second, path)
		}
		seen[key] = name
	}

	if c.Output.ChartDPI <= 0 || c.Output.ParetoChartDPI <= 0 {
		return fmt.Errorf("chart DPI must be positive")
	}

	if c.Analysis.ParetoThreshold <= 0 || c.Analysis.ParetoThreshold > 100 {
		return fmt.Errorf("pareto threshold must be in (0, 100], got %g", c.Analysis.ParetoThreshold)
	}

	if c.Analysis.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if !c.Preview.Enabled {
		return nil
	}

	if c.Preview.Port < 1 || c.Preview.Port > 65535 {
		return fmt.Errorf("preview port must be between 1 and 65535, got %d", c.Preview.Port)
	}

	if c.Preview.ReadTimeout <= 0 {
		return fmt.Errorf("preview read timeout must be positive")
	}

	if c.Preview.WriteTimeout <= 0 {
		return fmt.Errorf("preview write timeout must be positive")
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Preview.Host, c.Preview.Port)
}

func (c *Config) MonthlyChartPath() string {
	return filepath.Join(c.Output.Dir, c.Output.MonthlyChartFile)
}

func (c *Config) CumulativeChartPath() string {
	return filepath.Join(c.Output.Dir, c.Output.CumulativeChartFile)
}

func (c *Config) ParetoChartPath() string {
	return filepath.Join(c.Output.Dir, c.Output.ParetoChartFile)
}
