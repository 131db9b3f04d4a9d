package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL          string
	AMQPExchange     string
	AMQPCommandQueue string
	AMQPChangeQueue  string

	// Currencies
	BaseCurrency    string
	DisplayCurrency string

	// Reporting
	TrendMonths int

	// Recurring worker
	RecurringInterval time.Duration

	// Backend selection
	DataBackend string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/bilancio.db"),

		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "bilancio"),
		AMQPCommandQueue: getEnv("AMQP_COMMAND_QUEUE", "bilancio_commands"),
		AMQPChangeQueue:  getEnv("AMQP_CHANGE_QUEUE", "bilancio_changes"),

		BaseCurrency:    getEnv("BASE_CURRENCY", "EUR"),
		DisplayCurrency: getEnv("DISPLAY_CURRENCY", "EUR"),

		TrendMonths: getEnvInt("TREND_MONTHS", 6),

		RecurringInterval: getEnvDuration("RECURRING_INTERVAL", time.Hour),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration, collecting every problem into a
// single error.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPCommandQueue == "" {
			errors = append(errors, "AMQP command queue name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPChangeQueue == "" {
			errors = append(errors, "AMQP change queue name cannot be empty when AMQP URL is provided")
		}
	}

	if strings.TrimSpace(c.BaseCurrency) == "" {
		errors = append(errors, "base currency cannot be empty")
	}
	if strings.TrimSpace(c.DisplayCurrency) == "" {
		errors = append(errors, "display currency cannot be empty")
	}

	if c.TrendMonths < 1 {
		errors = append(errors, fmt.Sprintf("invalid trend months %d: must be at least 1", c.TrendMonths))
	} else if c.TrendMonths > 120 {
		errors = append(errors, fmt.Sprintf("invalid trend months %d: must be at most 120", c.TrendMonths))
	}

	if c.RecurringInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at least 1 minute", c.RecurringInterval))
	} else if c.RecurringInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at most 24 hours", c.RecurringInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
