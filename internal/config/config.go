package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Processing   ProcessingConfig
	Rates        RatesConfig
	Withdrawal   WithdrawalConfig
	Notification NotificationConfig
	Logging      LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// ProcessingConfig holds blockchain-processing provider configuration
type ProcessingConfig struct {
	BaseURL string
	APIKey  string
}

// RatesConfig holds exchange-rate feed configuration
type RatesConfig struct {
	BaseURL  string
	Exchange string
}

// WithdrawalConfig holds withdraw scheduler configuration
type WithdrawalConfig struct {
	CronSpec string
}

// NotificationConfig holds notification configuration
type NotificationConfig struct {
	Telegram TelegramConfig
}

// TelegramConfig holds Telegram specific configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Dir    string
}

// LoadConfig loads configuration from YAML file or environment variables
func LoadConfig() *Config {
	if config, err := LoadConfigFromYAML(); err == nil {
		return config
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromYAML loads configuration from YAML file
func LoadConfigFromYAML() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Secrets always come from the environment when set.
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}
	if apiKey := os.Getenv("PROCESSING_API_KEY"); apiKey != "" {
		config.Processing.APIKey = apiKey
	}

	return &config, nil
}

// LoadConfigFromEnv loads configuration from environment variables
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_URL", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Database: getEnv("DB_DATABASE", "dv_backend"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Processing: ProcessingConfig{
			BaseURL: getEnv("PROCESSING_BASE_URL", ""),
			APIKey:  getEnv("PROCESSING_API_KEY", ""),
		},
		Rates: RatesConfig{
			BaseURL:  getEnv("RATES_BASE_URL", ""),
			Exchange: getEnv("RATES_EXCHANGE", "binance"),
		},
		Withdrawal: WithdrawalConfig{
			CronSpec: getEnv("WITHDRAW_CRON_SPEC", "*/10 * * * * *"),
		},
		Notification: NotificationConfig{
			Telegram: TelegramConfig{
				BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
				ChatID:   getEnv("TELEGRAM_BOT_MESSAGE_GROUP", ""),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			Dir:    getEnv("LOG_DIR", "./logs"),
		},
	}
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
