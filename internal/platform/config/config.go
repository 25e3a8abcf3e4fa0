package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// TrendDays is the lookback window for the daily liquidity/net worth
	// reconstruction; TrendMonths the window for the monthly savings series.
	TrendDays   int
	TrendMonths int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("TREND_DAYS", 90)
	viper.SetDefault("TREND_MONTHS", 6)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.TrendDays = viper.GetInt("TREND_DAYS")
	if cfg.TrendDays < 2 {
		log.Printf("Warning: TREND_DAYS must be at least 2, got %d. Defaulting to 90.\n", cfg.TrendDays)
		cfg.TrendDays = 90
	}
	cfg.TrendMonths = viper.GetInt("TREND_MONTHS")
	if cfg.TrendMonths < 1 {
		log.Printf("Warning: TREND_MONTHS must be at least 1, got %d. Defaulting to 6.\n", cfg.TrendMonths)
		cfg.TrendMonths = 6
	}

	return cfg, nil
}
