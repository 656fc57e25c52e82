package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Solana   SolanaConfig
	IRacing  IRacingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret  string
	CronSecret string
}

// SolanaConfig holds Solana RPC and house wallet settings
type SolanaConfig struct {
	RPCEndpoint           string
	HouseWalletAddress    string
	HouseWalletPrivateKey string
}

// IRacingConfig holds iRacing OAuth/data API settings.
// When the credentials are empty the application runs in offline mode
// with placeholder data instead of calling the live API.
type IRacingConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "crypto_racer"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			CronSecret: getEnv("CRON_SECRET", ""),
		},
		Solana: SolanaConfig{
			RPCEndpoint:           getEnv("SOLANA_RPC_ENDPOINT", "https://api.devnet.solana.com"),
			HouseWalletAddress:    getEnv("HOUSE_WALLET_ADDRESS", ""),
			HouseWalletPrivateKey: getEnv("HOUSE_WALLET_PRIVATE_KEY", ""),
		},
		IRacing: IRacingConfig{
			ClientID:     getEnv("IRACING_CLIENT_ID", ""),
			ClientSecret: getEnv("IRACING_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("IRACING_REDIRECT_URI", ""),
			RefreshToken: getEnv("IRACING_REFRESH_TOKEN", ""),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.App.CronSecret == "" {
		return nil, fmt.Errorf("CRON_SECRET is required")
	}

	if config.Solana.HouseWalletAddress == "" {
		return nil, fmt.Errorf("HOUSE_WALLET_ADDRESS is required")
	}

	return config, nil
}

// IRacingConfigured reports whether live iRacing API credentials are present
func (c *Config) IRacingConfigured() bool {
	return c.IRacing.ClientID != "" && c.IRacing.ClientSecret != ""
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
