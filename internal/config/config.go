package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Email      EmailConfig      `mapstructure:"email"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ExtractionConfig selects and configures the vision extraction gateway
type ExtractionConfig struct {
	Provider string        `mapstructure:"provider"` // gemini or openai
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// EmailConfig holds outbound email configuration
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// AuthConfig holds token verification configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// StorageConfig holds document storage configuration
type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. A .env
// file in the working directory is honored for local development.
func Load(configPath string) (*Config, error) {
	_ = gotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/sousbill.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("extraction.provider", "gemini")
	viper.SetDefault("extraction.model", "gemini-1.5-flash")
	viper.SetDefault("extraction.timeout", 90*time.Second)

	viper.SetDefault("email.from", "alerts@sousbill.app")

	viper.SetDefault("storage.upload_dir", "data/uploads")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "console")
}

// bindEnvVars maps secrets to environment variables
func bindEnvVars() {
	_ = viper.BindEnv("extraction.api_key", "EXTRACTION_API_KEY")
	_ = viper.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	_ = viper.BindEnv("auth.jwt_secret", "SUPABASE_JWT_SECRET")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Extraction.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("extraction.provider must be gemini or openai, got %q", c.Extraction.Provider)
	}
	if c.Extraction.APIKey == "" {
		return fmt.Errorf("extraction.api_key is required")
	}
	if c.Extraction.Model == "" {
		return fmt.Errorf("extraction.model is required")
	}
	if c.Email.ResendAPIKey == "" {
		return fmt.Errorf("email.resend_api_key is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}
