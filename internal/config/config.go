package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingDBConnection = errors.New("no DB_CONNECTION_STRING provided")
	ErrMissingJWTSecret    = errors.New("no JWT_SECRET provided")
)

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	PprofAddress string `mapstructure:"pprof_address"`
}

type DBConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	AutoMigrate      bool   `mapstructure:"auto_migrate"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type InsightsConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	// Schedule is a robfig/cron spec; empty disables the background job.
	Schedule string `mapstructure:"schedule"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Insights InsightsConfig `mapstructure:"insights"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.pprof_address", "localhost:6060")
	v.SetDefault("db.connection_string", "")
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", 10*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 720*time.Hour)
	v.SetDefault("insights.currency_symbol", "GH₵")
	v.SetDefault("insights.schedule", "@every 24h")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "admin@example.com")
	v.SetDefault("admin.password", "")
}

// Load reads an optional YAML file at path and overlays environment variables.
// Keys map to env names by upper-casing and replacing dots, e.g. db.connection_string
// is DB_CONNECTION_STRING. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			log.Printf("Config file %s not found, using defaults and environment", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate reports the first missing setting the server cannot start without.
func (c *Config) Validate() error {
	if c.DB.ConnectionString == "" {
		return ErrMissingDBConnection
	}
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
