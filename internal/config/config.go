package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration shared by the terminal client and the API server.
type Config struct {
	Log     LogConfig
	Client  ClientConfig
	Server  ServerConfig
	LLM     LLMConfig
	Storage StorageConfig
	Auth    AuthConfig
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// ClientConfig holds the terminal client configuration
type ClientConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	TokenPath      string        `mapstructure:"token_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	OfflineDelay   time.Duration `mapstructure:"offline_delay"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	HistoryWindow int    `mapstructure:"history_window"`
}

// LLMConfig holds the LLM configuration. An empty APIKey makes the server answer with
// the offline persona.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// StorageConfig holds the SQLite configuration
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds the bearer token configuration
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("client.api_url", "http://localhost:5000")
	v.SetDefault("client.token_path", "")
	v.SetDefault("client.request_timeout", 15*time.Second)
	v.SetDefault("client.offline_delay", time.Second)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.history_window", 10)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)

	v.SetDefault("storage.path", "friendbot.db")

	v.SetDefault("auth.jwt_secret", "default-jwt-secret")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
}

// Load reads config.yaml (or the file named by CONFIG_PATH) and applies FRIENDBOT_*
// environment overrides. A missing config.yaml is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("friendbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
