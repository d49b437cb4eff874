// Package config provides configuration for the chat API.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// ModeMock selects the mock generation client.
	ModeMock = "MOCK"

	// DefaultModel is reported when no deployment name is configured.
	DefaultModel = "gpt-4"
)

// AzureConfig holds the generation provider settings. The env tag names the
// variable each field is read from and is used in validation errors.
type AzureConfig struct {
	Endpoint    string  `env:"AZURE_OPENAI_ENDPOINT" validate:"required,url"`
	APIKey      string  `env:"AZURE_OPENAI_API_KEY" validate:"required"`
	Deployment  string  `env:"AZURE_OPENAI_DEPLOYMENT_NAME" validate:"required"`
	APIVersion  string  `env:"AZURE_OPENAI_API_VERSION" validate:"required"`
	Temperature float64 `env:"AZURE_OPENAI_TEMPERATURE" validate:"gte=0,lte=2"`
}

// Config holds the chat API configuration.
type Config struct {
	// Server settings
	HTTPPort    int
	CORSOrigins []string

	// Generation provider
	Mode       string
	Azure      AzureConfig
	LLMTimeout time.Duration

	// Storage
	DatabaseURL string

	// Prompts and policy
	SystemPromptFile string
	MaxMessageChars  int

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8000),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		Mode:        strings.ToUpper(getEnv("CHATAPI_MODE", "")),
		Azure: AzureConfig{
			Endpoint:    getEnv("AZURE_OPENAI_ENDPOINT", ""),
			APIKey:      getEnv("AZURE_OPENAI_API_KEY", ""),
			Deployment:  getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
			APIVersion:  getEnv("AZURE_OPENAI_API_VERSION", "2024-02-15-preview"),
			Temperature: getEnvFloat("AZURE_OPENAI_TEMPERATURE", 0.7),
		},
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		DatabaseURL:      getEnv("DATABASE_URL", "file:chatapi?mode=memory&cache=shared"),
		SystemPromptFile: getEnv("SYSTEM_PROMPT_FILE", ""),
		MaxMessageChars:  getEnvInt("MAX_MESSAGE_CHARS", 8000),
		PingInterval:     time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:     time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:      time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize:   int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// IsMock reports whether the mock generation client is selected.
func (c *Config) IsMock() bool {
	return c.Mode == ModeMock
}

// Model returns the model label reported to clients.
func (c *Config) Model() string {
	if c.Azure.Deployment != "" {
		return c.Azure.Deployment
	}
	return DefaultModel
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
