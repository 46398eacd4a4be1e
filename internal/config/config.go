// Package config loads server configuration from the environment,
// env-only: this service has no per-ESP YAML file to merge against.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every environment-sourced setting this service needs.
type Config struct {
	ServerPort      int
	PublicServerURL string
	APIKey          string
	DBPath          string
	AWSRegion       string
	AWSAccessKey    string
	AWSSecretKey    string
	SenderAddress   string
	MaxPerSecond    int
	SendQueueSize   int
	ResultQueueSize int
}

// Load reads a .env file if present, then builds Config from the
// environment, applying defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      envInt("SERVER_PORT", 8080),
		PublicServerURL: envString("PUBLIC_SERVER_URL", "http://localhost:8080"),
		APIKey:          os.Getenv("API_KEY"),
		DBPath:          envString("DB_PATH", "sender.db"),
		AWSRegion:       envString("AWS_SES_REGION", "us-east-1"),
		AWSAccessKey:    os.Getenv("AWS_SES_ACCESS_KEY"),
		AWSSecretKey:    os.Getenv("AWS_SES_SECRET_KEY"),
		SenderAddress:   os.Getenv("SENDER_ADDRESS"),
		MaxPerSecond:    envInt("MAX_PER_SECOND", 14),
		SendQueueSize:   envInt("SEND_QUEUE_SIZE", 10000),
		ResultQueueSize: envInt("RESULT_QUEUE_SIZE", 1000),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("config: API_KEY must be set")
	}
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("config: SENDER_ADDRESS must be set")
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
