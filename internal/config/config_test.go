package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("SENDER_ADDRESS", "no-reply@example.com")
	for _, key := range []string{"SERVER_PORT", "PUBLIC_SERVER_URL", "DB_PATH", "AWS_SES_REGION", "MAX_PER_SECOND", "SEND_QUEUE_SIZE", "RESULT_QUEUE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "http://localhost:8080", cfg.PublicServerURL)
	assert.Equal(t, "sender.db", cfg.DBPath)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, 14, cfg.MaxPerSecond)
	assert.Equal(t, 10000, cfg.SendQueueSize)
	assert.Equal(t, 1000, cfg.ResultQueueSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("SENDER_ADDRESS", "no-reply@example.com")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_PER_SECOND", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 50, cfg.MaxPerSecond)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("SENDER_ADDRESS", "")

	_, err := Load()
	assert.Error(t, err)
}
