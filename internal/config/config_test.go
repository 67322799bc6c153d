package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("SEARCH_RESULT_LIMIT", "12")
	os.Setenv("LINKER_BATCH_SIZE", "250")
	defer os.Unsetenv("DB_MAX_OPEN_CONNS")
	defer os.Unsetenv("MINIO_USE_SSL")
	defer os.Unsetenv("SEARCH_RESULT_LIMIT")
	defer os.Unsetenv("LINKER_BATCH_SIZE")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 12, cfg.Search.ResultLimit)
	assert.Equal(t, 250, cfg.Linker.BatchSize)
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("SEARCH_RESULT_LIMIT")
	os.Unsetenv("LINKER_BATCH_SIZE")
	os.Unsetenv("LINKER_ID_PATTERN")
	os.Unsetenv("OPENAI_MODEL")

	cfg := Load()

	assert.Equal(t, 9, cfg.Search.ResultLimit)
	assert.Equal(t, 400, cfg.Linker.BatchSize)
	assert.Equal(t, `^([A-Z]-\d+)`, cfg.Linker.IDPattern)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "42")
	assert.Equal(t, 42, getEnvInt(key, 1))

	os.Setenv(key, "not-a-number")
	assert.Equal(t, 1, getEnvInt(key, 1))

	os.Unsetenv(key)
	assert.Equal(t, 1, getEnvInt(key, 1))
}
