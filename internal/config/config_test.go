package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("METADATA_DIR", "/var/lib/docrepo/metadata")
	t.Setenv("JOURNAL_DRIVER", "postgres")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Journal.Database.Host)
	assert.Equal(t, 20, cfg.Journal.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, StorageMinIO, cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/docrepo/metadata", cfg.Storage.MetadataDir)
	assert.Equal(t, "documents", cfg.Storage.DocumentsDir)
	assert.True(t, cfg.Journal.Enabled())
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORAGE_BACKEND", "DOCUMENTS_DIR", "METADATA_DIR", "JOURNAL_DRIVER", "APP_TIMEZONE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "documents", cfg.Storage.DocumentsDir)
	assert.Equal(t, "metadata", cfg.Storage.MetadataDir)
	assert.False(t, cfg.Journal.Enabled())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestRegisterFlags(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DOCUMENTS_DIR", "env-docs")

	cfg := Load()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"--storage", "memory", "-p", "7000", "--journal=sqlite"}))

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, "env-docs", cfg.Storage.DocumentsDir, "unset flags keep the env value")
	assert.Equal(t, JournalSQLite, cfg.Journal.Driver)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Jakarta"}
	loc := cfg.Location()
	assert.Equal(t, "Asia/Jakarta", loc.String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
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

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
