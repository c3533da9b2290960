package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // Location must resolve in minimal containers

	"github.com/spf13/pflag"
)

// Storage backends accepted in StorageConfig.Backend.
const (
	StorageLocal  = "local"
	StorageMinIO  = "minio"
	StorageMemory = "memory"
)

// Journal drivers accepted in JournalConfig.Driver. An empty driver disables the journal.
const (
	JournalPostgres = "postgres"
	JournalSQLite   = "sqlite"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects where the metadata and content collections live.
// DocumentsDir and MetadataDir are directories for the local backend and
// key prefixes inside the bucket for the minio backend.
type StorageConfig struct {
	Backend      string
	DocumentsDir string
	MetadataDir  string
}

// JournalConfig configures the optional document event journal.
type JournalConfig struct {
	Driver     string
	SQLitePath string
	Database   DatabaseConfig
}

// Enabled reports whether a journal driver is configured.
func (j JournalConfig) Enabled() bool {
	return j.Driver != ""
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	LogLevel string
	Storage  StorageConfig
	MinIO    MinIOConfig
	Journal  JournalConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", StorageLocal),
			DocumentsDir: getEnv("DOCUMENTS_DIR", "documents"),
			MetadataDir:  getEnv("METADATA_DIR", "metadata"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Journal: JournalConfig{
			Driver:     getEnv("JOURNAL_DRIVER", ""),
			SQLitePath: getEnv("JOURNAL_SQLITE_PATH", "journal.db"),
			Database: DatabaseConfig{
				Host:               getEnv("DB_HOST", ""),
				Port:               getEnv("DB_PORT", "5432"),
				User:               getEnv("DB_USER", ""),
				Password:           getEnv("DB_PASSWORD", ""),
				Name:               getEnv("DB_NAME", ""),
				SSLMode:            getEnv("DB_SSLMODE", "disable"),
				MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
				MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
				ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			},
		},
	}
}

// RegisterFlags binds command-line overrides for the most commonly changed settings.
// Flag defaults are the values already loaded from the environment, so flags win over env.
func (c *AppConfig) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Port, "port", "p", c.Port, "HTTP listen port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.Storage.Backend, "storage", c.Storage.Backend, "storage backend (local, minio, memory)")
	fs.StringVar(&c.Storage.DocumentsDir, "documents-dir", c.Storage.DocumentsDir, "content collection directory or bucket prefix")
	fs.StringVar(&c.Storage.MetadataDir, "metadata-dir", c.Storage.MetadataDir, "metadata collection directory or bucket prefix")
	fs.StringVar(&c.Journal.Driver, "journal", c.Journal.Driver, "event journal driver (postgres, sqlite; empty disables)")
	fs.StringVar(&c.Journal.SQLitePath, "journal-sqlite-path", c.Journal.SQLitePath, "sqlite journal database file")
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
