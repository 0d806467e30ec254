package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env      string
	HttpPort string
	DBPath   string // used when DBDriver=sqlite
	DBDriver string // sqlite|postgres
	DBDsn    string // used when DBDriver=postgres (e.g., DATABASE_URL)

	// Object store connection (S3-compatible endpoint)
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3UseSSL    bool

	// Warehouse connection
	GCPProject string
	BQLocation string // region for dataset creation and load jobs

	// JobWaitTimeout bounds how long a request blocks on a warehouse job.
	JobWaitTimeout time.Duration

	// MaxUploadBytes caps request bodies on upload endpoints (0 = unlimited).
	MaxUploadBytes int64
}

func Load() *Config {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "dev"),
		HttpPort:       getEnv("HTTP_PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "data/stratus.db"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBDsn:          getEnv("DATABASE_URL", getEnv("DB_DSN", "")),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3Region:       getEnv("S3_REGION", ""),
		S3UseSSL:       getEnvBool("S3_USE_SSL", true),
		GCPProject:     getEnv("GCP_PROJECT", ""),
		BQLocation:     getEnv("BQ_LOCATION", "US"),
		JobWaitTimeout: getEnvDuration("JOB_WAIT_TIMEOUT", 10*time.Minute),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 1<<30),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" { return v }
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil { return b }
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil { return i }
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil { return d }
	}
	return def
}
