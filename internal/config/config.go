package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// S3Config holds the credentials for the optional S3/R2 blob backend.
type S3Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
}

// Config is the explicit service configuration. It is constructed once in
// main and passed down; nothing in the tree reads the environment after Load.
type Config struct {
	DBURL               string
	Port                string
	BaseURL             string // prefix of generated download URLs
	DataDir             string // disk blob backend root
	BlobBackend         string // "disk" or "s3"
	MaxFileSize         int64  // global per-upload ceiling, bytes
	AnonymousMode       bool   // issue modify tokens, accept unauthenticated uploads
	JWTSecret           string
	Environment         string
	BootstrapAdminToken string // creates the initial admin account when set
	CorsConfig          cors.Options
	S3                  S3Config
}

// Load reads the environment (optionally seeded from an env file) into a
// Config. Size values accept humanized forms such as "100MB".
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// Missing env file is fine; the environment may be set by the deployment.
	_ = godotenv.Load(envFile)

	maxSize, err := humanize.ParseBytes(getEnv("MAX_FILE_SIZE", "100MB"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid MAX_FILE_SIZE: %w", err)
	}

	anonymous, err := strconv.ParseBool(getEnv("ANONYMOUS_MODE", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ANONYMOUS_MODE: %w", err)
	}

	port := getEnv("PORT", "8080")

	return Config{
		DBURL:               getEnv("DB_URL", ""),
		Port:                port,
		BaseURL:             getEnv("BASE_URL", "http://localhost:"+port),
		DataDir:             getEnv("DATA_DIR", "data"),
		BlobBackend:         getEnv("BLOB_BACKEND", "disk"),
		MaxFileSize:         int64(maxSize),
		AnonymousMode:       anonymous,
		JWTSecret:           getEnv("JWT_SECRET", "not-so-secret-now-is-it?"),
		Environment:         getEnv("ENV", "development"),
		BootstrapAdminToken: getEnv("BOOTSTRAP_ADMIN_TOKEN", ""),
		CorsConfig:          CorsConfig(),
		S3: S3Config{
			AccountID:       getEnv("S3_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("S3_BUCKET_NAME", ""),
			Region:          getEnv("S3_REGION", "auto"),
		},
	}, nil
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}
}
