package app

import (
	"os"
	"strconv"
	"time"

	"github.com/moltenlabs/credvault/pkg/jwtx"
)

type Config struct {
	SecretKey string        // Required: HMAC secret for signing access tokens
	Issuer    string        // Optional: issuer claim for tokens (default: credvault)
	Algorithm string        // Optional: JWT signing algorithm (HS256, HS384, HS512) (default: HS256)
	TokenTTL  time.Duration // Optional: access token lifetime (default: 30m)

	StoreDriver string // Optional: store driver (mongo, memory) (default: mongo)
	MongoURI    string // Required for mongo driver: connection string
	MongoDBName string // Optional: database name (default: credvault)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		SecretKey: os.Getenv("AUTH_SECRET_KEY"),
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "credvault"),
		Algorithm: getEnvOrDefault("AUTH_ALGORITHM", "HS256"),
		TokenTTL:  getEnvDurationOrDefault("AUTH_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),

		StoreDriver: getEnvOrDefault("STORE_DRIVER", "mongo"),
		MongoURI:    getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnvOrDefault("MONGO_DB_NAME", "credvault"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept duration strings ("30m", "1h") or plain integer minutes.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
