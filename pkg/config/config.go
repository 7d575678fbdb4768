// pkg/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Graph store backend selection: a SPARQL endpoint wins over Postgres,
	// Postgres over the in-memory store.
	StoreQueryURL  string
	StoreUpdateURL string
	DatabaseURL    string
	StoreSeedFile  string

	// Event side channel
	RedisURL      string
	EventsChannel string

	// Admin (SYSTEM authority) credentials
	AdminIssuer   string
	AdminAudience string
	AdminJWKSURL  string
	AdminAPIKey   string

	// Export sink
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:            env("GRAPHGATE_ENV", "dev"),
		HTTPAddr:       env("GRAPHGATE_HTTP_ADDR", ":8080"),
		StoreQueryURL:  env("STORE_QUERY_URL", ""),
		StoreUpdateURL: env("STORE_UPDATE_URL", ""),
		DatabaseURL:    env("DATABASE_URL", ""),
		StoreSeedFile:  env("STORE_SEED_FILE", ""),
		RedisURL:       env("REDIS_URL", ""),
		EventsChannel:  env("EVENTS_CHANNEL", "graphgate.events"),
		AdminIssuer:    env("ADMIN_OIDC_ISSUER", ""),
		AdminAudience:  env("ADMIN_OIDC_AUDIENCE", "graphgate-admin"),
		AdminJWKSURL:   env("ADMIN_JWKS_URL", ""),
		AdminAPIKey:    env("ADMIN_API_KEY", ""),
		S3Region:       env("S3_REGION", "eu-west-1"),
		S3AccessKey:    env("S3_ACCESS_KEY", ""),
		S3SecretKey:    env("S3_SECRET_KEY", ""),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return def
}
