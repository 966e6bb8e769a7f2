package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// Token signing. The secret is injected here so it can differ per
	// environment and be rotated without a rebuild.
	JWTSecret     string
	JWTTTLMinutes int

	// External todo importer.
	ImportBaseURL        string
	ImportTimeoutSeconds int

	// Optional redis cache for imported todo payloads. Empty addr disables it.
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	ImportCacheTTLSeconds int

	OTLPEndpoint       string
	CORSAllowedOrigins []string
}

func Load() Config {
	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret:     getEnv("JWT_SECRET", "dev-only-secret"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 24*60),

		ImportBaseURL:        getEnv("IMPORT_BASE_URL", "https://jsonplaceholder.typicode.com"),
		ImportTimeoutSeconds: getEnvInt("IMPORT_TIMEOUT_SECONDS", 10),

		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		ImportCacheTTLSeconds: getEnvInt("IMPORT_CACHE_TTL_SECONDS", 60),

		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c Config) ImportTimeout() time.Duration {
	return time.Duration(c.ImportTimeoutSeconds) * time.Second
}

func (c Config) ImportCacheTTL() time.Duration {
	return time.Duration(c.ImportCacheTTLSeconds) * time.Second
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "taskpit")
	pass := getEnv("DB_PASSWORD", "taskpit")
	name := getEnv("DB_NAME", "taskpit")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
