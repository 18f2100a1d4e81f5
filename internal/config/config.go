package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "change-me-in-prod"

type Config struct {
	Env        string
	Port       int
	DBURL      string
	DBMaxConns int32

	JWTSecret   string
	JWTTTLHours int
	BcryptCost  int

	APIPrefix    string
	CORSOrigins  []string
	MaxBodyBytes int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit         int
	AuthRateWindowSeconds int

	OTELEnabled  bool
	OTELEndpoint string

	SeedDemo bool
}

func Load() Config {
	// a missing .env file is fine, real deployments use the environment
	_ = godotenv.Load()

	return Config{
		Env:        getEnv("APP_ENV", "dev"),
		Port:       getEnvInt("PORT", 3000),
		DBURL:      getEnv("DATABASE_URL", buildDBURL()),
		DBMaxConns: int32(getEnvInt("DB_MAX_CONNS", 5)),

		JWTSecret:   getEnv("JWT_SECRET", devJWTSecret),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 7*24),
		BcryptCost:  getEnvInt("BCRYPT_COST", 10),

		APIPrefix:    getEnv("API_PREFIX", "/api"),
		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"*"}),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AuthRateLimit:         getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindowSeconds: getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60),

		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint: getEnv("OTEL_ENDPOINT", "localhost:4317"),

		SeedDemo: getEnvBool("SEED_DEMO", false),
	}
}

// TokenTTL is the lifetime of an identity token.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c Config) AuthRateWindow() time.Duration {
	return time.Duration(c.AuthRateWindowSeconds) * time.Second
}

// InsecureSecret reports whether the token secret is still the development default.
// Production deployments must set JWT_SECRET.
func (c Config) InsecureSecret() bool {
	return c.JWTSecret == "" || c.JWTSecret == devJWTSecret
}

// WarnInsecureSecret reports a prod deployment still on the insecure secret.
// Startup logs it and carries on.
func (c Config) WarnInsecureSecret() bool {
	return c.Env == "prod" && c.InsecureSecret()
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "listinghub")
	pass := getEnv("DB_PASSWORD", "listinghub")
	name := getEnv("DB_NAME", "listinghub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a request's store work. Cancelling the parent still cancels it.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(strings.TrimSpace(v))

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}
	return out
}
