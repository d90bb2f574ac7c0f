package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every runtime setting. It is loaded once in main and passed
// to the components that need it.
type Config struct {
	Port    string
	GinMode string

	DBPath       string
	StoreTimeout time.Duration

	WebRoot string

	SessionSecret []byte
	SessionTTL    time.Duration
	CookieSecure  bool
	BcryptCost    int

	LoginRatePerSec int
	LoginBurst      int

	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the environment
func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return Config{
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBPath:       getEnv("DB_PATH", "foodshare.db"),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 5*time.Second),

		WebRoot: getEnv("WEB_ROOT", "web"),

		SessionSecret: []byte(getEnv("SESSION_SECRET", "foodshare_dev_secret_change_me")),
		SessionTTL:    getEnvDuration("SESSION_TTL", 100*time.Minute),
		CookieSecure:  getEnvBool("COOKIE_SECURE", true),
		BcryptCost:    getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),

		LoginRatePerSec: getEnvInt("LOGIN_RATE_PER_SEC", 5),
		LoginBurst:      getEnvInt("LOGIN_BURST", 10),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Warnings lists settings that are valid but likely to surprise at runtime
func (c Config) Warnings() []string {
	var out []string
	if c.CookieSecure {
		// the server only listens on plain HTTP
		out = append(out, "COOKIE_SECURE is on but the listener is plain HTTP; "+
			"browsers drop identity cookies unless TLS terminates in front or the host is localhost")
	}
	return out
}
