package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is loaded once at startup and read-only afterwards.
type Config struct {
	Env  string
	Port string

	DBURL    string
	RedisURL string

	// Distinct signing keys per token class; compromise of one must not
	// forge the other.
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	ResetTokenTTL   time.Duration
	FrontendBaseURL string

	AttemptWindow      time.Duration
	RegisterAttemptCap int
	LoginAttemptCap    int

	BcryptCost int
	TOTPIssuer string
}

// Load reads the environment. The signing keys have no defaults: a missing
// key is a startup fault, never a silent fallback to a known weak secret.
func Load() (*Config, error) {
	accessSecret, err := mustGetEnv("ACCESS_TOKEN_SECRET")
	if err != nil {
		return nil, err
	}
	refreshSecret, err := mustGetEnv("REFRESH_TOKEN_SECRET")
	if err != nil {
		return nil, err
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	dbURL, err := mustGetEnv("DB_URL")
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DBURL:              dbURL,
		RedisURL:           getEnv("REDIS_URL", ""),
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenTTL:     getEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:    getEnvAsDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		ResetTokenTTL:      getEnvAsDuration("RESET_TOKEN_TTL", 10*time.Minute),
		FrontendBaseURL:    getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		AttemptWindow:      getEnvAsDuration("ATTEMPT_WINDOW", 15*time.Minute),
		RegisterAttemptCap: getEnvAsInt("REGISTER_ATTEMPT_CAP", 5),
		LoginAttemptCap:    getEnvAsInt("LOGIN_ATTEMPT_CAP", 10),
		BcryptCost:         getEnvAsInt("BCRYPT_COST", 10),
		TOTPIssuer:         getEnv("TOTP_ISSUER", "RealtyCore"),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("missing required environment variable: %s", key)
	}
	return value, nil
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := time.ParseDuration(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
