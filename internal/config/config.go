// internal/config/config.go
//
// Runtime configuration from environment variables.
// main loads a `.env` file (godotenv) before calling Load, so either source works.

package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every tunable of the server.
type Config struct {
	Port         string // PORT
	LogLevel     string // LOG_LEVEL
	Production   bool   // NODE_ENV=production: Secure/SameSite=None cookies
	Store        string // STORE: "sqlite" | "memory"
	DBPath       string // DB_PATH
	ClientOrigin string // CLIENT_ORIGIN for CORS

	CookieName     string // COOKIE_NAME (auth token)
	AnonCookieName string // ANON_COOKIE_NAME (guest identity)
	JWTSecret      string // JWT_SECRET
	JWTTTL         time.Duration

	DailySalt        string // DAILY_SALT
	WordSize         int    // WORD_SIZE
	MaxAttempts      int    // MAX_ATTEMPTS
	AnswersFile      string // WORDS_ANSWERS_FILE
	AllowedFile      string // WORDS_ALLOWED_FILE
	AllowFixedAnswer bool   // ALLOW_FIXED_ANSWER: honour "answer" in POST /game/new

	SessionTTL    time.Duration // SESSION_TTL: idle rounds older than this are swept
	SweepInterval time.Duration // SWEEP_INTERVAL
}

// Load reads the environment, applying defaults for anything unset or malformed.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Production:   os.Getenv("NODE_ENV") == "production",
		Store:        getEnv("STORE", "sqlite"),
		DBPath:       getEnv("DB_PATH", "./data/app.db"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		CookieName:     getEnv("COOKIE_NAME", "wordle_token"),
		AnonCookieName: getEnv("ANON_COOKIE_NAME", "wordle_anon"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTTTL:         time.Duration(envInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,

		DailySalt:        getEnv("DAILY_SALT", "local_dev_salt"),
		WordSize:         envInt("WORD_SIZE", 5),
		MaxAttempts:      envInt("MAX_ATTEMPTS", 6),
		AnswersFile:      os.Getenv("WORDS_ANSWERS_FILE"),
		AllowedFile:      os.Getenv("WORDS_ALLOWED_FILE"),
		AllowFixedAnswer: envBool("ALLOW_FIXED_ANSWER", false),

		SessionTTL:    envDuration("SESSION_TTL", 24*time.Hour),
		SweepInterval: envDuration("SWEEP_INTERVAL", 10*time.Minute),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}

func envBool(k string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return b
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}
