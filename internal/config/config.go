package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Redis (optional; sessions and tokens stay in memory without it)
	RedisURL string

	// CORS
	AllowedOrigins []string

	// Booking backend
	BackendBaseURL      string
	BackendTimeout      time.Duration
	BackendUserAgent    string
	MockFallbackEnabled bool

	// Sessions
	SessionTTL  time.Duration
	DefaultLang string

	// Post-submission destinations
	CalendarPath   string
	MyBookingsPath string
	LoginPath      string

	// Gift card peek rate limit, per session or client
	GiftCardPeekRate  float64
	GiftCardPeekBurst int

	// Admin shell; admin routes are closed while the secret is empty
	AdminJWTSecret string

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// CORS
		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:4200")),

		// Booking backend
		BackendBaseURL:      strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:8081/api"), "/"),
		BackendTimeout:      time.Duration(parseInt(getEnv("BACKEND_TIMEOUT_SECONDS", "10"), 10)) * time.Second,
		BackendUserAgent:    getEnv("BACKEND_USER_AGENT", "vrroom-booking-bff/1.0"),
		MockFallbackEnabled: parseBool(getEnv("MOCK_FALLBACK_ENABLED", "true"), true),

		// Sessions
		SessionTTL:  parseDuration(getEnv("SESSION_TTL", "2h"), 2*time.Hour),
		DefaultLang: getEnv("DEFAULT_LANG", "en"),

		// Destinations
		CalendarPath:   getEnv("CALENDAR_PATH", "/calendar"),
		MyBookingsPath: getEnv("MY_BOOKINGS_PATH", "/my-bookings"),
		LoginPath:      getEnv("LOGIN_PATH", "/login"),

		// Rate limits
		GiftCardPeekRate:  parseFloat(getEnv("GIFT_CARD_PEEK_RATE", "10"), 10),
		GiftCardPeekBurst: parseInt(getEnv("GIFT_CARD_PEEK_BURST", "3"), 3),

		// Admin
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func parseBool(s string, defaultValue bool) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseInt(s string, defaultValue int) int {
	value, err := strconv.Atoi(s)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func parseFloat(s string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
