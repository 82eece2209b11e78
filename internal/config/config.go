package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIURL = "http://localhost:5000"

type Config struct {
	// APIURL is the primary data/scraping backend. Other collaborators reuse it.
	APIURL string
	// AIAPIURL is the generation backend; empty env falls back to APIURL.
	AIAPIURL string

	HTTPTimeout time.Duration
	GatewayRPS  float64

	DatabaseURL string
	RedisURL    string
	OpenAIKey   string
	MetricsPort string
	WorkerCount int

	LogLevel string
	LogDev   bool
	LogFile  string
}

func Load() *Config {
	// .env from the project root first, then the current directory
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	apiURL := trimBase(getEnv("API_URL", defaultAPIURL))
	return &Config{
		APIURL:      apiURL,
		AIAPIURL:    trimBase(getEnv("AI_API_URL", apiURL)),
		HTTPTimeout: getDuration("HTTP_TIMEOUT", 0),
		GatewayRPS:  getFloat("GATEWAY_RPS", 0),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		WorkerCount: getInt("WORKER_COUNT", 5),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogDev:      getBool("LOG_DEV", false),
		LogFile:     os.Getenv("LOG_FILE"),
	}
}

func trimBase(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return d
}

func getFloat(k string, d float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil && f >= 0 {
		return f
	}
	return d
}

func getBool(k string, d bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return b
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil && v >= 0 {
		return v
	}
	return d
}
