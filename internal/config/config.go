package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 运行时配置
type Config struct {
	Port              string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisKeyPrefix    string
	RequestListKey    string
	MaxMessageRunes   int
	SubmitLimit       int
	RateWindow        time.Duration
	DuplicateWindow   time.Duration
	GlobalThrottleRPS float64
	GlobalBurst       int
	ShutdownTimeout   time.Duration
}

// Load 从环境变量加载配置
func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8080"),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		RedisKeyPrefix:    getEnv("REDIS_KEY_PREFIX", ""),
		RequestListKey:    getEnv("REQUEST_LIST_KEY", "infographic-requests"),
		MaxMessageRunes:   500,
		SubmitLimit:       getEnvAsInt("SUBMIT_LIMIT_PER_WINDOW", 3),
		RateWindow:        time.Hour,
		DuplicateWindow:   24 * time.Hour,
		GlobalThrottleRPS: getEnvAsFloat("GLOBAL_THROTTLE_RPS", 50),
		GlobalBurst:       getEnvAsInt("GLOBAL_THROTTLE_BURST", 100),
		ShutdownTimeout:   10 * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
