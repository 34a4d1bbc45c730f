// Package config загружает конфигурацию сервера из переменных окружения
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит рантайм-конфигурацию сервера
type Config struct {
	HTTPAddr     string
	DatabasePath string

	// Аутентификация
	TokenTTL       time.Duration
	HashIterations int

	// Парольная политика
	PasswordMinLength int
	PasswordMaxLength int
	RequireUppercase  bool
	HistoryDepth      int

	// Блокировки при переборе
	MaxAccountFailures  int
	AccountLockDuration time.Duration
	MaxSourceFailures   int
	SourceLockDuration  time.Duration
	FailureWindow       time.Duration

	// Восстановление пароля
	ResetTokenTTL time.Duration
	Web3FormsKey  string
	EmailFrom     string

	// HTTP
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	AuthRateLimit      int
}

// Load читает конфигурацию из окружения с разумными дефолтами
// Единственный обязательный ключ отсутствует: без WEB3FORMS_API_KEY
// сервер работает в dev-режиме и пишет коды восстановления в лог
func Load() Config {
	return Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DatabasePath: getEnv("DATABASE_PATH", "ispadmin.db"),

		TokenTTL:       getDuration("TOKEN_TTL", 60*time.Minute),
		HashIterations: getInt("HASH_ITERATIONS", 1_200_000),

		PasswordMinLength: getInt("PASSWORD_MIN_LENGTH", 10),
		PasswordMaxLength: getInt("PASSWORD_MAX_LENGTH", 50),
		RequireUppercase:  getBool("PASSWORD_REQUIRE_UPPERCASE", false),
		HistoryDepth:      getInt("PASSWORD_HISTORY_DEPTH", 3),

		MaxAccountFailures:  getInt("MAX_ACCOUNT_FAILURES", 3),
		AccountLockDuration: getDuration("ACCOUNT_LOCK_DURATION", 30*time.Minute),
		MaxSourceFailures:   getInt("MAX_SOURCE_FAILURES", 10),
		SourceLockDuration:  getDuration("SOURCE_LOCK_DURATION", 60*time.Minute),
		FailureWindow:       getDuration("FAILURE_WINDOW", 24*time.Hour),

		ResetTokenTTL: getDuration("RESET_TOKEN_TTL", 20*time.Minute),
		Web3FormsKey:  os.Getenv("WEB3FORMS_API_KEY"),
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@example.com"),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRequests:  getInt("RATE_LIMIT_REQUESTS", 300),
		RateLimitWindow:    getDuration("RATE_LIMIT_WINDOW", time.Minute),
		AuthRateLimit:      getInt("AUTH_RATE_LIMIT", 30),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
