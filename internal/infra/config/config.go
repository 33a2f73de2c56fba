package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	SerperAPIKey    string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string
	TinyURLAPIKey   string

	DailyQuota   int
	MonthlyQuota int
	MaxArticles  int

	WorkerEnabled bool
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		DBHost:     getEnv("DB_HOST", "post-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "post_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "post_password"),
		DBName:     getEnv("DB_NAME", "post_db"),

		SerperAPIKey:    getSecret("SERPER_API_KEY", "SERPER_API_KEY_FILE", ""),
		AnthropicAPIKey: getSecret("ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY_FILE", ""),
		OpenAIAPIKey:    getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
		GeminiAPIKey:    getSecret("GEMINI_API_KEY", "GEMINI_API_KEY_FILE", ""),
		TinyURLAPIKey:   getSecret("TINYURL_API_KEY", "TINYURL_API_KEY_FILE", ""),

		DailyQuota:   getEnvInt("DAILY_QUOTA", 10),
		MonthlyQuota: getEnvInt("MONTHLY_QUOTA", 300),
		MaxArticles:  getEnvInt("MAX_ARTICLES", 10),

		WorkerEnabled: getEnvBool("WORKER_ENABLED", true),
	}
}

// DatabaseURL assembles the pgx connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
