package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port          string
	Origin        string
	Environment   string
	UploadsDir    string
	Database      DatabaseConfig
	Mailer        MailerConfig
	Gemini        GeminiConfig
	NotifyTimeout time.Duration
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// GeminiConfig holds the generative-AI provider configuration
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "patients"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	mailerPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	mailerConfig := MailerConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     mailerPort,
		Username: getEnv("EMAIL_USER", ""),
		Password: getEnv("EMAIL_PASS", ""),
		From:     getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "")),
	}

	llmTimeoutSecs, err := strconv.Atoi(getEnv("GEMINI_TIMEOUT_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_TIMEOUT_SECONDS: %w", err)
	}

	geminiConfig := GeminiConfig{
		APIKey:  getEnv("GEMINI_API_KEY", ""),
		BaseURL: getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Model:   getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		Timeout: time.Duration(llmTimeoutSecs) * time.Second,
	}

	notifyTimeoutSecs, err := strconv.Atoi(getEnv("NOTIFY_TIMEOUT_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEOUT_SECONDS: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:          getEnv("PORT", "5000"),
		Origin:        getEnv("ORIGIN", "http://localhost:3000"),
		Environment:   getEnv("APP_ENV", "development"),
		UploadsDir:    getEnv("UPLOADS_DIR", "uploads"),
		Database:      dbConfig,
		Mailer:        mailerConfig,
		Gemini:        geminiConfig,
		NotifyTimeout: time.Duration(notifyTimeoutSecs) * time.Second,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
