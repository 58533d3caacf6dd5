package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	FrontendURL string
	// Company identity (used in email templates and the client confirmation)
	CompanyName     string
	CompanyPhone    string
	CompanyWhatsApp string
	CompanyAddress  string
	AdminEmail      string
	NoReplyEmail    string
	// SMTP Configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailTimeout  time.Duration
	// Anti-abuse toggles (defaults follow the production site settings)
	EnableCSRF            bool
	EnableRateLimit       bool
	EnableHoneypot        bool
	HoneypotSilentSuccess bool
	RateLimitWindow       time.Duration
	RateLimitAttempts     int
	// Redis (optional; rate limiting and CSRF tokens fall back to memory)
	RedisURL      string
	RedisPassword string
	// Contact log file storage
	LogContacts  bool
	LogDirectory string
	// Timezone for submission timestamps
	Timezone *time.Location
	// Debug logs processed submissions at debug level. Dev only.
	Debug bool
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; ignored in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		FrontendURL: getEnv("FRONTEND_URL", "https://centroservice.com.br"),

		CompanyName:     getEnv("COMPANY_NAME", "Centro Service"),
		CompanyPhone:    getEnv("COMPANY_PHONE", "(21) 96598-2113"),
		CompanyWhatsApp: getEnv("COMPANY_WHATSAPP", "5521965982113"),
		CompanyAddress:  getEnv("COMPANY_ADDRESS", "Rio de Janeiro - RJ"),
		AdminEmail:      getEnv("ADMIN_EMAIL", "contato@centroservice.com.br"),
		NoReplyEmail:    getEnv("NOREPLY_EMAIL", "noreply@centroservice.com.br"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailTimeout:  time.Duration(getEnvInt("MAIL_TIMEOUT_SECONDS", 10)) * time.Second,

		EnableCSRF:            getEnvBool("ENABLE_CSRF", true),
		EnableRateLimit:       getEnvBool("RATE_LIMIT_ENABLED", true),
		EnableHoneypot:        getEnvBool("HONEYPOT_ENABLED", true),
		HoneypotSilentSuccess: getEnvBool("HONEYPOT_SILENT_SUCCESS", true),
		RateLimitWindow:       time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 3600)) * time.Second,
		RateLimitAttempts:     getEnvInt("RATE_LIMIT_ATTEMPTS", 5),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		LogContacts:  getEnvBool("LOG_CONTACTS", true),
		LogDirectory: getEnv("LOG_DIRECTORY", "logs"),

		Debug: getEnvBool("DEBUG_MODE", false),
	}

	tzName := getEnv("TIMEZONE", "America/Sao_Paulo")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("WARNING: invalid TIMEZONE %q, falling back to UTC", tzName)
		loc = time.UTC
	}
	cfg.Timezone = loc

	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		log.Println("WARNING: SMTP credentials not configured. Email dispatch will fail.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting and CSRF tokens will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
