package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
	Finance   FinanceConfig
	LogLevel  string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
	AutoMigrate    bool
	MaxOpenConns   int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	TTL    int // in hours
}

// EmailConfig holds email configuration
type EmailConfig struct {
	Enabled      bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

// RateLimitConfig limits requests per client IP
type RateLimitConfig struct {
	RequestsPerMinute int
}

// SecurityConfig holds security header options
type SecurityConfig struct {
	SSLRedirect bool
}

// FinanceConfig holds group accounting defaults
type FinanceConfig struct {
	DefaultBankPercent float64
	Currency           string
}

// DSN returns the lib/pq keyword connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the connection string in URL form, as golang-migrate expects.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	maxOpenConns, err := getEnvInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}

	jwtTTL, err := getEnvInt("JWT_TTL", 24)
	if err != nil {
		return nil, err
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	rpm, err := getEnvInt("RATE_LIMIT_RPM", 120)
	if err != nil {
		return nil, err
	}

	bankPercent, err := strconv.ParseFloat(getEnv("DEFAULT_BANK_PERCENT", "70"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_BANK_PERCENT: %w", err)
	}
	if bankPercent < 0 || bankPercent > 100 {
		return nil, fmt.Errorf("DEFAULT_BANK_PERCENT must be between 0 and 100, got %v", bankPercent)
	}

	readTimeout, err := getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	idleTimeout, err := getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           dbPort,
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "shg_service"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
			AutoMigrate:    getEnvBool("DB_AUTO_MIGRATE", true),
			MaxOpenConns:   maxOpenConns,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "super_secret_key"),
			TTL:    jwtTTL,
		},
		Email: EmailConfig{
			Enabled:      getEnvBool("EMAIL_ENABLED", false),
			SMTPHost:     getEnv("SMTP_HOST", "smtp.example.com"),
			SMTPPort:     smtpPort,
			SMTPUser:     getEnv("SMTP_USER", "user"),
			SMTPPassword: getEnv("SMTP_PASSWORD", "password"),
			SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@shg-service.local"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: rpm,
		},
		Security: SecurityConfig{
			SSLRedirect: getEnvBool("SSL_REDIRECT", false),
		},
		Finance: FinanceConfig{
			DefaultBankPercent: bankPercent,
			Currency:           getEnv("CURRENCY", "INR"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, defaultValue.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
