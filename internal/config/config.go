package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Redis        RedisConfig
	AWS          AWSConfig
	Notification NotificationConfig
	Telemetry    TelemetryConfig
	Cron         CronConfig
	Report       ReportConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
	// FrontendURL prefixes request links in notification emails.
	FrontendURL string
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
	SSETTL    time.Duration
}

// RedisConfig is optional; an empty Addr keeps SSE fan-out in-process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type AWSConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SESSender       string
	SQSQueueURL     string
}

type NotificationConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
	EmailEnabled  bool
}

type TelemetryConfig struct {
	ServiceName  string
	Exporter     string
	OTLPEndpoint string
	Insecure     bool
}

type CronConfig struct {
	// PendingReminderAge is how long a request must wait before approvers are reminded; 0 disables reminders.
	PendingReminderAge time.Duration
	Interval           time.Duration
}

type ReportConfig struct {
	Concurrency int
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var p parser
	config := &Config{}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "hris-timesheet"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           p.getInt("APP_PORT", 8080),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        p.getInt("DB_PORT", 5432),
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "hris_timesheet"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(p.getInt("DB_MAX_CONNS", 25)),
		AutoMigrate: p.getBool("DB_AUTO_MIGRATE", false),
	}

	config.JWT = JWTConfig{
		Secret:    getEnv("JWT_SECRET_KEY", ""),
		AccessTTL: p.getDuration("JWT_ACCESS_EXPIRATION_TIME", 15*time.Minute),
		SSETTL:    p.getDuration("JWT_SSE_EXPIRATION_TIME", 5*time.Minute),
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       p.getInt("REDIS_DB", 0),
		Channel:  getEnv("REDIS_SSE_CHANNEL", ""),
	}

	config.AWS = AWSConfig{
		Region:          getEnv("AWS_REGION", "ap-southeast-1"),
		Endpoint:        getEnv("AWS_ENDPOINT_URL", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SESSender:       getEnv("SES_SENDER", ""),
		SQSQueueURL:     getEnv("SQS_DECISION_QUEUE_URL", ""),
	}

	config.Notification = NotificationConfig{
		BatchSize:     p.getInt("NOTIFICATION_BATCH_SIZE", 100),
		FlushInterval: p.getDuration("NOTIFICATION_FLUSH_INTERVAL", 5*time.Second),
		WorkerCount:   p.getInt("NOTIFICATION_WORKERS", 2),
		QueueSize:     p.getInt("NOTIFICATION_QUEUE_SIZE", 1000),
		EmailEnabled:  p.getBool("NOTIFICATION_EMAIL_ENABLED", false),
	}

	config.Telemetry = TelemetryConfig{
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "hris-timesheet"),
		Exporter:     getEnv("OTEL_EXPORTER", "none"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Insecure:     p.getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}

	config.Cron = CronConfig{
		PendingReminderAge: p.getDuration("CRON_PENDING_REMINDER_AGE", 24*time.Hour),
		Interval:           p.getDuration("CRON_PENDING_REMINDER_INTERVAL", time.Hour),
	}

	config.Report = ReportConfig{
		Concurrency: p.getInt("REPORT_CONCURRENCY", 4),
	}

	if p.err != nil {
		return nil, p.err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Notification.EmailEnabled && c.AWS.SESSender == "" {
		return fmt.Errorf("SES_SENDER is required when NOTIFICATION_EMAIL_ENABLED is set")
	}
	switch c.Telemetry.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("OTEL_EXPORTER must be none, stdout or otlp")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) getBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}
