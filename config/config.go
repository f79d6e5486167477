package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

// Enabled reports whether enough settings are present to actually send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != ""
}

type Config struct {
	Port    string
	GinMode string

	DBDriver    string
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	SQLitePath  string

	JWTSecret string
	JWTTTL    time.Duration

	Location      *time.Location
	SweepInterval time.Duration

	CORSOrigins        []string
	RateLimitPerSecond int

	SMTP            SMTPConfig
	SlackWebhookURL string

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment. Call godotenv first if
// a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        envOrDefault("PORT", "8080"),
		GinMode:     envOrDefault("GIN_MODE", "debug"),
		DBDriver:    strings.ToLower(envOrDefault("DB_DRIVER", DriverMySQL)),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBUser:      envOrDefault("DB_USER", "root"),
		DBPass:      os.Getenv("DB_PASS"),
		DBHost:      envOrDefault("DB_HOST", "127.0.0.1"),
		DBName:      envOrDefault("DB_NAME", "reservations"),
		SQLitePath:  envOrDefault("SQLITE_PATH", "reservations.db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: parseList(os.Getenv("CORS_ORIGINS")),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			FromName: envOrDefault("SMTP_FROM_NAME", "Reservations"),
		},
		SlackWebhookURL: strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		cfg.DBPort = envOrDefault("DB_PORT", "3306")
	case DriverPostgres:
		cfg.DBPort = envOrDefault("DB_PORT", "5432")
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want mysql, postgres or sqlite)", cfg.DBDriver)
	}

	var err error
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerSecond, err = intEnv("RATE_LIMIT_PER_SECOND", 50); err != nil {
		return nil, err
	}

	tz := envOrDefault("APP_TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", tz, err)
	}

	return cfg, nil
}

// DSN builds the driver specific connection string.
func (c *Config) DSN() (string, error) {
	switch c.DBDriver {
	case DriverSQLite:
		return c.SQLitePath, nil
	case DriverPostgres:
		if c.DatabaseURL != "" {
			return c.DatabaseURL, nil
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort), nil
	default:
		if strings.HasPrefix(c.DatabaseURL, "mysql://") {
			return mysqlDSNFromURL(c.DatabaseURL)
		}
		if c.DatabaseURL != "" {
			return c.DatabaseURL, nil
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName), nil
	}
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url: %w", err)
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, u.Hostname(), port, dbName, q.Encode()), nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
