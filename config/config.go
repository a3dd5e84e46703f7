package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

// Configured is false in development; mail is then logged instead of sent.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != ""
}

type Config struct {
	Env         string
	Port        string
	CORSOrigins []string

	// AvailabilityTimeout bounds every booking-store read behind an availability check.
	AvailabilityTimeout time.Duration

	SMTP       SMTPConfig
	AdminEmail string

	RedisURL              string
	ProjectionHorizonDays int

	// WidgetRoomTypes maps room slugs to the booking widget's room-type ids.
	WidgetRoomTypes map[string]string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func parseWidgetRoomTypes(raw string) (map[string]string, error) {
	out := map[string]string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("BOOKING_WIDGET_ROOM_TYPES must be a JSON object: %w", err)
	}
	return out, nil
}

// Load reads the process environment. Call godotenv.Load first to pick up .env.
func Load() (Config, error) {
	timeout, err := time.ParseDuration(envOrDefault("AVAILABILITY_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid AVAILABILITY_TIMEOUT: %q", os.Getenv("AVAILABILITY_TIMEOUT"))
	}

	horizon, err := strconv.Atoi(envOrDefault("PROJECTION_HORIZON_DAYS", "365"))
	if err != nil || horizon <= 0 {
		return Config{}, fmt.Errorf("invalid PROJECTION_HORIZON_DAYS: %q", os.Getenv("PROJECTION_HORIZON_DAYS"))
	}

	widget, err := parseWidgetRoomTypes(os.Getenv("BOOKING_WIDGET_ROOM_TYPES"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Env:                 envOrDefault("APP_ENV", "development"),
		Port:                envOrDefault("PORT", "8080"),
		CORSOrigins:         parseCorsOrigins(os.Getenv("CORS_ORIGINS")),
		AvailabilityTimeout: timeout,
		SMTP: SMTPConfig{
			Host:     envOrDefault("SMTP_HOST", ""),
			Port:     envOrDefault("SMTP_PORT", ""),
			Username: envOrDefault("SMTP_USERNAME", ""),
			Password: envOrDefault("SMTP_PASSWORD", ""),
			FromName: envOrDefault("SMTP_FROM_NAME", "Hotel Reservations"),
		},
		AdminEmail:            envOrDefault("ADMIN_EMAIL", ""),
		RedisURL:              envOrDefault("REDIS_URL", ""),
		ProjectionHorizonDays: horizon,
		WidgetRoomTypes:       widget,
	}, nil
}
