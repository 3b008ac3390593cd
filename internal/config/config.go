package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultAddr = "127.0.0.1:8080"

type Config struct {
	Addr         string
	DatabasePath string

	SessionSecret string
	SessionIssuer string
	SessionTTL    time.Duration

	LeaderboardKey string

	AppEnv           string
	WSAllowedOrigins []string

	// OpenTelemetry settings, read from the standard OTEL_* variables.
	TracesExporter   string
	TracesSampler    string
	TracesSamplerArg string
}

func LoadFromEnv() (Config, error) {
	ttlMinutes := int64(720) // 12 hours
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ttlMinutes = n
		} else {
			fmt.Fprintf(os.Stderr, "WARNING: invalid SESSION_TTL_MINUTES=%q, using default %d\n", v, ttlMinutes)
		}
	}

	cfg := Config{
		Addr:           strings.TrimSpace(os.Getenv("BACKEND_ADDR")),
		DatabasePath:   strings.TrimSpace(os.Getenv("DATABASE_PATH")),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionIssuer:  strings.TrimSpace(os.Getenv("SESSION_ISSUER")),
		SessionTTL:     time.Duration(ttlMinutes) * time.Minute,
		LeaderboardKey: strings.TrimSpace(os.Getenv("LEADERBOARD_KEY")),
		AppEnv:         strings.TrimSpace(os.Getenv("APP_ENV")),

		TracesExporter:   strings.TrimSpace(os.Getenv("OTEL_TRACES_EXPORTER")),
		TracesSampler:    strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER")),
		TracesSamplerArg: strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER_ARG")),
	}
	if cfg.SessionIssuer == "" {
		cfg.SessionIssuer = "card-sorting"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	if v := os.Getenv("WS_ALLOWED_ORIGINS"); v != "" {
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.WSAllowedOrigins = append(cfg.WSAllowedOrigins, p)
			}
		}
	}

	// BACKEND_ADDR wins; otherwise honor PORT, otherwise stay on loopback.
	if cfg.Addr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			if strings.Contains(port, ":") {
				cfg.Addr = port
			} else {
				cfg.Addr = "127.0.0.1:" + port
			}
		} else {
			cfg.Addr = defaultAddr
		}
	}

	var missing []string
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if cfg.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing/invalid env: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
