package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	aws_pkg "github.com/safepack/tracking-service/pkg/aws"
)

// Config holds all configuration for the tracking service.
type Config struct {
	Port               string
	Env                string
	PublicTrackingURL  string
	AdminTrackingURL   string
	AdminLoginURL      string
	RemoteTimeout      time.Duration
	SessionTTL         time.Duration
	RedisURL           string
	CORSAllowedOrigins []string
	LoginRatePerMinute int
	ShipmentSNSTopic   string
	CloudWatchEnabled  bool
	CloudWatchLogGroup string
	MetricsNamespace   string
	SeedDemoData       bool
	DisplayTimezone    *time.Location
}

// LoadConfig reads configuration from the environment (and .env when
// present), with an optional Secrets Manager override.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8095"),
		Env:                getEnv("APP_ENV", "development"),
		PublicTrackingURL:  getEnv("PUBLIC_TRACKING_URL", "https://safepackglobaltravel.onrender.com/api/public/tracking"),
		AdminTrackingURL:   getEnv("ADMIN_TRACKING_URL", "https://ghost.safepackglobaltravel.com/admin/tracking"),
		AdminLoginURL:      getEnv("ADMIN_LOGIN_URL", "https://ghost.safepackglobaltravel.com/admin/login"),
		RedisURL:           os.Getenv("REDIS_URL"),
		ShipmentSNSTopic:   os.Getenv("SHIPMENT_SNS_TOPIC_ARN"),
		CloudWatchEnabled:  os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchLogGroup: getEnv("CLOUDWATCH_LOG_GROUP", "/safepack/tracking"),
		MetricsNamespace:   getEnv("CLOUDWATCH_NAMESPACE", "SafePack/Tracking"),
		SeedDemoData:       os.Getenv("SEED_DEMO_DATA") == "true",
	}
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.RemoteTimeout, err = time.ParseDuration(getEnv("REMOTE_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "12h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.LoginRatePerMinute, err = strconv.Atoi(getEnv("LOGIN_RATE_PER_MINUTE", "10")); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE: %w", err)
	}
	if cfg.DisplayTimezone, err = time.LoadLocation(getEnv("DISPLAY_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	// Override endpoints and Redis from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)
			if m, err := sm.GetSecretMap(context.Background(), "tracking/CONFIG"); err == nil {
				cfg.applySecrets(m)
			}
		}
	}

	for name, raw := range map[string]string{
		"PUBLIC_TRACKING_URL": cfg.PublicTrackingURL,
		"ADMIN_TRACKING_URL":  cfg.AdminTrackingURL,
		"ADMIN_LOGIN_URL":     cfg.AdminLoginURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	return cfg, nil
}

func (c *Config) applySecrets(m map[string]string) {
	if v := m["PUBLIC_TRACKING_URL"]; v != "" {
		c.PublicTrackingURL = v
	}
	if v := m["ADMIN_TRACKING_URL"]; v != "" {
		c.AdminTrackingURL = v
	}
	if v := m["ADMIN_LOGIN_URL"]; v != "" {
		c.AdminLoginURL = v
	}
	if v := m["REDIS_URL"]; v != "" {
		c.RedisURL = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
