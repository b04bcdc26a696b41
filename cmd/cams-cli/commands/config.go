package commands

import (
	"fmt"
	"os"
	"time"

	"cams-catalog/internal/components/telemetry"
	"cams-catalog/internal/scrapers/cams"
	"cams-catalog/lib/configutil"
	configlibsql "cams-catalog/lib/configutil/libsql"
)

type PortalConfig struct {
	BaseUrl            string  `json:"base_url"`
	TimeoutSeconds     int     `json:"timeout_seconds"`
	RequestsPerSecond  float64 `json:"requests_per_second"`
	MaxConcurrentPages int     `json:"max_concurrent_pages"`
	UserAgent          string  `json:"user_agent"`
	CloudflareBypass   bool    `json:"cloudflare_bypass"`
}

type Config struct {
	Portal   PortalConfig        `json:"portal"`
	Username string              `json:"username"`
	Password string              `json:"password"`
	Database configlibsql.Struct `json:"database"`
	// Timezone is used to stamp scrape results, defaults to the campus timezone.
	Timezone string `json:"timezone"`
}

var defaultConfig = Config{
	Portal: PortalConfig{
		BaseUrl:            cams.DefaultBaseUrl,
		TimeoutSeconds:     30,
		RequestsPerSecond:  4,
		MaxConcurrentPages: 8,
	},
	Database: configlibsql.Struct{
		File: "catalog.db",
	},
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(*configPath, defaultConfig)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", *configPath, err)
	}
	if username := os.Getenv("CAMS_USERNAME"); username != "" {
		cfg.Username = username
	}
	if password := os.Getenv("CAMS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	return cfg, nil
}

func (cfg Config) credentials() (string, string, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return "", "", fmt.Errorf("username and password must be set in %s or through CAMS_USERNAME and CAMS_PASSWORD", *configPath)
	}
	return cfg.Username, cfg.Password, nil
}

func (cfg Config) newClient() (*cams.Client, error) {
	return cams.NewClient(cams.ClientOptions{
		BaseUrl:            cfg.Portal.BaseUrl,
		Timeout:            time.Duration(cfg.Portal.TimeoutSeconds) * time.Second,
		RequestsPerSecond:  cfg.Portal.RequestsPerSecond,
		MaxConcurrentPages: cfg.Portal.MaxConcurrentPages,
		UserAgent:          cfg.Portal.UserAgent,
		CloudflareBypass:   cfg.Portal.CloudflareBypass,
	}, telemetry.SlogAPI{})
}
