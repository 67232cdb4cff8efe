package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DevelopmentOrderAPI = "http://localhost:3000"
	ProductionOrderAPI  = "https://makxsensi-api.onrender.com"
)

type Config struct {
	AppEnv  string `env:"APP_ENV"  envDefault:"development"`
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	OrderAPIURL     string        `env:"ORDER_API_URL"`
	OrderAPISecret  string        `env:"ORDER_API_SECRET"`
	OrderAPITimeout time.Duration `env:"ORDER_API_TIMEOUT" envDefault:"60s"`

	SiteDir   string `env:"SITE_DIR"   envDefault:"./site"`
	SQLiteDSN string `env:"SQLITE_DSN" envDefault:"./storefront.db"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	HealthInterval     time.Duration `env:"HEALTH_INTERVAL"      envDefault:"5m"`
	SuccessAutoDismiss time.Duration `env:"SUCCESS_AUTO_DISMISS" envDefault:"10s"`
	DismissDelay       time.Duration `env:"DISMISS_DELAY"        envDefault:"300ms"`
	WidgetTimeout      time.Duration `env:"WIDGET_TIMEOUT"       envDefault:"5m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	BrandName    string `env:"BRAND_NAME"    envDefault:"MakXsensi"`
	BrandImage   string `env:"BRAND_IMAGE"   envDefault:"/assets/images/logo.png"`
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:"support@makxsensi.com"`
	IdleLabel    string `env:"IDLE_LABEL"    envDefault:"Buy Now"`
	Currency     string `env:"CURRENCY"      envDefault:"INR"`

	// Packs is a comma separated list of name:amountMinor pairs.
	Packs string `env:"PACKS" envDefault:"Basic Pack:4900,Pro Pack:9900,Elite Pack:19900"`
}

type Pack struct {
	Name        string
	AmountMinor int64
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.OrderAPIURL == "" {
		cfg.OrderAPIURL = defaultOrderAPI(cfg.AppEnv)
	}
	cfg.OrderAPIURL = strings.TrimRight(cfg.OrderAPIURL, "/")

	if _, err := cfg.PackList(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Local development talks to a backend on localhost, everything else to the
// hosted one.
func defaultOrderAPI(appEnv string) string {
	switch appEnv {
	case "development", "local", "test":
		return DevelopmentOrderAPI
	}
	return ProductionOrderAPI
}

func (c Config) PackList() ([]Pack, error) {
	var packs []Pack
	for _, item := range strings.Split(c.Packs, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		i := strings.LastIndex(item, ":")
		if i <= 0 {
			return nil, fmt.Errorf("invalid pack %q: want name:amount", item)
		}
		amount, err := strconv.ParseInt(strings.TrimSpace(item[i+1:]), 10, 64)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("invalid pack amount in %q", item)
		}
		packs = append(packs, Pack{Name: strings.TrimSpace(item[:i]), AmountMinor: amount})
	}
	if len(packs) == 0 {
		return nil, fmt.Errorf("no packs configured")
	}
	return packs, nil
}
