package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DashboardConfig configures the server-rendered dashboard
type DashboardConfig struct {
	Port                string        `env:"DASHBOARD_PORT" envDefault:"3000"`
	Host                string        `env:"DASHBOARD_HOST" envDefault:"0.0.0.0"`
	Environment         string        `env:"APP_ENV" envDefault:"development"`
	APIBaseURL          string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	APITimeout          time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	BalancePollInterval time.Duration `env:"BALANCE_POLL_INTERVAL" envDefault:"4s"`
	MessageClearAfter   time.Duration `env:"MESSAGE_CLEAR_AFTER" envDefault:"3s"`
	CookieSecure        bool          `env:"COOKIE_SECURE" envDefault:"false"`
	DefaultUsername     string        `env:"DASHBOARD_DEFAULT_USERNAME" envDefault:"student"`
	DefaultPassword     string        `env:"DASHBOARD_DEFAULT_PASSWORD" envDefault:"studentpass"`
}

// LoadDashboard parses the dashboard configuration from the environment
func LoadDashboard() (*DashboardConfig, error) {
	var cfg DashboardConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard config: %w", err)
	}
	if cfg.BalancePollInterval <= 0 {
		return nil, fmt.Errorf("BALANCE_POLL_INTERVAL must be positive, got %s", cfg.BalancePollInterval)
	}
	return &cfg, nil
}

func (c *DashboardConfig) Address() string {
	return c.Host + ":" + c.Port
}
