package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "envdashboard/libs/config"
	"envdashboard/services/dashboard-cli/internal/models"
)

const (
	DevEndpoint  = "http://localhost:8080/api"
	ProdEndpoint = "https://tuc-env-monitoring-dashboard.vercel.app/api"

	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Config defines envmon configuration.
type Config struct {
	AppEnv string `yaml:"appEnv" env:"APP_ENV"`
	API    struct {
		Endpoint string `yaml:"endpoint" env:"ENVMON_API_ENDPOINT"`
	} `yaml:"api"`
	HTTPClient struct {
		TimeoutSeconds int `yaml:"timeoutSeconds" env:"ENVMON_HTTP_TIMEOUT"`
	} `yaml:"httpClient"`
	Session struct {
		Backend string        `yaml:"backend" env:"ENVMON_SESSION_BACKEND"`
		File    string        `yaml:"file" env:"ENVMON_CREDENTIALS_FILE"`
		Profile string        `yaml:"profile" env:"ENVMON_PROFILE"`
		TTL     time.Duration `yaml:"ttl" env:"ENVMON_SESSION_TTL"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr" env:"ENVMON_REDIS_ADDR"`
		Password string `yaml:"password" env:"ENVMON_REDIS_PASSWORD"`
	} `yaml:"redis"`
	Archive struct {
		DSN string `yaml:"dsn" env:"ENVMON_ARCHIVE_DSN"`
	} `yaml:"archive"`
	Categories struct {
		Air  []string `yaml:"air" env:"ENVMON_AIR_SENSORS"`
		Soil []string `yaml:"soil" env:"ENVMON_SOIL_SENSORS"`
	} `yaml:"categories"`
}

// Load reads configuration via the shared helper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.AppEnv = "prod"
	cfg.HTTPClient.TimeoutSeconds = 15
	cfg.Session.Backend = SessionBackendFile
	cfg.Session.Profile = "default"

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendMemory:
	case SessionBackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return fmt.Errorf("config: session backend %q requires ENVMON_REDIS_ADDR", c.Session.Backend)
		}
	default:
		return fmt.Errorf("config: unknown session backend %q (allowed: file, redis, memory)", c.Session.Backend)
	}
	return nil
}

// IsDevelopment reports a development environment.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "dev" || env == "development"
}

// Endpoint resolves the API base URL: explicit override, else the
// development default in dev, else the production default.
func (c *Config) Endpoint() string {
	if e := strings.TrimSpace(c.API.Endpoint); e != "" {
		return strings.TrimRight(e, "/")
	}
	if c.IsDevelopment() {
		return DevEndpoint
	}
	return ProdEndpoint
}

// HTTPTimeout returns http client timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPClient.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.HTTPClient.TimeoutSeconds) * time.Second
}

// SensorCategories returns the configured air/soil name lists, falling back
// to the built-in ones for any list left empty.
func (c *Config) SensorCategories() models.Categories {
	air, soil := c.Categories.Air, c.Categories.Soil
	if len(air) == 0 {
		air = models.DefaultAirSensorNames
	}
	if len(soil) == 0 {
		soil = models.DefaultSoilSensorNames
	}
	return models.NewCategories(air, soil)
}
