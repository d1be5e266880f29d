// Package config loads settings from defaults, an optional YAML file, .env
// and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	configPathEnv = "CONFIG_FILE"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

type AppConfig struct {
	Env       string `yaml:"env"`
	Port      int    `yaml:"port"`
	APIPrefix string `yaml:"apiPrefix"`
	// Timezone decides where the calendar day starts for daily lists.
	Timezone string `yaml:"timezone"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlitePath"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwtSecret"`
	TokenTTL     time.Duration `yaml:"tokenTTL"`
	CookieName   string        `yaml:"cookieName"`
	CookieSecure bool          `yaml:"cookieSecure"`
}

type HTTPConfig struct {
	CORSOrigins    []string `yaml:"corsOrigins"`
	RateLimitRPS   float64  `yaml:"rateLimitRPS"`
	RateLimitBurst int      `yaml:"rateLimitBurst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		App: AppConfig{
			Env:       EnvDevelopment,
			Port:      8080,
			APIPrefix: "/api",
			Timezone:  "Asia/Kolkata",
		},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       5432,
			User:       "postgres",
			Password:   "postgres",
			Name:       "mytradingview",
			SQLitePath: "mytradingview.db",
		},
		Auth: AuthConfig{
			TokenTTL:   72 * time.Hour,
			CookieName: "accessToken",
		},
		HTTP: HTTPConfig{
			CORSOrigins:    []string{"http://localhost:3000"},
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration for the running process. A missing .env
// file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path, ok := lookup(configPathEnv); ok && path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.str("APP_ENV", &c.App.Env)
	e.integer("APP_PORT", &c.App.Port)
	e.str("API_PREFIX", &c.App.APIPrefix)
	e.str("TZ", &c.App.Timezone)

	e.str("DB_DRIVER", &c.Database.Driver)
	e.str("DB_HOST", &c.Database.Host)
	e.integer("DB_PORT", &c.Database.Port)
	e.str("DB_USER", &c.Database.User)
	e.str("DB_PASSWORD", &c.Database.Password)
	e.str("DB_NAME", &c.Database.Name)
	e.str("DATABASE_URL", &c.Database.URL)
	e.str("SQLITE_PATH", &c.Database.SQLitePath)

	e.str("JWT_SECRET", &c.Auth.JWTSecret)
	e.duration("JWT_EXPIRES_IN", &c.Auth.TokenTTL)
	e.str("COOKIE_NAME", &c.Auth.CookieName)
	e.boolean("COOKIE_SECURE", &c.Auth.CookieSecure)

	e.list("CORS_ORIGINS", &c.HTTP.CORSOrigins)
	e.float("RATE_LIMIT_RPS", &c.HTTP.RateLimitRPS)
	e.integer("RATE_LIMIT_BURST", &c.HTTP.RateLimitBurst)

	e.str("LOG_LEVEL", &c.Log.Level)
	e.str("LOG_FORMAT", &c.Log.Format)

	return e.err
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid APP_PORT %d", c.App.Port)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.JWTSecret == "" && c.App.Env != EnvDevelopment {
		return errors.New("JWT_SECRET is required outside development")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid TZ: %w", err)
	}
	return nil
}

// Location is the configured timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	d := c.Database
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, c.App.Timezone)
}

func (c *Config) Development() bool {
	return c.App.Env == EnvDevelopment
}

// envReader applies environment overrides, keeping the first parse error.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("config %s: %w", key, err)
	}
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = d
	}
}

func (e *envReader) list(key string, dst *[]string) {
	if v, ok := e.get(key); ok {
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*dst = out
	}
}
