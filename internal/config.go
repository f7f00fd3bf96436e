package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mealprep/internal/api"
	"github.com/starford/mealprep/internal/planner"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Household HouseholdConfig   `yaml:"household"`
	Catalog   CatalogConfig     `yaml:"catalog"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Household.Validate(); err != nil {
		return fmt.Errorf("household: %w", err)
	}
	return c.Catalog.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how requests are mapped to a household:
//   - "disabled" (default): no authentication, everything acts on DefaultHousehold.
//   - "token": a static Bearer token guards DefaultHousehold.
//   - "jwt": users register and log in; tokens are signed with JWTSecret.
type AuthConfig struct {
	Mode             string        `yaml:"mode"`
	Token            string        `yaml:"token"`
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	DefaultHousehold string        `yaml:"default_household"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = api.AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required,
			validation.In(api.AuthModeDisabled, api.AuthModeToken, api.AuthModeJWT)),
		validation.Field(&c.DefaultHousehold, validation.Required),
		validation.Field(&c.TokenTTL, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	switch c.Mode {
	case api.AuthModeToken:
		if c.Token == "" {
			return fmt.Errorf("auth: mode is %q but token is empty", api.AuthModeToken)
		}
	case api.AuthModeJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("auth: mode is %q but jwt_secret is empty", api.AuthModeJWT)
		}
	}
	return nil
}

// AuthEnabled returns true when requests must authenticate.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == api.AuthModeToken || c.Mode == api.AuthModeJWT
}

// HouseholdConfig holds the defaults applied to new households.
type HouseholdConfig struct {
	Timezone   string `yaml:"timezone"`
	DinnerTime string `yaml:"dinner_time"`
}

// Validate validates the household defaults.
func (c *HouseholdConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.Required, validation.By(func(any) error {
			if _, err := time.LoadLocation(c.Timezone); err != nil {
				return fmt.Errorf("unknown timezone %q", c.Timezone)
			}
			return nil
		})),
		validation.Field(&c.DinnerTime, validation.Required, validation.By(func(any) error {
			if _, ok := planner.ParseClock(c.DinnerTime); !ok {
				return fmt.Errorf("must be HH:MM")
			}
			return nil
		})),
	)
}

// CatalogConfig holds the optional recipe catalog directory.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Enabled reports whether a catalog directory is configured.
func (c *CatalogConfig) Enabled() bool {
	return c.Path != ""
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	if c.Watch && !c.Enabled() {
		return fmt.Errorf("catalog: watch requires a path")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./mealprep.db",
		},
		Auth: AuthConfig{
			Mode:             api.AuthModeDisabled,
			TokenTTL:         24 * time.Hour,
			DefaultHousehold: "default",
		},
		Household: HouseholdConfig{
			Timezone:   planner.DefaultTimezone,
			DinnerTime: planner.DefaultDinnerTime,
		},
	}
}
