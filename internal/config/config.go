package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
// It is read once at startup.
type Config struct {
	BotToken           string  `envconfig:"BOT_TOKEN" required:"true"`
	DefaultWaterGoalML int     `envconfig:"DEFAULT_WATER_GOAL_ML" default:"2700"`
	TZ                 string  `envconfig:"TZ" default:"Europe/Moscow"`
	WindowPins         bool    `envconfig:"WINDOW_PINS" default:"true"` // feeding window start/end announcements
	SendRate           float64 `envconfig:"SEND_RATE" default:"25"`     // outbound messages per second
	SendBurst          int     `envconfig:"SEND_BURST" default:"5"`
	LogLevel           string  `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr           string  `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config and validates them.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN is empty")
	}
	if c.DefaultWaterGoalML <= 0 {
		return errors.New("DEFAULT_WATER_GOAL_ML must be positive")
	}
	if c.SendRate <= 0 {
		return errors.New("SEND_RATE must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TZ.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", c.TZ, err)
	}
	return loc, nil
}
