package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultStockURL       = "https://growagardenapi.vercel.app/api/stock/GetStock"
	defaultWeatherURL     = "https://growagardenapi.vercel.app/api/GetWeather"
	defaultPollInterval   = 5 * time.Minute
	defaultRequestTimeout = 30 * time.Second
	defaultUserAgent      = "garden-stock-tracker/1.0"
	defaultListenAddr     = "127.0.0.1:8080"
	defaultTimezone       = "Local"
	defaultClockLayout    = "3:04:05 PM"
	defaultJournalKeep    = 500
)

// Config is the runtime configuration.
type Config struct {
	StockURL       string        `mapstructure:"stock-url"`
	WeatherURL     string        `mapstructure:"weather-url"`
	PollInterval   time.Duration `mapstructure:"poll-interval"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	UserAgent      string        `mapstructure:"user-agent"`
	ListenAddr     string        `mapstructure:"listen-addr"`
	Timezone       string        `mapstructure:"timezone"`
	ClockLayout    string        `mapstructure:"clock-layout"`
	JournalPath    string        `mapstructure:"journal-path"` // empty = in memory
	JournalKeep    int           `mapstructure:"journal-keep"`
	ConfigPath     string        `mapstructure:"-"`

	location *time.Location
}

// Location returns the time zone clock times are rendered in.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// LoadConfig reads the optional config file at configPath (or the default
// location) and GARDEN_* environment variables on top of the defaults.
func LoadConfig(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetEnvPrefix("GARDEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("stock-url", defaultStockURL)
	v.SetDefault("weather-url", defaultWeatherURL)
	v.SetDefault("poll-interval", defaultPollInterval)
	v.SetDefault("request-timeout", defaultRequestTimeout)
	v.SetDefault("user-agent", defaultUserAgent)
	v.SetDefault("listen-addr", defaultListenAddr)
	v.SetDefault("timezone", defaultTimezone)
	v.SetDefault("clock-layout", defaultClockLayout)
	v.SetDefault("journal-path", "")
	v.SetDefault("journal-keep", defaultJournalKeep)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".config", "garden-stock", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := validateFeedURL("stock-url", c.StockURL); err != nil {
		return err
	}
	if err := validateFeedURL("weather-url", c.WeatherURL); err != nil {
		return err
	}
	// the timer runs on whole seconds
	if c.PollInterval < time.Second || c.PollInterval%time.Second != 0 {
		return fmt.Errorf("invalid poll-interval: %v is not a whole number of seconds", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request-timeout: %v", c.RequestTimeout)
	}
	if c.JournalKeep < 0 {
		return fmt.Errorf("invalid journal-keep: %d", c.JournalKeep)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

func validateFeedURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s: %q is not an absolute http(s) URL", key, raw)
	}
	return nil
}
