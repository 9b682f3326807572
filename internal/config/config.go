// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "CLIMATIX"
	appName   = "climatix"

	// MaxResults is the hard upper bound of a merged suggestion list.
	MaxResults = 8
	// MaxRecent is the hard upper bound of the recent searches list.
	MaxRecent = 5

	DefaultReportTpl = "{{.Current.ConditionIcon}} {{.Location}}\n" +
		"{{loc \"temp\"}}: {{floatFormat .Current.Temperature 1}}{{.Current.Units.Temperature}} " +
		"({{loc \"apparent\"}} {{floatFormat .Current.ApparentTemperature 1}}{{.Current.Units.Temperature}})\n" +
		"{{.Current.Condition}}\n" +
		"{{loc \"humidity\"}}: {{floatFormat .Current.RelativeHumidity 0}}{{.Current.Units.Humidity}}, " +
		"{{loc \"wind\"}}: {{floatFormat .Current.WindSpeed 1}} {{.Current.Units.WindSpeed}} " +
		"{{.Current.WindDirectionIcon}}\n" +
		"{{loc \"sunrise\"}}: {{timeFormat .SunriseTime \"15:04\"}}, " +
		"{{loc \"sunset\"}}: {{timeFormat .SunsetTime \"15:04\"}}\n" +
		"{{loc \"moonphase\"}}: {{.MoonphaseIcon}} {{loc .Moonphase}}\n" +
		"{{loc \"updated\"}}: {{localizedTime .UpdateTime}}"
)

var (
	ErrInvalidUnits     = errors.New("invalid units")
	ErrInvalidSearch    = errors.New("invalid search configuration")
	ErrInvalidGeocoder  = errors.New("invalid geocoder configuration")
	ErrInvalidIntervals = errors.New("invalid interval configuration")
)

// Config represents the application's configuration structure.
type Config struct {
	// Allowed values: metric, imperial
	Units    string     `fig:"units" default:"metric"`
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	LogFile  string     `fig:"log_file"`

	Search struct {
		Debounce         time.Duration `fig:"debounce" default:"300ms"`
		MinQueryLength   int           `fig:"min_query_length" default:"2"`
		PrimaryResults   int           `fig:"primary_results" default:"5"`
		SecondaryResults int           `fig:"secondary_results" default:"5"`
		MaxResults       int           `fig:"max_results" default:"8"`
		RecentLimit      int           `fig:"recent_limit" default:"5"`
	} `fig:"search"`

	Geocoder struct {
		// Allowed values: nominatim, opencage, geocode-earth, none
		Secondary string `fig:"secondary" default:"nominatim"`
		APIKey    string `fig:"apikey"`
		ClientID  string `fig:"client_id"`
	} `fig:"geocoder"`

	Weather struct {
		// Allowed values: open-meteo
		Provider string `fig:"provider" default:"open-meteo"`
	} `fig:"weather"`

	Intervals struct {
		WeatherUpdate time.Duration `fig:"weather_update" default:"15m"`
		StoreFlush    time.Duration `fig:"store_flush" default:"30s"`
	} `fig:"intervals"`

	Templates struct {
		Report string `fig:"report"`
	} `fig:"templates"`

	Storage struct {
		File string `fig:"file"`
	} `fig:"storage"`

	Location struct {
		DefaultCity string `fig:"default_city"`
		UseLocation bool   `fig:"use_location"`
	} `fig:"location"`

	GeoLocation struct {
		File                   string `fig:"file"`
		DisableGeoClue         bool   `fig:"disable_geoclue"`
		DisableGPSD            bool   `fig:"disable_gpsd"`
		DisableGeoIP           bool   `fig:"disable_geoip"`
		DisableGeoAPI          bool   `fig:"disable_geoapi"`
		DisableGeolocationFile bool   `fig:"disable_geolocation_file"`
		DisableICHNAEA         bool   `fig:"disable_ichnaea"`
	} `fig:"geolocation"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

// Validate checks the configured bounds and fills in derived defaults.
func (c *Config) Validate() error {
	if c.Units != "metric" && c.Units != "imperial" {
		return fmt.Errorf("%w: %s", ErrInvalidUnits, c.Units)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}

	s := &c.Search
	if s.Debounce <= 0 {
		return fmt.Errorf("%w: debounce must be positive, got %s", ErrInvalidSearch, s.Debounce)
	}
	if s.MinQueryLength < 1 {
		return fmt.Errorf("%w: min_query_length must be at least 1, got %d", ErrInvalidSearch, s.MinQueryLength)
	}
	if s.MaxResults < 1 || s.MaxResults > MaxResults {
		return fmt.Errorf("%w: max_results must be between 1 and %d, got %d", ErrInvalidSearch, MaxResults,
			s.MaxResults)
	}
	if s.PrimaryResults < 1 || s.PrimaryResults > s.MaxResults {
		return fmt.Errorf("%w: primary_results must be between 1 and %d, got %d", ErrInvalidSearch,
			s.MaxResults, s.PrimaryResults)
	}
	if s.SecondaryResults < 1 || s.SecondaryResults > s.MaxResults {
		return fmt.Errorf("%w: secondary_results must be between 1 and %d, got %d", ErrInvalidSearch,
			s.MaxResults, s.SecondaryResults)
	}
	if s.RecentLimit < 1 || s.RecentLimit > MaxRecent {
		return fmt.Errorf("%w: recent_limit must be between 1 and %d, got %d", ErrInvalidSearch, MaxRecent,
			s.RecentLimit)
	}

	c.Geocoder.Secondary = strings.ToLower(c.Geocoder.Secondary)
	switch c.Geocoder.Secondary {
	case "nominatim", "none":
	case "opencage", "geocode-earth":
		if c.Geocoder.APIKey == "" {
			return fmt.Errorf("%w: geocoder %q requires an API key", ErrInvalidGeocoder, c.Geocoder.Secondary)
		}
	default:
		return fmt.Errorf("%w: unknown secondary geocoder %q", ErrInvalidGeocoder, c.Geocoder.Secondary)
	}
	if c.Weather.Provider != "open-meteo" {
		return fmt.Errorf("unsupported weather provider: %s", c.Weather.Provider)
	}

	if c.Intervals.WeatherUpdate <= 0 || c.Intervals.StoreFlush <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidIntervals)
	}

	if c.Templates.Report == "" {
		c.Templates.Report = DefaultReportTpl
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(stateDir(), appName, appName+".log")
	}
	if c.Storage.File == "" {
		c.Storage.File = filepath.Join(stateDir(), appName, "store.json")
	}
	if c.GeoLocation.File == "" {
		home, _ := os.UserHomeDir()
		c.GeoLocation.File = filepath.Join(home, ".config", appName, "geolocation")
	}

	return nil
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state")
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
