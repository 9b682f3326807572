// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/http"
	"github.com/wneessen/climatix/internal/logger"
	"github.com/wneessen/climatix/internal/weather"
)

const (
	name        = "open-meteo"
	APIEndpoint = "https://api.open-meteo.com/v1/forecast"
	APITimeout  = time.Second * 10
)

var dataFields = []string{
	"temperature_2m", "apparent_temperature", "weather_code", "wind_speed_10m", "is_day",
	"wind_direction_10m", "relative_humidity_2m", "pressure_msl",
}

var ErrInconsistentForecast = errors.New("hourly forecast series differ in length")

type OpenMeteo struct {
	unit string
	log  *logger.Logger
	http *http.Client
}

type resTime struct {
	time.Time
}

type resBool struct {
	bool
}

type unitSet struct {
	Temperature      string `json:"temperature_2m"`
	WindSpeed        string `json:"wind_speed_10m"`
	WindDirection    string `json:"wind_direction_10m"`
	RelativeHumidity string `json:"relative_humidity_2m"`
	PressureMsl      string `json:"pressure_msl"`
}

type response struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Timezone         string  `json:"timezone"`
	CurrentUnits     unitSet `json:"current_units"`
	Current          struct {
		Time                resTime `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WeatherCode         int     `json:"weather_code"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		IsDay               resBool `json:"is_day"`
		WindDirection       int     `json:"wind_direction_10m"`
		RelativeHumidity    int     `json:"relative_humidity_2m"`
		PressureMSL         float64 `json:"pressure_msl"`
	} `json:"current"`
	HourlyUnits unitSet `json:"hourly_units"`
	Hourly      struct {
		Time                []resTime `json:"time"`
		Temperature         []float64 `json:"temperature_2m"`
		ApparentTemperature []float64 `json:"apparent_temperature"`
		WeatherCode         []int     `json:"weather_code"`
		WindSpeed           []float64 `json:"wind_speed_10m"`
		IsDay               []resBool `json:"is_day"`
		WindDirection       []int     `json:"wind_direction_10m"`
		RelativeHumidity    []int     `json:"relative_humidity_2m"`
		PressureMsl         []float64 `json:"pressure_msl"`
	} `json:"hourly"`
}

func New(http *http.Client, log *logger.Logger, unit string) (*OpenMeteo, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &OpenMeteo{unit: unit, http: http, log: log}, nil
}

func (o *OpenMeteo) Name() string {
	return name
}

func (o *OpenMeteo) GetWeather(ctx context.Context, coords geo.Coordinate) (*weather.Data, error) {
	res := new(response)
	data := weather.NewData()

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	query.Set("current", strings.Join(dataFields, ","))
	query.Set("hourly", strings.Join(dataFields, ","))
	query.Set("timezone", "auto")
	query.Set("forecast_days", "2")
	if strings.EqualFold(o.unit, "imperial") {
		query.Set("temperature_unit", "fahrenheit")
		query.Set("wind_speed_unit", "mph")
		query.Set("precipitation_unit", "inch")
	}

	if _, err := o.http.GetWithTimeout(ctx, APIEndpoint, res, query, nil, APITimeout); err != nil {
		return data, fmt.Errorf("failed to retrieve weather data from Open-Meteo API: %w", err)
	}
	hours := len(res.Hourly.Time)
	for _, n := range []int{
		len(res.Hourly.Temperature), len(res.Hourly.ApparentTemperature), len(res.Hourly.WeatherCode),
		len(res.Hourly.WindSpeed), len(res.Hourly.IsDay), len(res.Hourly.WindDirection),
		len(res.Hourly.RelativeHumidity), len(res.Hourly.PressureMsl),
	} {
		if n != hours {
			return data, ErrInconsistentForecast
		}
	}

	location := time.FixedZone(res.Timezone, res.UTCOffsetSeconds)
	data.GeneratedAt = time.Now()
	data.Coordinates = coords
	data.Timezone = res.Timezone
	data.Current = weather.Instant{
		InstantTime:         inZone(res.Current.Time.Time, location),
		Temperature:         res.Current.Temperature,
		ApparentTemperature: res.Current.ApparentTemperature,
		WeatherCode:         res.Current.WeatherCode,
		WindSpeed:           res.Current.WindSpeed,
		WindDirection:       float64(res.Current.WindDirection),
		RelativeHumidity:    float64(res.Current.RelativeHumidity),
		PressureMSL:         res.Current.PressureMSL,
		IsDay:               res.Current.IsDay.bool,
		Units:               res.CurrentUnits.units(),
	}
	hourlyUnits := res.HourlyUnits.units()
	for i := range res.Hourly.Time {
		timePos := weather.NewDayHour(inZone(res.Hourly.Time[i].Time, location))
		data.Forecast[timePos] = weather.Instant{
			InstantTime:         timePos.Time(),
			Temperature:         res.Hourly.Temperature[i],
			ApparentTemperature: res.Hourly.ApparentTemperature[i],
			WeatherCode:         res.Hourly.WeatherCode[i],
			WindSpeed:           res.Hourly.WindSpeed[i],
			WindDirection:       float64(res.Hourly.WindDirection[i]),
			RelativeHumidity:    float64(res.Hourly.RelativeHumidity[i]),
			PressureMSL:         res.Hourly.PressureMsl[i],
			IsDay:               res.Hourly.IsDay[i].bool,
			Units:               hourlyUnits,
		}
	}
	o.log.Debug("weather data retrieved", slog.String("provider", name),
		slog.String("timezone", res.Timezone), slog.Int("forecast_hours", hours))

	return data, nil
}

func (u unitSet) units() weather.Units {
	return weather.Units{
		Temperature:   u.Temperature,
		WindSpeed:     u.WindSpeed,
		Humidity:      u.RelativeHumidity,
		Pressure:      u.PressureMsl,
		WindDirection: u.WindDirection,
	}
}

// inZone reinterprets a zone-less API timestamp as wall clock time of the location.
func inZone(t time.Time, location *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, location)
}

func (r *resTime) UnmarshalJSON(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("empty time")
	}
	if b[0] != '"' {
		return fmt.Errorf("invalid time format: %s", string(b))
	}

	apiTime, err := time.Parse("2006-01-02T15:04", string(b[1:len(b)-1]))
	if err != nil {
		return fmt.Errorf("failed to parse time: %w", err)
	}
	r.Time = apiTime

	return nil
}

func (r *resBool) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("empty bool")
	}
	if b[0] == '0' {
		return nil
	}
	r.bool = true
	return nil
}
