// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter turns weather data for a committed city into the text report.
package presenter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"
	"github.com/wneessen/go-moonphase"

	"github.com/wneessen/climatix/internal/config"
	"github.com/wneessen/climatix/internal/weather"
)

var ErrNoData = errors.New("no weather data available")

// WeatherView wraps a domain Instant with presentation-related fields.
type WeatherView struct {
	weather.Instant

	Condition         string
	ConditionIcon     string
	WindCompass       string
	WindDirectionIcon string
}

type TemplateContext struct {
	Location  string
	Latitude  float64
	Longitude float64

	UpdateTime    time.Time
	SunriseTime   time.Time
	SunsetTime    time.Time
	Moonphase     string
	MoonphaseIcon string

	Current  WeatherView
	Forecast []WeatherView
}

type Presenter struct {
	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
	report    *template.Template
	now       func() time.Time
}

func New(conf *config.Config, loc *spreak.Localizer) (*Presenter, error) {
	collection, err := humanize.New(humanize.WithLocale(de.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer: %w", err)
	}
	p := &Presenter{
		localizer: loc,
		humanizer: collection.CreateHumanizer(loc.Language()),
		now:       time.Now,
	}

	tpl, err := template.New("report").Funcs(p.templateFuncMap()).Parse(conf.Templates.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	p.report = tpl
	return p, nil
}

// BuildContext assembles the template context for location. Sunrise, sunset and moon
// phase are computed for the day of the current observation.
func (p *Presenter) BuildContext(location string, data *weather.Data) (TemplateContext, error) {
	if data == nil {
		return TemplateContext{}, ErrNoData
	}
	observed := data.Current.InstantTime
	if observed.IsZero() {
		observed = p.now()
	}
	rise, set := sunrise.SunriseSunset(data.Coordinates.Lat, data.Coordinates.Lon, observed.Year(),
		observed.Month(), observed.Day())
	phase := moonphase.New(observed).PhaseName()

	return TemplateContext{
		Location:      location,
		Latitude:      data.Coordinates.Lat,
		Longitude:     data.Coordinates.Lon,
		UpdateTime:    data.GeneratedAt,
		SunriseTime:   rise.In(observed.Location()),
		SunsetTime:    set.In(observed.Location()),
		Moonphase:     phase,
		MoonphaseIcon: MoonPhaseIcon[phase],
		Current:       p.viewFromInstant(data.Current),
		Forecast:      p.viewSliceFromMap(data.Forecast),
	}, nil
}

// Render executes the report template.
func (p *Presenter) Render(ctx TemplateContext) (string, error) {
	buf := strings.Builder{}
	if err := p.report.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return buf.String(), nil
}

// Report builds the context and renders it in one go.
func (p *Presenter) Report(location string, data *weather.Data) (string, error) {
	ctx, err := p.BuildContext(location, data)
	if err != nil {
		return "", err
	}
	return p.Render(ctx)
}

func (p *Presenter) viewFromInstant(in weather.Instant) WeatherView {
	compass := Compass(in.WindDirection)
	view := WeatherView{
		Instant:           in,
		ConditionIcon:     WMOWeatherIcons[in.WeatherCode][in.IsDay],
		WindCompass:       compass,
		WindDirectionIcon: windDirIcons[compass],
	}
	if msg, ok := WMOWeatherCodes[in.WeatherCode]; ok {
		view.Condition = p.localizer.Get(msg)
	}
	return view
}

func (p *Presenter) viewSliceFromMap(m map[weather.DayHour]weather.Instant) []WeatherView {
	views := make([]WeatherView, 0, len(m))
	for _, inst := range m {
		views = append(views, p.viewFromInstant(inst))
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].InstantTime.Before(views[j].InstantTime)
	})
	return views
}
