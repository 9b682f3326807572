// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"github.com/wneessen/climatix/internal/geocode"
	geocodeearth "github.com/wneessen/climatix/internal/geocode/provider/geocode-earth"
	geocodeopenmeteo "github.com/wneessen/climatix/internal/geocode/provider/open-meteo"
	"github.com/wneessen/climatix/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/climatix/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/climatix/internal/geolocation"
	"github.com/wneessen/climatix/internal/geolocation/provider/file"
	"github.com/wneessen/climatix/internal/geolocation/provider/geoapi"
	"github.com/wneessen/climatix/internal/geolocation/provider/geoclue"
	"github.com/wneessen/climatix/internal/geolocation/provider/geoip"
	"github.com/wneessen/climatix/internal/geolocation/provider/gpsd"
	"github.com/wneessen/climatix/internal/geolocation/provider/ichnaea"
	"github.com/wneessen/climatix/internal/http"
	"github.com/wneessen/climatix/internal/logger"
	"github.com/wneessen/climatix/internal/weather"
	openmeteo "github.com/wneessen/climatix/internal/weather/provider/open-meteo"
)

// selectGeocodeProviders returns the fast structured provider and the configured
// comprehensive one. The secondary provider is nil when disabled.
func (s *Service) selectGeocodeProviders() (geocode.Searcher, geocode.Searcher, error) {
	httpClient := http.New(s.logger)
	primary := geocodeopenmeteo.New(httpClient, s.lang)

	var secondary geocode.Searcher
	switch strings.ToLower(s.config.Geocoder.Secondary) {
	case "nominatim":
		secondary = nominatim.New(httpClient, s.lang, s.config.Geocoder.ClientID)
	case "opencage":
		if s.config.Geocoder.APIKey == "" {
			return nil, nil, fmt.Errorf("opencage geocoder requires an API key")
		}
		secondary = opencage.New(httpClient, s.lang, s.config.Geocoder.APIKey)
	case "geocode-earth":
		if s.config.Geocoder.APIKey == "" {
			return nil, nil, fmt.Errorf("geocode-earth geocoder requires an API key")
		}
		secondary = geocodeearth.New(httpClient, s.lang, s.config.Geocoder.APIKey)
	case "none", "":
	default:
		return nil, nil, fmt.Errorf("unsupported geocoder type: %s", s.config.Geocoder.Secondary)
	}

	return primary, secondary, nil
}

// selectLocators returns the enabled geolocation sources, most precise first.
func (s *Service) selectLocators() []geolocation.Locator {
	httpClient := http.New(s.logger)
	var locators []geolocation.Locator

	if !s.config.GeoLocation.DisableGeolocationFile {
		locators = append(locators, file.New(s.config.GeoLocation.File))
	}

	if !s.config.GeoLocation.DisableGeoClue {
		locators = append(locators, geoclue.New(geoclue.AccuracyLevelCity))
	}

	if !s.config.GeoLocation.DisableGPSD {
		locators = append(locators, gpsd.New())
	}

	if !s.config.GeoLocation.DisableGeoIP {
		gip, err := geoip.New(httpClient)
		if err != nil {
			s.logger.Error("failed to create GeoIP locator", logger.Err(err))
		} else {
			locators = append(locators, gip)
		}
	}

	if !s.config.GeoLocation.DisableGeoAPI {
		gap, err := geoapi.New(httpClient)
		if err != nil {
			s.logger.Error("failed to create GeoAPI locator", logger.Err(err))
		} else {
			locators = append(locators, gap)
		}
	}

	if !s.config.GeoLocation.DisableICHNAEA {
		mls, err := ichnaea.New(httpClient)
		if err != nil {
			s.logger.Error("failed to create ICHNAEA locator", logger.Err(err))
		} else {
			locators = append(locators, mls)
		}
	}

	return locators
}

func (s *Service) selectWeatherProvider() (provider weather.Provider, err error) {
	switch strings.ToLower(s.config.Weather.Provider) {
	case "open-meteo":
		provider, err = openmeteo.New(http.New(s.logger), s.logger, s.config.Units)
		if err != nil {
			return provider, fmt.Errorf("failed to create Open-Meteo weather provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported weather provider: %s", s.config.Weather.Provider)
	}
	return provider, nil
}
