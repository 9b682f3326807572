// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geolocation"
	"github.com/wneessen/climatix/internal/http"
)

const (
	apiEndpoint   = "https://geoapi.info/api/geo"
	lookupTimeout = time.Second * 5
	name          = "geoapi"
)

type Locator struct {
	http *http.Client
}

type APIResult struct {
	IP       string `json:"ip"`
	Location struct {
		CountryCode string `json:"country,omitempty"`
		Country     string `json:"countryName,omitempty"`
		Region      string `json:"region,omitempty"`
		City        string `json:"city,omitempty"`
		ZipCode     string `json:"postalCode,omitempty"`
		TimeZone    string `json:"timezone"`
		Coordinates struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"coordinates"`
	} `json:"location"`
}

func New(client *http.Client) (*Locator, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	return &Locator{http: client}, nil
}

func (l *Locator) Name() string {
	return name
}

func (l *Locator) Locate(ctx context.Context) (geo.Coordinate, error) {
	result := new(APIResult)
	if _, err := l.http.GetWithTimeout(ctx, apiEndpoint, result, nil, nil, lookupTimeout); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: failed to get geolocation data from API: %w",
			geolocation.ErrUnavailable, err)
	}

	acc := float64(geolocation.AccuracyUnknown)
	if result.Location.CountryCode != "" {
		acc = geolocation.AccuracyCountry
	}
	if result.Location.Region != "" {
		acc = geolocation.AccuracyRegion
	}
	if result.Location.City != "" {
		acc = geolocation.AccuracyCity
	}
	if result.Location.ZipCode != "" {
		acc = geolocation.AccuracyZip
	}

	lat, err := strconv.ParseFloat(result.Location.Coordinates.Latitude, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: failed to parse latitude from API response: %w",
			geolocation.ErrUnavailable, err)
	}
	lon, err := strconv.ParseFloat(result.Location.Coordinates.Longitude, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: failed to parse longitude from API response: %w",
			geolocation.ErrUnavailable, err)
	}

	return geo.Coordinate{
		Lat: geolocation.Truncate(lat, geolocation.TruncPrecision),
		Lon: geolocation.Truncate(lon, geolocation.TruncPrecision),
		Acc: acc,
	}, nil
}
