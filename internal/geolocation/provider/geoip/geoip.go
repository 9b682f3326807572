// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geolocation"
	"github.com/wneessen/climatix/internal/http"
)

const (
	APIEndpoint   = "https://reallyfreegeoip.org/json/"
	LookupTimeout = time.Second * 5
	name          = "geoip"
)

type Locator struct {
	http *http.Client
}

type APIResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country_name"`
	RegionCode  string  `json:"region_code,omitempty"`
	Region      string  `json:"region_name,omitempty"`
	City        string  `json:"city,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
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

// Locate looks up the position of the public IP address. The accuracy is derived
// from the most specific field the API filled in.
func (l *Locator) Locate(ctx context.Context) (geo.Coordinate, error) {
	result := new(APIResult)
	if _, err := l.http.GetWithTimeout(ctx, APIEndpoint, result, nil, nil, LookupTimeout); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: failed to get geolocation data from API: %w",
			geolocation.ErrUnavailable, err)
	}
	if result.CountryCode == "" && result.Latitude == 0 && result.Longitude == 0 {
		return geo.Coordinate{}, fmt.Errorf("%w: API returned no location", geolocation.ErrUnavailable)
	}

	acc := float64(geolocation.AccuracyCountry)
	if result.RegionCode != "" {
		acc = geolocation.AccuracyRegion
	}
	if result.City != "" {
		acc = geolocation.AccuracyCity
	}
	if result.ZipCode != "" {
		acc = geolocation.AccuracyZip
	}

	return geo.Coordinate{
		Lat: geolocation.Truncate(result.Latitude, geolocation.TruncPrecision),
		Lon: geolocation.Truncate(result.Longitude, geolocation.TruncPrecision),
		Acc: acc,
	}, nil
}
