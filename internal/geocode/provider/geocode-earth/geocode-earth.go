// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/climatix/internal/geocode"
	"github.com/wneessen/climatix/internal/http"
)

const (
	APIEndpoint = "https://api.geocode.earth/v1/autocomplete"
	APITimeout  = time.Second * 10
	name        = "geocode-earth"

	// coarseLayers restricts autocomplete to settlements and administrative areas.
	coarseLayers = "locality,localadmin,borough,county"
)

type GeocodeEarth struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

// Geometry holds a GeoJSON point, ordered longitude first.
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
}

type Properties struct {
	GID         string `json:"gid"`
	Name        string `json:"name"`
	Locality    string `json:"locality"`
	County      string `json:"county"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Label       string `json:"label"`
}

func New(client *http.Client, lang language.Tag, apikey string) *GeocodeEarth {
	return &GeocodeEarth{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (g *GeocodeEarth) Name() string {
	return name
}

// Search queries the autocomplete endpoint. Features without a point geometry are skipped.
func (g *GeocodeEarth) Search(ctx context.Context, query string, limit int) ([]geocode.Suggestion, error) {
	var response Response

	params := url.Values{}
	params.Set("api_key", g.apikey)
	params.Set("text", query)
	params.Set("size", strconv.Itoa(limit))
	params.Set("layers", coarseLayers)
	params.Set("lang", g.lang.String())

	if _, err := g.http.GetWithTimeout(ctx, APIEndpoint, &response, params, nil, APITimeout); err != nil {
		return nil, geocode.ClassifyError(name, err)
	}

	suggestions := make([]geocode.Suggestion, 0, len(response.Features))
	for i, feature := range response.Features {
		if len(feature.Geometry.Coordinates) < 2 {
			continue
		}
		props := feature.Properties
		cityName := props.Locality
		if cityName == "" {
			cityName = props.Name
		}
		if cityName == "" {
			cityName = query
		}
		id := props.GID
		if id == "" {
			id = strconv.Itoa(i)
		}
		admin := props.Region
		if admin == cityName {
			admin = ""
		}
		suggestions = append(suggestions, geocode.Suggestion{
			ID:        name + ":" + id,
			Name:      cityName,
			Country:   props.Country,
			Admin:     admin,
			Latitude:  feature.Geometry.Coordinates[1],
			Longitude: feature.Geometry.Coordinates[0],
			Source:    name,
		})
	}
	return suggestions, nil
}
