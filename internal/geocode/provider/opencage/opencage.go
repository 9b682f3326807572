// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/climatix/internal/geocode"
	"github.com/wneessen/climatix/internal/http"
)

const (
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

type OpenCage struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

type Result struct {
	Components  Components `json:"components"`
	DisplayName string     `json:"formatted"`
	Geometry    Geometry   `json:"geometry"`
}

type Components struct {
	Type           string `json:"_type"`
	NormalizedCity string `json:"_normalized_city"`
	City           string `json:"city"`
	Town           string `json:"town"`
	Village        string `json:"village"`
	County         string `json:"county"`
	State          string `json:"state"`
	Region         string `json:"region"`
	Country        string `json:"country"`
	CountryCode    string `json:"country_code"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) *OpenCage {
	return &OpenCage{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}
}

func (o *OpenCage) Name() string {
	return name
}

// Search performs a forward geocoding request. OpenCage has no stable record
// identifier, so the coordinates make up the native ID.
func (o *OpenCage) Search(ctx context.Context, query string, limit int) ([]geocode.Suggestion, error) {
	var response Response

	params := url.Values{}
	params.Set("key", o.apikey)
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("no_annotations", "1")
	params.Set("no_record", "1")
	params.Set("language", o.lang.String())

	if _, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, params, nil, APITimeout); err != nil {
		return nil, geocode.ClassifyError(name, err)
	}

	suggestions := make([]geocode.Suggestion, 0, len(response.Results))
	for _, result := range response.Results {
		comp := result.Components
		cityName := comp.NormalizedCity
		for _, candidate := range []string{comp.City, comp.Town, comp.Village, comp.County, query} {
			if cityName != "" {
				break
			}
			cityName = strings.TrimSpace(candidate)
		}
		admin := comp.State
		if strings.EqualFold(admin, cityName) {
			admin = comp.Region
		}
		suggestions = append(suggestions, geocode.Suggestion{
			ID: name + ":" + strconv.FormatFloat(result.Geometry.Lat, 'f', -1, 64) + "," +
				strconv.FormatFloat(result.Geometry.Lon, 'f', -1, 64),
			Name:      cityName,
			Country:   comp.Country,
			Admin:     admin,
			Latitude:  result.Geometry.Lat,
			Longitude: result.Geometry.Lon,
			Source:    name,
		})
	}
	return suggestions, nil
}
