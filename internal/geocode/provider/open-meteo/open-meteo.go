// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

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
	APIEndpoint = "https://geocoding-api.open-meteo.com/v1/search"
	APITimeout  = time.Second * 10
	name        = "open-meteo"
)

type OpenMeteo struct {
	http *http.Client
	lang language.Tag
}

// Response is the geocoding API answer. A query without matches omits the results key.
type Response struct {
	Results []Result `json:"results"`
}

type Result struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"`
}

func New(client *http.Client, lang language.Tag) *OpenMeteo {
	return &OpenMeteo{
		http: client,
		lang: lang,
	}
}

func (o *OpenMeteo) Name() string {
	return name
}

// Search performs a structured city search for the given name.
func (o *OpenMeteo) Search(ctx context.Context, query string, limit int) ([]geocode.Suggestion, error) {
	var response Response

	base, _ := o.lang.Base()
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(limit))
	params.Set("language", base.String())
	params.Set("format", "json")

	if _, err := o.http.GetWithTimeout(ctx, APIEndpoint, &response, params, nil, APITimeout); err != nil {
		return nil, geocode.ClassifyError(name, err)
	}

	suggestions := make([]geocode.Suggestion, 0, len(response.Results))
	for _, result := range response.Results {
		if strings.TrimSpace(result.Name) == "" {
			continue
		}
		suggestions = append(suggestions, geocode.Suggestion{
			ID:        name + ":" + strconv.FormatInt(result.ID, 10),
			Name:      result.Name,
			Country:   result.Country,
			Admin:     result.Admin1,
			Latitude:  result.Latitude,
			Longitude: result.Longitude,
			Source:    name,
		})
	}
	return suggestions, nil
}
