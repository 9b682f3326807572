// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/climatix/internal/geocode"
	"github.com/wneessen/climatix/internal/http"
)

const (
	APISearchEndpoint = "https://nominatim.openstreetmap.org/search"
	APITimeout        = time.Second * 10
	name              = "osm-nominatim"

	// fallbackIDBase is added to the result index when a record carries no usable place_id.
	fallbackIDBase = 100000
)

type Nominatim struct {
	http     *http.Client
	lang     language.Tag
	clientID string
}

type SearchResult struct {
	PlaceID json.RawMessage `json:"place_id"`
	APILat  string          `json:"lat"`
	APILon  string          `json:"lon"`
	Name    string          `json:"name"`
	Address Address         `json:"address"`
}

type Address struct {
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	County        string `json:"county"`
	StateDistrict string `json:"state_district"`
	State         string `json:"state"`
	Province      string `json:"province"`
	Region        string `json:"region"`
	Country       string `json:"country"`
}

// New returns the Nominatim searcher. Nominatim's usage policy asks for an identifying
// User-Agent, so a non-empty clientID replaces the default one.
func New(client *http.Client, lang language.Tag, clientID string) *Nominatim {
	return &Nominatim{
		http:     client,
		lang:     lang,
		clientID: clientID,
	}
}

func (n *Nominatim) Name() string {
	return name
}

// Search performs a free-text place search and normalizes every record into a
// geocode.Suggestion. Records with unparsable coordinates are skipped.
func (n *Nominatim) Search(ctx context.Context, query string, limit int) ([]geocode.Suggestion, error) {
	var result []SearchResult

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")
	params.Set("accept-language", n.lang.String())

	var headers map[string]string
	if n.clientID != "" {
		headers = map[string]string{"User-Agent": n.clientID}
	}
	if _, err := n.http.GetWithTimeout(ctx, APISearchEndpoint, &result, params, headers, APITimeout); err != nil {
		return nil, geocode.ClassifyError(name, err)
	}

	suggestions := make([]geocode.Suggestion, 0, len(result))
	for i, record := range result {
		lat, err := strconv.ParseFloat(record.APILat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(record.APILon, 64)
		if err != nil {
			continue
		}
		cityName := firstNonEmpty(record.Address.City, record.Address.Town, record.Address.Village,
			record.Address.County, record.Address.StateDistrict, record.Name, query)
		suggestions = append(suggestions, geocode.Suggestion{
			ID:        name + ":" + placeID(record.PlaceID, i),
			Name:      cityName,
			Country:   record.Address.Country,
			Admin:     adminRegion(record.Address, cityName),
			Latitude:  lat,
			Longitude: lon,
			Source:    name,
		})
	}
	return suggestions, nil
}

// adminRegion picks the first of state, province and region that is set and does
// not just repeat the city name (e.g. city states like Berlin).
func adminRegion(addr Address, cityName string) string {
	for _, candidate := range []string{addr.State, addr.Province, addr.Region} {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && !strings.EqualFold(candidate, cityName) {
			return candidate
		}
	}
	return ""
}

// placeID returns the native place_id, which Nominatim sends as a number or a numeric
// string depending on the output format.
func placeID(raw json.RawMessage, index int) string {
	id := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if parsed, err := strconv.ParseInt(id, 10, 64); err == nil && parsed != 0 {
		return strconv.FormatInt(parsed, 10)
	}
	return strconv.Itoa(fallbackIDBase + index)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
