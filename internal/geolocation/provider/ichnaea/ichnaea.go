// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package ichnaea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geolocation"
	"github.com/wneessen/climatix/internal/http"
)

const (
	apiEndpoint   = "https://api.beacondb.net/v1/geolocate"
	lookupTimeout = time.Second * 5
	name          = "ichnaea"
)

// Locator asks an Ichnaea compatible service (beaconDB) for the position of the
// currently visible WiFi access points.
type Locator struct {
	http           *http.Client
	wlan           *wifi.Client
	accessPointsFn func() ([]WirelessNetwork, error)
}

type APIResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

type WirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

func New(client *http.Client) (*Locator, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	wlan, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create wifi client: %w", err)
	}

	locator := &Locator{
		http: client,
		wlan: wlan,
	}
	locator.accessPointsFn = locator.wifiAccessPoints
	return locator, nil
}

func (l *Locator) Name() string {
	return name
}

// Locate scans the visible access points and posts them to the geolocation API. An
// empty scan still lets the API fall back to the IP address.
func (l *Locator) Locate(ctx context.Context) (geo.Coordinate, error) {
	aps, err := l.accessPointsFn()
	if err != nil {
		aps = nil
	}

	type request struct {
		ConsiderIP   bool              `json:"considerIp"`
		Accesspoints []WirelessNetwork `json:"wifiAccessPoints,omitempty"`
	}
	req := request{
		ConsiderIP:   true,
		Accesspoints: aps,
	}
	bodyBuffer := bytes.NewBuffer(nil)
	if err = json.NewEncoder(bodyBuffer).Encode(req); err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	result := new(APIResult)
	if _, err = l.http.PostWithTimeout(ctx, apiEndpoint, result, bodyBuffer,
		map[string]string{"Content-Type": "application/json"}, lookupTimeout); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: failed to get geolocation data from API: %w",
			geolocation.ErrUnavailable, err)
	}

	return geo.Coordinate{
		Lat: geolocation.Truncate(result.Location.Latitude, geolocation.TruncPrecision),
		Lon: geolocation.Truncate(result.Location.Longitude, geolocation.TruncPrecision),
		Acc: geolocation.Truncate(result.Accuracy, geolocation.TruncPrecision),
	}, nil
}

func (l *Locator) wifiAccessPoints() ([]WirelessNetwork, error) {
	var checkIfaces []*wifi.Interface
	var list []WirelessNetwork

	ifaces, err := l.wlan.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		checkIfaces = append(checkIfaces, iface)
	}

	for _, iface := range checkIfaces {
		aps, err := l.wlan.AccessPoints(iface)
		if err != nil {
			continue
		}
		for _, ap := range aps {
			if !mappable(ap.SSID) {
				continue
			}
			list = append(list, WirelessNetwork{
				SignalStrength: ap.Signal / 100,
				MACAddress:     ap.BSSID.String(),
				LastSeen:       ap.LastSeen.Milliseconds(),
			})
		}
	}

	return list, nil
}

// mappable reports whether an access point may be used for geolocation. Hidden
// networks and networks that opted out with the _nomap suffix are skipped.
func mappable(ssid string) bool {
	return ssid != "" && ssid[0] != '\x00' && !strings.HasSuffix(ssid, "_nomap")
}
