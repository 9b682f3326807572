// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geolocation"
)

const name = "geolocation_file"

var ErrNoCoordinates = errors.New("no valid coordinates found in geolocation file")

// Locator reads a fixed position from a file. The first line of the form "lat,lon"
// wins; lines starting with # are comments. The file is considered the most accurate
// source available.
type Locator struct {
	path string
}

func New(path string) *Locator {
	return &Locator{path: path}
}

func (l *Locator) Name() string {
	return name
}

func (l *Locator) Locate(context.Context) (geo.Coordinate, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: failed to read geolocation file %q: %w",
			geolocation.ErrUnavailable, l.path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		latStr, lonStr, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			continue
		}
		return geo.Coordinate{Lat: lat, Lon: lon, Acc: 5}, nil
	}
	return geo.Coordinate{}, fmt.Errorf("%w: %w", geolocation.ErrUnavailable, ErrNoCoordinates)
}
