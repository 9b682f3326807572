// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geocode"
	"github.com/wneessen/climatix/internal/logger"
	"github.com/wneessen/climatix/internal/tui"
)

const (
	FetchTimeout = time.Second * 20
	resolveLimit = 10
)

var ErrUnknownCity = errors.New("unable to resolve city")

// enqueueLookup hands a committed label to the lookup worker. Only the latest label is
// kept, so it never blocks the controller.
func (s *Service) enqueueLookup(label string) {
	select {
	case <-s.lookups:
	default:
	}
	select {
	case s.lookups <- label:
	default:
	}
}

func (s *Service) processLookups(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case label := <-s.lookups:
			s.controller.SetBusy(true)
			s.lookup(ctx, label)
			s.controller.SetBusy(false)
		}
	}
}

// lookup resolves label, fetches its weather and publishes the rendered report.
func (s *Service) lookup(ctx context.Context, label string) {
	ctxFetch, cancelFetch := context.WithTimeout(ctx, FetchTimeout)
	defer cancelFetch()

	coord, err := s.resolve(ctxFetch, label)
	if err != nil {
		s.logger.Error("failed to resolve city", slog.String("label", label), logger.Err(err))
		s.publishReport(tui.Report{Label: label, Err: err})
		return
	}

	s.targetLock.Lock()
	s.target = &target{label: label, coord: coord}
	s.targetLock.Unlock()

	s.publishReport(s.report(ctxFetch, label, coord))
}

// refreshWeather re-fetches the weather for the current target.
func (s *Service) refreshWeather(ctx context.Context) {
	s.targetLock.RLock()
	current := s.target
	s.targetLock.RUnlock()
	if current == nil {
		return
	}

	ctxFetch, cancelFetch := context.WithTimeout(ctx, FetchTimeout)
	defer cancelFetch()
	s.publishReport(s.report(ctxFetch, current.label, current.coord))
}

func (s *Service) report(ctx context.Context, label string, coord geo.Coordinate) tui.Report {
	data, err := s.weather.GetWeather(ctx, coord)
	if err != nil {
		s.logger.Error("failed to get weather data", slog.String("provider", s.weather.Name()),
			slog.String("label", label), logger.Err(err))
		return tui.Report{Label: label, Err: err}
	}
	text, err := s.presenter.Report(label, data)
	if err != nil {
		s.logger.Error("failed to render weather report", logger.Err(err))
		return tui.Report{Label: label, Err: err}
	}
	s.logger.Debug("weather report updated", slog.String("label", label),
		slog.Float64("lat", coord.Lat), slog.Float64("lon", coord.Lon))
	return tui.Report{Label: label, Text: text}
}

// publishReport replaces any report the UI has not picked up yet.
func (s *Service) publishReport(report tui.Report) {
	select {
	case <-s.reports:
	default:
	}
	select {
	case s.reports <- report:
	default:
	}
}

// resolve turns a committed label into coordinates. "lat, lon" labels are parsed
// directly. Other labels are matched against the primary provider by their leading
// name, then searched verbatim on the secondary provider. The first primary candidate
// is the last resort.
func (s *Service) resolve(ctx context.Context, label string) (geo.Coordinate, error) {
	if coord, err := geo.Parse(label); err == nil {
		return coord, nil
	}

	name, _, _ := strings.Cut(label, ",")
	name = strings.TrimSpace(name)
	candidates, err := s.primary.Search(ctx, name, resolveLimit)
	if err != nil {
		s.logger.Warn("primary geocoder failed during resolve", slog.String("provider", s.primary.Name()),
			logger.Err(err))
	}
	for _, candidate := range candidates {
		if strings.EqualFold(candidate.Label(), label) {
			return coordinate(candidate), nil
		}
	}

	if s.secondary != nil {
		results, err := s.secondary.Search(ctx, label, 1)
		if err != nil {
			s.logger.Warn("secondary geocoder failed during resolve", slog.String("provider", s.secondary.Name()),
				logger.Err(err))
		}
		if len(results) > 0 {
			return coordinate(results[0]), nil
		}
	}

	if len(candidates) > 0 {
		return coordinate(candidates[0]), nil
	}
	return geo.Coordinate{}, fmt.Errorf("%w: %q", ErrUnknownCity, label)
}

func coordinate(s geocode.Suggestion) geo.Coordinate {
	return geo.Coordinate{Lat: s.Latitude, Lon: s.Longitude}
}
