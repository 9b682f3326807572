// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geolocation"
)

const (
	host = "localhost"
	port = "2947"
	name = "gpsd"

	fallbackAccuracy3DFix = 10 // ~10 m typical consumer GPS in open sky
	fallbackAccuracy2DFix = 25
	maxFixAge             = time.Minute
)

// Locator keeps a gpsd watch session open once it was first asked for a position and
// answers with the latest TPV fix that has at least a 2D fix. go-gpsd offers no way to
// close a session, so the session is reused until gpsd ends it.
type Locator struct {
	addr     string
	dialFn   func(addr string) (<-chan bool, error)
	locateFn func(ctx context.Context) (geo.Coordinate, error)

	mu        sync.Mutex
	connected bool
	last      geo.Coordinate
	lastAt    time.Time
	updated   chan struct{}
}

func New() *Locator {
	locator := &Locator{
		addr:    net.JoinHostPort(host, port),
		updated: make(chan struct{}),
	}
	locator.dialFn = locator.dial
	locator.locateFn = locator.locate
	return locator
}

func (l *Locator) Name() string {
	return name
}

func (l *Locator) Locate(ctx context.Context) (geo.Coordinate, error) {
	return l.locateFn(ctx)
}

func (l *Locator) locate(ctx context.Context) (geo.Coordinate, error) {
	if err := l.connect(); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %w", geolocation.ErrUnavailable, err)
	}
	for {
		l.mu.Lock()
		coord, at, updated := l.last, l.lastAt, l.updated
		l.mu.Unlock()
		if !at.IsZero() && time.Since(at) < maxFixAge {
			return coord, nil
		}
		select {
		case <-ctx.Done():
			return geo.Coordinate{}, fmt.Errorf("%w: no gpsd fix received: %w", geolocation.ErrUnavailable,
				ctx.Err())
		case <-updated:
		}
	}
}

func (l *Locator) connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.connected {
		return nil
	}
	done, err := l.dialFn(l.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to gpsd at %q: %w", l.addr, err)
	}
	l.connected = true
	go func() {
		<-done
		l.mu.Lock()
		l.connected = false
		l.mu.Unlock()
	}()
	return nil
}

func (l *Locator) dial(addr string) (<-chan bool, error) {
	session, err := gpsd.Dial(addr)
	if err != nil {
		return nil, err
	}
	session.AddFilter("TPV", l.handleReport)
	return session.Watch(), nil
}

// handleReport is called by the gpsd session for every TPV report.
func (l *Locator) handleReport(r interface{}) {
	tpv, ok := r.(*gpsd.TPVReport)
	if !ok {
		return
	}
	coord, ok := coordinateFromReport(tpv)
	if !ok {
		return
	}
	l.mu.Lock()
	l.last = coord
	l.lastAt = time.Now()
	close(l.updated)
	l.updated = make(chan struct{})
	l.mu.Unlock()
}

func coordinateFromReport(tpv *gpsd.TPVReport) (geo.Coordinate, bool) {
	if tpv.Mode < gpsd.Mode2D {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{
		Lat: geolocation.Truncate(tpv.Lat, geolocation.TruncPrecision),
		Lon: geolocation.Truncate(tpv.Lon, geolocation.TruncPrecision),
		Acc: horizontalAccuracy(tpv),
	}, true
}

func horizontalAccuracy(tpv *gpsd.TPVReport) float64 {
	switch {
	case tpv.Epx > 0 && tpv.Epy > 0:
		return math.Hypot(tpv.Epx, tpv.Epy)
	case tpv.Mode >= gpsd.Mode3D:
		return fallbackAccuracy3DFix
	default:
		return fallbackAccuracy2DFix
	}
}
