// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoclue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/geolocation"
)

const (
	name = "geoclue"

	busName          = "org.freedesktop.GeoClue2"
	managerPath      = dbus.ObjectPath("/org/freedesktop/GeoClue2/Manager")
	managerGetClient = "org.freedesktop.GeoClue2.Manager.GetClient"
	clientInterface  = "org.freedesktop.GeoClue2.Client"
	locationIface    = "org.freedesktop.GeoClue2.Location"

	// DesktopID identifies the application to GeoClue's authorization agent.
	DesktopID = "climatix"

	pollInterval = time.Millisecond * 250
)

// AccuracyLevel mirrors GeoClue's GClueAccuracyLevel enumeration.
type AccuracyLevel uint32

const (
	AccuracyLevelNone         AccuracyLevel = 0
	AccuracyLevelCountry      AccuracyLevel = 1
	AccuracyLevelCity         AccuracyLevel = 4
	AccuracyLevelNeighborhood AccuracyLevel = 5
	AccuracyLevelStreet       AccuracyLevel = 6
	AccuracyLevelExact        AccuracyLevel = 8
)

// deniedErrors are the D-Bus error names GeoClue answers with when the agent or the
// configuration refuses the request.
var deniedErrors = map[string]struct{}{
	"org.freedesktop.DBus.Error.AccessDenied": {},
	"org.freedesktop.DBus.Error.AuthFailed":   {},
}

// Locator asks the GeoClue2 service on the system bus for the current position.
type Locator struct {
	level    AccuracyLevel
	connFn   func() (*dbus.Conn, error)
	locateFn func(ctx context.Context) (geo.Coordinate, error)
}

func New(level AccuracyLevel) *Locator {
	locator := &Locator{
		level:  level,
		connFn: func() (*dbus.Conn, error) { return dbus.ConnectSystemBus() },
	}
	locator.locateFn = locator.locate
	return locator
}

func (l *Locator) Name() string {
	return name
}

func (l *Locator) Locate(ctx context.Context) (geo.Coordinate, error) {
	return l.locateFn(ctx)
}

func (l *Locator) locate(ctx context.Context) (coord geo.Coordinate, err error) {
	conn, err := l.connFn()
	if err != nil {
		return coord, fmt.Errorf("%w: failed to connect to system bus: %w", geolocation.ErrUnavailable, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
		}
	}()

	var clientPath dbus.ObjectPath
	manager := conn.Object(busName, managerPath)
	if err = manager.CallWithContext(ctx, managerGetClient, 0).Store(&clientPath); err != nil {
		return coord, classify("failed to get geoclue client", err)
	}
	client := conn.Object(busName, clientPath)
	if err = client.SetProperty(clientInterface+".DesktopId", dbus.MakeVariant(DesktopID)); err != nil {
		return coord, classify("failed to set desktop id", err)
	}
	if err = client.SetProperty(clientInterface+".RequestedAccuracyLevel",
		dbus.MakeVariant(uint32(l.level))); err != nil {
		return coord, classify("failed to set requested accuracy level", err)
	}
	if err = client.CallWithContext(ctx, clientInterface+".Start", 0).Err; err != nil {
		return coord, classify("failed to start geoclue client", err)
	}
	defer func() {
		_ = client.Call(clientInterface+".Stop", 0).Err
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		variant, err := client.GetProperty(clientInterface + ".Location")
		if err != nil {
			return coord, classify("failed to get geoclue location", err)
		}
		if path, ok := variant.Value().(dbus.ObjectPath); ok && path.IsValid() && path != "/" {
			return readLocation(conn.Object(busName, path))
		}
		select {
		case <-ctx.Done():
			return coord, fmt.Errorf("%w: no geoclue location received: %w", geolocation.ErrUnavailable,
				ctx.Err())
		case <-ticker.C:
		}
	}
}

func readLocation(obj dbus.BusObject) (geo.Coordinate, error) {
	var coord geo.Coordinate
	for property, target := range map[string]*float64{
		"Latitude":  &coord.Lat,
		"Longitude": &coord.Lon,
		"Accuracy":  &coord.Acc,
	} {
		variant, err := obj.GetProperty(locationIface + "." + property)
		if err != nil {
			return geo.Coordinate{}, classify("failed to read location "+property, err)
		}
		value, ok := variant.Value().(float64)
		if !ok {
			return geo.Coordinate{}, fmt.Errorf("%w: unexpected type for location %s: %T",
				geolocation.ErrUnavailable, property, variant.Value())
		}
		*target = value
	}
	coord.Lat = geolocation.Truncate(coord.Lat, geolocation.TruncPrecision)
	coord.Lon = geolocation.Truncate(coord.Lon, geolocation.TruncPrecision)
	return coord, nil
}

// classify maps D-Bus authorization failures to ErrDenied and anything else to
// ErrUnavailable.
func classify(msg string, err error) error {
	if isDenied(err) {
		return fmt.Errorf("%w: %s: %w", geolocation.ErrDenied, msg, err)
	}
	return fmt.Errorf("%w: %s: %w", geolocation.ErrUnavailable, msg, err)
}

func isDenied(err error) bool {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		_, ok := deniedErrors[dbusErr.Name]
		return ok
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) {
		_, ok := deniedErrors[dbusErrPtr.Name]
		return ok
	}
	return false
}
