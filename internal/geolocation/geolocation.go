// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wneessen/climatix/internal/geo"
	"github.com/wneessen/climatix/internal/logger"
)

// Accuracy levels in meters for sources that do not report their own accuracy.
const (
	AccuracyCountry = 300000
	AccuracyRegion  = 100000
	AccuracyCity    = 15000
	AccuracyZip     = 3000
	AccuracyUnknown = 1000000
	TruncPrecision  = 4

	// DefaultTimeout bounds a single Chain.Locate call.
	DefaultTimeout = time.Second * 15
)

var (
	// ErrDenied is returned when the user or the system refused access to the location.
	ErrDenied = errors.New("location access denied")
	// ErrUnavailable is returned when no location could be determined.
	ErrUnavailable = errors.New("location unavailable")
)

// Locator determines the current position once.
type Locator interface {
	Name() string
	Locate(ctx context.Context) (geo.Coordinate, error)
}

// Chain asks all its locators concurrently and returns the most accurate answer.
type Chain struct {
	logger   *logger.Logger
	locators []Locator
	timeout  time.Duration
}

// NewChain returns a Chain over the given locators. Every Locate call is bounded by timeout.
func NewChain(log *logger.Logger, timeout time.Duration, locators ...Locator) *Chain {
	return &Chain{
		logger:   log,
		locators: locators,
		timeout:  timeout,
	}
}

func (c *Chain) Name() string {
	return "chain"
}

// Locate returns the coordinate with the best (lowest) accuracy radius. If no locator
// succeeded it returns ErrDenied when at least one of them was denied, otherwise an
// ErrUnavailable that joins all causes.
func (c *Chain) Locate(ctx context.Context) (geo.Coordinate, error) {
	if len(c.locators) == 0 {
		return geo.Coordinate{}, fmt.Errorf("%w: no location providers configured", ErrUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var mu sync.Mutex
	var best geo.Coordinate
	var found, denied bool
	var errs []error

	group := new(errgroup.Group)
	for _, locator := range c.locators {
		group.Go(func() error {
			coord, err := safeLocate(ctx, locator)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Debug("location provider failed", slog.String("provider", locator.Name()),
					logger.Err(err))
				if errors.Is(err, ErrDenied) {
					denied = true
				}
				errs = append(errs, fmt.Errorf("%s: %w", locator.Name(), err))
				return nil
			}
			if !coord.Valid() {
				errs = append(errs, fmt.Errorf("%s: %w", locator.Name(), geo.ErrInvalidCoordinate))
				return nil
			}
			if !found || betterThan(coord, best) {
				best, found = coord, true
			}
			return nil
		})
	}
	_ = group.Wait()

	switch {
	case found:
		return best, nil
	case denied:
		return geo.Coordinate{}, ErrDenied
	default:
		return geo.Coordinate{}, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}
}

// safeLocate invokes the locator and recovers from potential panics.
func safeLocate(ctx context.Context, locator Locator) (coord geo.Coordinate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: provider panicked: %v", ErrUnavailable, r)
		}
	}()
	return locator.Locate(ctx)
}

func betterThan(coord, other geo.Coordinate) bool {
	return accuracy(coord) < accuracy(other)
}

func accuracy(coord geo.Coordinate) float64 {
	if coord.Acc <= 0 {
		return AccuracyUnknown
	}
	return coord.Acc
}

// Truncate truncates x to the given number of decimal places.
func Truncate(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Trunc(x*p) / p
}
