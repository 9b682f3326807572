// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/climatix/internal/http"
)

var (
	// ErrNetwork indicates that a provider was unreachable or answered with a non-2xx status.
	ErrNetwork = errors.New("geocoding provider network failure")
	// ErrParse indicates a malformed or unexpectedly shaped provider response.
	ErrParse = errors.New("geocoding provider parse failure")
)

// Suggestion is a single normalized geocoding result.
type Suggestion struct {
	// ID is namespaced by provider ("<provider>:<native id>") and unique within a result set.
	ID        string
	Name      string
	Country   string
	Admin     string
	Latitude  float64
	Longitude float64
	Source    string
}

// Label composes the canonical city label, "name, admin, country" or "name, country".
// Empty parts are left out.
func (s Suggestion) Label() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{s.Name, s.Admin, s.Country} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// Searcher performs a forward city search.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

// ClassifyError attaches ErrNetwork or ErrParse to an error returned by the HTTP client.
// Context cancellation is passed through unchanged.
func ClassifyError(provider string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, http.ErrDecode):
		return fmt.Errorf("%s: %w: %w", provider, ErrParse, err)
	default:
		return fmt.Errorf("%s: %w: %w", provider, ErrNetwork, err)
	}
}

// Merge reconciles the primary and secondary result lists into one ordered list.
// Primary results seed the list in order, capped at primaryLimit. Secondary results
// are appended only when no entry with the same name and country (case-insensitive)
// or the same ID is present, and only while the list holds fewer than max entries.
func Merge(primary, secondary []Suggestion, primaryLimit, max int) []Suggestion {
	if primaryLimit > max {
		primaryLimit = max
	}
	merged := make([]Suggestion, 0, max)
	seenKey := make(map[string]struct{}, max)
	seenID := make(map[string]struct{}, max)

	add := func(s Suggestion) {
		merged = append(merged, s)
		seenKey[dedupKey(s)] = struct{}{}
		if s.ID != "" {
			seenID[s.ID] = struct{}{}
		}
	}

	for _, s := range primary {
		if len(merged) >= primaryLimit {
			break
		}
		add(s)
	}
	for _, s := range secondary {
		if len(merged) >= max {
			break
		}
		if _, ok := seenKey[dedupKey(s)]; ok {
			continue
		}
		if _, ok := seenID[s.ID]; ok && s.ID != "" {
			continue
		}
		add(s)
	}
	return merged
}

func dedupKey(s Suggestion) string {
	return strings.ToLower(strings.TrimSpace(s.Name)) + "\x00" + strings.ToLower(strings.TrimSpace(s.Country))
}
