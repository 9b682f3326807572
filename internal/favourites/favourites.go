// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package favourites keeps the user's saved cities.
package favourites

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/wneessen/climatix/internal/store"
)

// StoreKey is the key under which the list is persisted as a JSON array of strings.
const StoreKey = "climatix_favs"

// MaxItems bounds the list to what the function keys can pick.
const MaxItems = 9

var ErrFull = errors.New("favourites list is full")

// List holds saved city labels in the order they were added, distinct
// case-insensitively. It is not safe for concurrent use.
type List struct {
	kv    store.KV
	items []string
}

func New(kv store.KV) *List {
	return &List{kv: kv}
}

// Load restores the list from the store. Missing data yields an empty list.
func (l *List) Load() error {
	l.items = nil
	raw, ok := l.kv.Get(StoreKey)
	if !ok || raw == "" {
		return nil
	}
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return fmt.Errorf("failed to parse favourites: %w", err)
	}
	for _, item := range stored {
		item = strings.TrimSpace(item)
		if item == "" || l.Contains(item) {
			continue
		}
		l.items = append(l.items, item)
		if len(l.items) == MaxItems {
			break
		}
	}
	return nil
}

// Add appends label unless it is already saved. It reports whether the list changed.
func (l *List) Add(label string) (bool, error) {
	label = strings.TrimSpace(label)
	if label == "" || l.Contains(label) {
		return false, nil
	}
	if len(l.items) >= MaxItems {
		return false, ErrFull
	}
	l.items = append(l.items, label)
	return true, l.save()
}

// Remove drops label, compared case-insensitively. It reports whether the list changed.
func (l *List) Remove(label string) (bool, error) {
	label = strings.TrimSpace(label)
	index := slices.IndexFunc(l.items, func(item string) bool {
		return strings.EqualFold(item, label)
	})
	if index < 0 {
		return false, nil
	}
	l.items = slices.Delete(l.items, index, index+1)
	return true, l.save()
}

func (l *List) Contains(label string) bool {
	return slices.ContainsFunc(l.items, func(item string) bool {
		return strings.EqualFold(item, label)
	})
}

// Items returns a copy of the saved labels, oldest first.
func (l *List) Items() []string {
	return slices.Clone(l.items)
}

func (l *List) save() error {
	data, err := json.Marshal(l.items)
	if err != nil {
		return fmt.Errorf("failed to encode favourites: %w", err)
	}
	if err = l.kv.Set(StoreKey, string(data)); err != nil {
		return fmt.Errorf("failed to store favourites: %w", err)
	}
	return nil
}
