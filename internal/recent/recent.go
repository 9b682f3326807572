// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package recent keeps the bounded list of recently committed searches.
package recent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wneessen/climatix/internal/store"
)

// StoreKey is the key under which the list is persisted as a JSON array of strings.
const StoreKey = "climatix_recent_searches"

// List is an ordered, most recent first list of distinct (case-insensitive) search
// labels. It is not safe for concurrent use.
type List struct {
	kv    store.KV
	limit int
	items []string
}

// New returns an empty list persisting to kv. Call Load to restore stored entries.
func New(kv store.KV, limit int) *List {
	if limit < 1 {
		limit = 1
	}
	return &List{kv: kv, limit: limit}
}

// Load restores the list from the store. Missing or malformed data yields an empty
// list; stored entries are deduplicated and capped.
func (l *List) Load() error {
	l.items = nil
	raw, ok := l.kv.Get(StoreKey)
	if !ok || raw == "" {
		return nil
	}
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return fmt.Errorf("failed to parse recent searches: %w", err)
	}
	for _, item := range stored {
		item = strings.TrimSpace(item)
		if item == "" || l.contains(item) {
			continue
		}
		l.items = append(l.items, item)
		if len(l.items) == l.limit {
			break
		}
	}
	return nil
}

// Add moves label to the front, dropping any case-insensitive duplicate and the
// oldest entry beyond the limit, and persists the result.
func (l *List) Add(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	items := make([]string, 0, l.limit)
	items = append(items, label)
	for _, item := range l.items {
		if len(items) == l.limit {
			break
		}
		if strings.EqualFold(item, label) {
			continue
		}
		items = append(items, item)
	}
	l.items = items

	data, err := json.Marshal(l.items)
	if err != nil {
		return fmt.Errorf("failed to encode recent searches: %w", err)
	}
	if err = l.kv.Set(StoreKey, string(data)); err != nil {
		return fmt.Errorf("failed to store recent searches: %w", err)
	}
	return nil
}

// Items returns a copy of the current entries, most recent first.
func (l *List) Items() []string {
	items := make([]string, len(l.items))
	copy(items, l.items)
	return items
}

func (l *List) contains(label string) bool {
	for _, item := range l.items {
		if strings.EqualFold(item, label) {
			return true
		}
	}
	return false
}
