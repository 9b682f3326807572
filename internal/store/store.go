// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package store provides the small key/value persistence used for user preferences
// and the recent searches list.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// KV is a string key/value store.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Memory is an in-memory KV store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// File is a KV store backed by a single JSON object on disk. Writes only touch the
// in-memory copy and mark it dirty; Flush persists it.
type File struct {
	mu    sync.Mutex
	path  string
	data  map[string]string
	dirty bool
}

// OpenFile loads the store from path. A missing file yields an empty store.
func OpenFile(path string) (*File, error) {
	store := &File{path: path, data: make(map[string]string)}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file %q: %w", path, err)
	}
	if len(raw) == 0 {
		return store, nil
	}
	if err = json.Unmarshal(raw, &store.data); err != nil {
		return nil, fmt.Errorf("failed to parse store file %q: %w", path, err)
	}
	if store.data == nil {
		store.data = make(map[string]string)
	}
	return store, nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	return value, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if current, ok := f.data[key]; ok && current == value {
		return nil
	}
	f.data[key] = value
	f.dirty = true
	return nil
}

// Dirty reports whether there are changes that have not been flushed yet.
func (f *File) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

// Flush writes pending changes to disk through a temporary file that replaces the
// store file atomically.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dirty {
		return nil
	}

	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store data: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create store directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary store file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary store file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary store file: %w", err)
	}
	if err = os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace store file %q: %w", f.path, err)
	}
	f.dirty = false
	return nil
}

// Close flushes pending changes.
func (f *File) Close() error {
	return f.Flush()
}
