// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemory(t *testing.T) {
	t.Run("set and get succeed", func(t *testing.T) {
		kv := NewMemory()
		if _, ok := kv.Get("key"); ok {
			t.Fatal("expected missing key to be reported")
		}
		if err := kv.Set("key", "value"); err != nil {
			t.Fatalf("failed to set value: %s", err)
		}
		value, ok := kv.Get("key")
		if !ok || value != "value" {
			t.Errorf("expected value to be %q, got %q (found: %t)", "value", value, ok)
		}
	})
}

func TestOpenFile(t *testing.T) {
	t.Run("missing file yields an empty store", func(t *testing.T) {
		kv, err := OpenFile(filepath.Join(t.TempDir(), "store.json"))
		if err != nil {
			t.Fatalf("failed to open store: %s", err)
		}
		if _, ok := kv.Get("key"); ok {
			t.Error("expected empty store")
		}
		if kv.Dirty() {
			t.Error("expected fresh store not to be dirty")
		}
	})
	t.Run("empty file yields an empty store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatalf("failed to write file: %s", err)
		}
		if _, err := OpenFile(path); err != nil {
			t.Fatalf("failed to open store: %s", err)
		}
	})
	t.Run("malformed file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		if err := os.WriteFile(path, []byte(`["not", "an", "object"]`), 0o600); err != nil {
			t.Fatalf("failed to write file: %s", err)
		}
		_, err := OpenFile(path)
		if err == nil {
			t.Fatal("expected open to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse store file") {
			t.Errorf("unexpected error: %s", err)
		}
	})
}

func TestFile_Flush(t *testing.T) {
	t.Run("flushed values survive a reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state", "store.json")
		kv, err := OpenFile(path)
		if err != nil {
			t.Fatalf("failed to open store: %s", err)
		}
		if err = kv.Set("climatix_units", "metric"); err != nil {
			t.Fatalf("failed to set value: %s", err)
		}
		if !kv.Dirty() {
			t.Error("expected store to be dirty after set")
		}
		if err = kv.Flush(); err != nil {
			t.Fatalf("failed to flush store: %s", err)
		}
		if kv.Dirty() {
			t.Error("expected store to be clean after flush")
		}

		reopened, err := OpenFile(path)
		if err != nil {
			t.Fatalf("failed to reopen store: %s", err)
		}
		value, ok := reopened.Get("climatix_units")
		if !ok || value != "metric" {
			t.Errorf("expected persisted value to be metric, got %q (found: %t)", value, ok)
		}
	})
	t.Run("flush without changes does not create the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		kv, err := OpenFile(path)
		if err != nil {
			t.Fatalf("failed to open store: %s", err)
		}
		if err = kv.Close(); err != nil {
			t.Fatalf("failed to close store: %s", err)
		}
		if _, err = os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected store file not to exist, got %v", err)
		}
	})
	t.Run("setting an unchanged value keeps the store clean", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		kv, _ := OpenFile(path)
		_ = kv.Set("key", "value")
		_ = kv.Flush()
		_ = kv.Set("key", "value")
		if kv.Dirty() {
			t.Error("expected store to be clean")
		}
	})
	t.Run("no temporary files are left behind", func(t *testing.T) {
		dir := t.TempDir()
		kv, _ := OpenFile(filepath.Join(dir, "store.json"))
		_ = kv.Set("key", "value")
		if err := kv.Flush(); err != nil {
			t.Fatalf("failed to flush store: %s", err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %s", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the store file, got %d entries", len(entries))
		}
	})
}
