// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package favourites

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/wneessen/climatix/internal/store"
)

func TestList_Add(t *testing.T) {
	t.Run("entries keep the order they were added in", func(t *testing.T) {
		list := New(store.NewMemory())
		for _, label := range []string{"Hyderabad, India", "Mumbai, India"} {
			if _, err := list.Add(label); err != nil {
				t.Fatalf("failed to add entry: %s", err)
			}
		}
		want := []string{"Hyderabad, India", "Mumbai, India"}
		if got := list.Items(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
	t.Run("case-insensitive duplicates are ignored", func(t *testing.T) {
		list := New(store.NewMemory())
		_, _ = list.Add("Mumbai, India")
		added, err := list.Add("MUMBAI, INDIA")
		if err != nil {
			t.Fatalf("failed to add entry: %s", err)
		}
		if added {
			t.Error("expected duplicate not to be added")
		}
		if got := list.Items(); !reflect.DeepEqual(got, []string{"Mumbai, India"}) {
			t.Errorf("expected a single entry, got %v", got)
		}
	})
	t.Run("blank labels are ignored", func(t *testing.T) {
		list := New(store.NewMemory())
		if added, _ := list.Add("  "); added || len(list.Items()) != 0 {
			t.Errorf("expected empty list, got %v", list.Items())
		}
	})
	t.Run("full list rejects new entries", func(t *testing.T) {
		list := New(store.NewMemory())
		for i := range MaxItems {
			if _, err := list.Add(fmt.Sprintf("City %d", i)); err != nil {
				t.Fatalf("failed to add entry: %s", err)
			}
		}
		if _, err := list.Add("One too many"); !errors.Is(err, ErrFull) {
			t.Errorf("expected error to be %s, got %v", ErrFull, err)
		}
		if len(list.Items()) != MaxItems {
			t.Errorf("expected %d entries, got %d", MaxItems, len(list.Items()))
		}
	})
	t.Run("entries are persisted as JSON array", func(t *testing.T) {
		kv := store.NewMemory()
		list := New(kv)
		_, _ = list.Add("Visakhapatnam, India")
		raw, ok := kv.Get(StoreKey)
		if !ok || raw != `["Visakhapatnam, India"]` {
			t.Errorf("unexpected stored value: %q (found: %t)", raw, ok)
		}
	})
	t.Run("store failures are reported", func(t *testing.T) {
		list := New(failingKV{})
		if _, err := list.Add("Paris, France"); err == nil {
			t.Error("expected add to fail")
		}
	})
	t.Run("items returns a copy", func(t *testing.T) {
		list := New(store.NewMemory())
		_, _ = list.Add("Paris, France")
		items := list.Items()
		items[0] = "changed"
		if list.Items()[0] != "Paris, France" {
			t.Error("expected list to be unchanged")
		}
	})
}

func TestList_Remove(t *testing.T) {
	t.Run("removing is case-insensitive and persisted", func(t *testing.T) {
		kv := store.NewMemory()
		list := New(kv)
		_, _ = list.Add("Paris, France")
		_, _ = list.Add("Rome, Italy")
		removed, err := list.Remove("paris, france")
		if err != nil {
			t.Fatalf("failed to remove entry: %s", err)
		}
		if !removed {
			t.Error("expected entry to be removed")
		}
		if got := list.Items(); !reflect.DeepEqual(got, []string{"Rome, Italy"}) {
			t.Errorf("expected only Rome to remain, got %v", got)
		}
		if raw, _ := kv.Get(StoreKey); raw != `["Rome, Italy"]` {
			t.Errorf("unexpected stored value: %q", raw)
		}
	})
	t.Run("removing an unknown label changes nothing", func(t *testing.T) {
		list := New(store.NewMemory())
		_, _ = list.Add("Paris, France")
		if removed, err := list.Remove("Atlantis"); removed || err != nil {
			t.Errorf("expected no change, got removed=%t err=%v", removed, err)
		}
	})
}

func TestList_Load(t *testing.T) {
	t.Run("loading stored entries succeeds", func(t *testing.T) {
		kv := store.NewMemory()
		_ = kv.Set(StoreKey, `["Hyderabad, India","hyderabad, india"," ","Mumbai, India"]`)
		list := New(kv)
		if err := list.Load(); err != nil {
			t.Fatalf("failed to load: %s", err)
		}
		want := []string{"Hyderabad, India", "Mumbai, India"}
		if got := list.Items(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
	t.Run("missing key yields empty list", func(t *testing.T) {
		list := New(store.NewMemory())
		if err := list.Load(); err != nil {
			t.Fatalf("failed to load: %s", err)
		}
		if len(list.Items()) != 0 {
			t.Errorf("expected empty list, got %v", list.Items())
		}
	})
	t.Run("malformed data yields empty list and an error", func(t *testing.T) {
		kv := store.NewMemory()
		_ = kv.Set(StoreKey, `"Paris"`)
		list := New(kv)
		if err := list.Load(); err == nil {
			t.Error("expected load to fail")
		}
		if len(list.Items()) != 0 {
			t.Errorf("expected empty list, got %v", list.Items())
		}
	})
}

type failingKV struct{}

func (failingKV) Get(string) (string, bool) { return "", false }
func (failingKV) Set(string, string) error  { return errors.New("intentionally failing") }
