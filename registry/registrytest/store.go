// Package registrytest holds the conformance suite every registry.Store
// backend must pass.
package registrytest

import (
	"testing"

	"xdao.co/idpack/registry"
	"xdao.co/idpack/rolehash"
)

// NewStore constructs a fresh, empty Store for a test.
// The returned Store MUST be isolated from other tests.
type NewStore func(t *testing.T) registry.Store

const testAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		key, err := registry.Register(s, "treasury", "JohnDoe", 42, testAddress)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		want, err := rolehash.ToBytes32Key("treasury")
		if err != nil {
			t.Fatalf("ToBytes32Key failed: %v", err)
		}
		if key != want {
			t.Fatalf("Register key mismatch: got %x want %x", key, want)
		}
		e, err := registry.Lookup(s, "treasury")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if e.Name != "JohnDoe" || e.Index != 42 || e.Address != testAddress {
			t.Fatalf("Lookup = %+v", e)
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		s := newStore(t)
		if _, err := registry.Register(s, "k", "a", 1, testAddress); err != nil {
			t.Fatalf("Register(1) failed: %v", err)
		}
		if _, err := registry.Register(s, "k", "a", 1, testAddress); err != nil {
			t.Fatalf("Register(2) failed: %v", err)
		}
	})

	t.Run("RejectOverwrite", func(t *testing.T) {
		s := newStore(t)
		if _, err := registry.Register(s, "k", "a", 1, testAddress); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := registry.Register(s, "k", "a", 2, testAddress); err != registry.ErrImmutable {
			t.Fatalf("Register conflicting: got %v want ErrImmutable", err)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		s := newStore(t)
		key, err := rolehash.ToBytes32Key("missing")
		if err != nil {
			t.Fatalf("ToBytes32Key failed: %v", err)
		}
		if s.Has(key) {
			t.Fatalf("Has returned true for missing key")
		}
		if _, err := s.Get(key); !registry.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}
		if _, err := registry.Lookup(s, "missing"); !registry.IsNotFound(err) {
			t.Fatalf("Lookup missing: got err=%v want ErrNotFound", err)
		}
		if _, err := registry.Register(s, "missing", "x", 0, testAddress); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if !s.Has(key) {
			t.Fatalf("Has returned false after Put")
		}
	})
}
