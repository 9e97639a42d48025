// Package registry mirrors the on-chain name-indexed registry: a map from
// bytes32 keys to bytes32 values built by package rolehash.
package registry

import (
	"errors"

	"xdao.co/idpack/rolehash"
)

var (
	ErrNotFound  = errors.New("registry: not found")
	ErrImmutable = errors.New("registry: entry already set to a different value")
	ErrCorrupt   = errors.New("registry: stored entry is corrupt")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Store is a write-once word-to-word map.
//
// Contract:
// - Put MUST be idempotent for an identical value.
// - Put MUST return ErrImmutable when the key holds a different value.
// - Get MUST return ErrNotFound when the key is absent.
type Store interface {
	Put(key, value [32]byte) error
	Get(key [32]byte) ([32]byte, error)
	Has(key [32]byte) bool
}

// Register encodes key, name, index and address and stores the entry.
// It returns the encoded key.
func Register(s Store, key, name string, index int, address string) ([32]byte, error) {
	k, err := rolehash.ToBytes32Key(key)
	if err != nil {
		return k, err
	}
	v, err := rolehash.ToBytes32Value(name, index, address)
	if err != nil {
		return k, err
	}
	return k, s.Put(k, v)
}

// Lookup fetches and decodes the entry stored under key.
func Lookup(s Store, key string) (rolehash.Entry, error) {
	k, err := rolehash.ToBytes32Key(key)
	if err != nil {
		return rolehash.Entry{}, err
	}
	v, err := s.Get(k)
	if err != nil {
		return rolehash.Entry{}, err
	}
	return rolehash.RecoverOriginalValues(v), nil
}
