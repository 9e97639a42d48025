package registry

import (
	"errors"
	"fmt"
)

// Named associates a Store with a stable backend name.
type Named struct {
	Name  string
	Store Store
}

// Replicating writes every entry to all backends in order.
//
// Reads fall back in backend order. A write stops at the first backend that
// fails, for example with ErrImmutable when it already holds a different
// value for the key. Backends before it keep what they accepted and backends
// after it are not written.
type Replicating struct {
	Backends []Named
}

var _ Store = Replicating{}

// PutAll writes to each backend in order and reports the per-backend result.
// It returns at the first failure; the map holds that backend's error and
// no entry for the backends after it.
func (r Replicating) PutAll(key, value [32]byte) (map[string]error, error) {
	if len(r.Backends) == 0 {
		return nil, errors.New("registry: Replicating has no backends")
	}
	out := make(map[string]error, len(r.Backends))
	for _, b := range r.Backends {
		if b.Store == nil {
			return out, fmt.Errorf("registry: nil store for backend %q", b.Name)
		}
		err := b.Store.Put(key, value)
		out[b.Name] = err
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (r Replicating) Put(key, value [32]byte) error {
	_, err := r.PutAll(key, value)
	return err
}

func (r Replicating) Get(key [32]byte) ([32]byte, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		v, err := b.Store.Get(key)
		if err == nil {
			return v, nil
		}
		if IsNotFound(err) {
			continue
		}
		return v, err
	}
	return [32]byte{}, ErrNotFound
}

func (r Replicating) Has(key [32]byte) bool {
	for _, b := range r.Backends {
		if b.Store != nil && b.Store.Has(key) {
			return true
		}
	}
	return false
}
