package registry

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
)

// LocalFS is a filesystem-backed Store.
//
// Each entry is one read-only 32-byte file named by the hex key and sharded
// by the key's first byte. It never uses the network or wall-clock time.
type LocalFS struct {
	root string
}

// NewLocalFS constructs a store rooted at root, creating it if needed.
func NewLocalFS(root string) (*LocalFS, error) {
	if root == "" {
		return nil, errors.New("registry: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalFS{root: root}, nil
}

func (l *LocalFS) Put(key, value [32]byte) error {
	path := l.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := l.Get(key)
			if rerr != nil {
				// An unreadable or truncated file counts as a conflicting value.
				return ErrImmutable
			}
			if existing != value {
				return ErrImmutable
			}
			return nil
		}
		return err
	}
	defer f.Close()

	if _, err := f.Write(value[:]); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (l *LocalFS) Get(key [32]byte) ([32]byte, error) {
	var v [32]byte
	b, err := os.ReadFile(l.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return v, ErrNotFound
		}
		return v, err
	}
	if len(b) != len(v) {
		return v, ErrCorrupt
	}
	copy(v[:], b)
	return v, nil
}

func (l *LocalFS) Has(key [32]byte) bool {
	_, err := os.Stat(l.pathFor(key))
	return err == nil
}

func (l *LocalFS) pathFor(key [32]byte) string {
	s := hex.EncodeToString(key[:])
	return filepath.Join(l.root, s[:2], s)
}
