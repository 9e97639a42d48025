package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"xdao.co/idpack/registry"
	"xdao.co/idpack/registry/registrytest"
	"xdao.co/idpack/rolehash"
)

func TestMemory_Conformance(t *testing.T) {
	registrytest.RunStoreConformance(t, func(t *testing.T) registry.Store {
		return registry.NewMemory()
	})
}

func TestLocalFS_Conformance(t *testing.T) {
	registrytest.RunStoreConformance(t, func(t *testing.T) registry.Store {
		t.Helper()
		s, err := registry.NewLocalFS(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalFS failed: %v", err)
		}
		return s
	})
}

func TestLocalFS_DetectsTruncatedEntry(t *testing.T) {
	dir := t.TempDir()
	s, err := registry.NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS failed: %v", err)
	}
	key, err := registry.Register(s, "vault", "Bob", 3, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Corrupt the stored entry out-of-band.
	var path string
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			path = p
		}
		return nil
	})
	if path == "" {
		t.Fatalf("entry file not found")
	}
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("short"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := s.Get(key); err != registry.ErrCorrupt {
		t.Fatalf("Get corrupt: got %v want ErrCorrupt", err)
	}
	v, err := rolehash.ToBytes32Value("Bob", 3, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	if err != nil {
		t.Fatalf("ToBytes32Value failed: %v", err)
	}
	// Put must not repair the corrupted entry.
	if err := s.Put(key, v); err != registry.ErrImmutable {
		t.Fatalf("Put after corruption: got %v want ErrImmutable", err)
	}
}

func TestNewLocalFS_RequiresRoot(t *testing.T) {
	if _, err := registry.NewLocalFS(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestReplicating_Conformance(t *testing.T) {
	registrytest.RunStoreConformance(t, func(t *testing.T) registry.Store {
		t.Helper()
		disk, err := registry.NewLocalFS(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocalFS failed: %v", err)
		}
		return registry.Replicating{Backends: []registry.Named{
			{Name: "memory", Store: registry.NewMemory()},
			{Name: "localfs", Store: disk},
		}}
	})
}

func TestReplicating_WritesAllAndFallsBackOnRead(t *testing.T) {
	primary, mirror := registry.NewMemory(), registry.NewMemory()
	r := registry.Replicating{Backends: []registry.Named{{Name: "primary", Store: primary}, {Name: "mirror", Store: mirror}}}

	key, _ := rolehash.ToBytes32Key("vault")
	v, err := rolehash.ToBytes32Value("Bob", 3, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	if err != nil {
		t.Fatalf("ToBytes32Value failed: %v", err)
	}
	results, err := r.PutAll(key, v)
	if err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}
	if len(results) != 2 || results["primary"] != nil || results["mirror"] != nil {
		t.Fatalf("PutAll results = %v", results)
	}
	if !primary.Has(key) || !mirror.Has(key) {
		t.Fatalf("entry not replicated")
	}

	// An entry only the mirror holds is still readable.
	other, _ := rolehash.ToBytes32Key("other")
	if err := mirror.Put(other, v); err != nil {
		t.Fatalf("mirror Put failed: %v", err)
	}
	if got, err := r.Get(other); err != nil || got != v {
		t.Fatalf("Get fallback = %x, %v", got, err)
	}
}

func TestReplicating_DivergentMirrorIsImmutable(t *testing.T) {
	primary, mirror := registry.NewMemory(), registry.NewMemory()
	r := registry.Replicating{Backends: []registry.Named{{Name: "primary", Store: primary}, {Name: "mirror", Store: mirror}}}

	key, _ := rolehash.ToBytes32Key("vault")
	a, _ := rolehash.ToBytes32Value("Alice", 1, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	b, _ := rolehash.ToBytes32Value("Bob", 1, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	if err := mirror.Put(key, b); err != nil {
		t.Fatalf("mirror Put failed: %v", err)
	}
	results, err := r.PutAll(key, a)
	if err != registry.ErrImmutable {
		t.Fatalf("PutAll: got %v want ErrImmutable", err)
	}
	if results["primary"] != nil || results["mirror"] != registry.ErrImmutable {
		t.Fatalf("PutAll results = %v", results)
	}
}

func TestReplicating_StopsAtFirstFailure(t *testing.T) {
	primary, middle, last := registry.NewMemory(), registry.NewMemory(), registry.NewMemory()
	r := registry.Replicating{Backends: []registry.Named{
		{Name: "primary", Store: primary},
		{Name: "middle", Store: middle},
		{Name: "last", Store: last},
	}}

	key, _ := rolehash.ToBytes32Key("vault")
	a, _ := rolehash.ToBytes32Value("Alice", 1, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	b, _ := rolehash.ToBytes32Value("Bob", 1, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	if err := middle.Put(key, b); err != nil {
		t.Fatalf("middle Put failed: %v", err)
	}
	results, err := r.PutAll(key, a)
	if err != registry.ErrImmutable {
		t.Fatalf("PutAll: got %v want ErrImmutable", err)
	}
	if _, ok := results["last"]; ok || results["primary"] != nil || results["middle"] != registry.ErrImmutable {
		t.Fatalf("PutAll results = %v", results)
	}
	if !primary.Has(key) {
		t.Fatalf("primary should keep the accepted entry")
	}
	if last.Has(key) {
		t.Fatalf("backend after the failure was written")
	}
}

func TestReplicating_NoBackends(t *testing.T) {
	var r registry.Replicating
	if err := r.Put([32]byte{1}, [32]byte{2}); err == nil {
		t.Fatalf("expected error with no backends")
	}
	if _, err := r.Get([32]byte{1}); !registry.IsNotFound(err) {
		t.Fatalf("Get: got %v want ErrNotFound", err)
	}
}
