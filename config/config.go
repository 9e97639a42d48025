// Package config loads idpackd settings from a JSON file. Comments and
// trailing commas are allowed.
//
// Example:
//
//	{
//	  // gRPC listen address
//	  "listen": "127.0.0.1:7788",
//	  "profile": "indexed-v2",
//	  "registry": {"backend": "localfs", "dir": "/var/lib/idpack", "mirrors": ["/mnt/backup/idpack"]},
//	  "chain": {"rpc_url": "https://rpc.example.org"},
//	  "log": {"level": "info"},
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tidwall/jsonc"

	"xdao.co/idpack/ident"
	"xdao.co/idpack/registry"
)

type Config struct {
	Listen   string         `json:"listen"`
	Profile  string         `json:"profile,omitempty"`
	Registry RegistryConfig `json:"registry"`
	Chain    ChainConfig    `json:"chain,omitempty"`
	Log      LogConfig      `json:"log,omitempty"`
}

type RegistryConfig struct {
	// Backend is "memory" (default) or "localfs".
	Backend string `json:"backend,omitempty"`
	// Dir is required for the localfs backend.
	Dir string `json:"dir,omitempty"`
	// Mirrors are extra localfs directories every entry is replicated to.
	// Reads fall back to them in order.
	Mirrors []string `json:"mirrors,omitempty"`
}

type ChainConfig struct {
	RPCURL string `json:"rpc_url,omitempty"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:   "127.0.0.1:7788",
		Profile:  ident.ProfileIndexed.Name,
		Registry: RegistryConfig{Backend: "memory"},
		Log:      LogConfig{Level: "info"},
	}
}

// LoadFile reads path over Default and validates the result.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(b)
}

// Parse decodes JSON-with-comments over Default and validates the result.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(jsonc.ToJSON(b), &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if _, err := ident.ProfileByName(c.Profile); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Registry.Backend {
	case "", "memory":
	case "localfs":
		if c.Registry.Dir == "" {
			return errors.New("config: registry.dir is required for the localfs backend")
		}
	default:
		return fmt.Errorf("config: invalid registry.backend %q", c.Registry.Backend)
	}
	for i, m := range c.Registry.Mirrors {
		if m == "" {
			return fmt.Errorf("config: registry.mirrors[%d] is empty", i)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// OpenRegistry opens the configured registry backend, wrapped in a
// registry.Replicating when mirrors are configured.
func (c Config) OpenRegistry() (registry.Store, error) {
	var primary registry.Store
	switch c.Registry.Backend {
	case "", "memory":
		primary = registry.NewMemory()
	case "localfs":
		s, err := registry.NewLocalFS(c.Registry.Dir)
		if err != nil {
			return nil, err
		}
		primary = s
	default:
		return nil, fmt.Errorf("config: invalid registry.backend %q", c.Registry.Backend)
	}
	if len(c.Registry.Mirrors) == 0 {
		return primary, nil
	}

	name := c.Registry.Backend
	if name == "" {
		name = "memory"
	}
	r := registry.Replicating{Backends: []registry.Named{{Name: name, Store: primary}}}
	for _, dir := range c.Registry.Mirrors {
		s, err := registry.NewLocalFS(dir)
		if err != nil {
			return nil, fmt.Errorf("config: mirror %s: %w", dir, err)
		}
		r.Backends = append(r.Backends, registry.Named{Name: "localfs:" + dir, Store: s})
	}
	return r, nil
}

// SlogLevel maps Level to a slog level; empty means info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("config: invalid log.level %q", l.Level)
	}
	return lvl, nil
}
