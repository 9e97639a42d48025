package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xdao.co/idpack/ident"
	"xdao.co/idpack/rpc"
)

func TestRun_ListProfiles(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(context.Background(), []string{"--list-profiles"}, &out, &errOut); code != 0 {
		t.Fatalf("code=%d err=%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "indexed-hashed-v3") {
		t.Fatalf("profiles = %q", out.String())
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"profile": "v9"}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cases := [][]string{
		{"--config", filepath.Join(dir, "missing.json")},
		{"--config", bad},
		{"--no-such-flag"},
	}
	for _, args := range cases {
		var out, errOut bytes.Buffer
		if code := run(context.Background(), args, &out, &errOut); code != 2 {
			t.Fatalf("run(%v) code=%d, want 2", args, code)
		}
	}
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "idpackd.json")
	cfg := `{
	  // pick a free port
	  "listen": "127.0.0.1:0",
	  "registry": {"backend": "localfs", "dir": "` + filepath.ToSlash(filepath.Join(dir, "reg")) + `"},
	  "log": {"level": "debug"},
	}`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	logs := &syncBuffer{}
	done := make(chan int, 1)
	go func() { done <- run(ctx, []string{"--config", cfgPath}, &out, logs) }()

	addr := waitForAddr(t, logs)
	c, err := rpc.Dial(addr, rpc.DialOptions{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	c.Timeout = 2 * time.Second

	id, err := c.GetID("", ident.Fields{Name: "JohnDoe", Index: 42,
		Token: "0xabcdef0123456789abcdef0123456789abcdef01", Product: "0x0123456789abcdef0123456789abcdef01234567"})
	if err != nil {
		t.Fatalf("GetID: %v", err)
	}
	if id.Hex() != "0x4a6f686e446f65000000002aabcdef0123456789abcd0123456789abcdef0123" {
		t.Fatalf("GetID = %s", id.Hex())
	}
	if _, err := c.PutEntry("treasury", "Vault", 1, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}

	_ = c.Close()
	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("run exited %d: %s", code, logs.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func waitForAddr(t *testing.T, logs *syncBuffer) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, line := range strings.Split(logs.String(), "\n") {
			if !strings.Contains(line, "idpackd listening") {
				continue
			}
			for _, field := range strings.Fields(line) {
				if addr, ok := strings.CutPrefix(field, "addr="); ok {
					return addr
				}
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server never reported its address: %s", logs.String())
	return ""
}
