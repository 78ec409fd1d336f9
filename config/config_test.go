package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.HTTP.Address != ":8080" {
		t.Errorf("http address %q", c.HTTP.Address)
	}
	if c.AllowlistDuration() != time.Minute {
		t.Errorf("allowlist %s", c.AllowlistDuration())
	}
	if c.Delivery.BusCapacity != 128 {
		t.Errorf("bus capacity %d", c.Delivery.BusCapacity)
	}
	if c.Manager.URL != "" || c.ManagerTimeout() != 0 {
		t.Errorf("manager %q %s", c.Manager.URL, c.ManagerTimeout())
	}
}

func TestLoadFromFile(t *testing.T) {
	p := writeConfig(t, `{
		"log": {"level": "info"},
		"decoder": {"fallback_header_index": 2},
		"http": {"address": "127.0.0.1"},
		"block_list": {"dir": "/var/lib/wappush/block"},
		"manager": {"url": "http://127.0.0.1:9000/process"},
		"consumers": {
			"fallback": "messaging",
			"by_mime_type": {"application/vnd.wap.sic": "browser"}
		},
		"delivery": {"allowlist_duration_ms": 10000}
	}`)

	var c Config
	if err := c.LoadFromFile(p); err != nil {
		t.Fatal(err)
	}

	if c.HTTP.Address != "127.0.0.1:8080" {
		t.Errorf("http address %q", c.HTTP.Address)
	}
	if c.Decoder.FallbackHeaderIndex != 2 {
		t.Errorf("fallback index %d", c.Decoder.FallbackHeaderIndex)
	}
	if c.ManagerTimeout() != 5*time.Second {
		t.Errorf("manager timeout %s", c.ManagerTimeout())
	}
	if c.AllowlistDuration() != 10*time.Second {
		t.Errorf("allowlist %s", c.AllowlistDuration())
	}
	if c.Consumers.ByMimeType["application/vnd.wap.sic"] != "browser" {
		t.Errorf("consumers %v", c.Consumers.ByMimeType)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	tests := map[string]string{
		"bad json":        `{"log":`,
		"bad log level":   `{"log": {"level": "trace"}}`,
		"negative index":  `{"decoder": {"fallback_header_index": -1}}`,
		"bad manager url": `{"manager": {"url": "tcp://x"}}`,
		"empty consumer":  `{"consumers": {"by_mime_type": {"text/plain": ""}}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			var c Config
			if err := c.LoadFromFile(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	var c Config
	if err := c.LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
