package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geomserver.yaml")
	content := "bind: 127.0.0.1:9000\nprint_addr: true\nwrite_addr: /tmp/addr\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bind != "127.0.0.1:9000" {
		t.Fatalf("got bind %q", cfg.Bind)
	}
	if !cfg.PrintAddr {
		t.Fatalf("expected print_addr true")
	}
	if cfg.WriteAddr != "/tmp/addr" {
		t.Fatalf("got write_addr %q", cfg.WriteAddr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
