package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launchpad.yaml")
	raw := `
listen_addr: ":9090"
curve:
  base_price: 0.02
  slope: 0.0002
  max_steps: 100
funding:
  default_goal: 50000
  founder_allocation: 250
events:
  buffer_size: 32
rate_limit:
  rps: 10
  burst: 20
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("unexpected listen_addr: %s", cfg.ListenAddr)
	}
	if cfg.Curve.BasePrice != 0.02 || cfg.Curve.Slope != 0.0002 || cfg.Curve.MaxSteps != 100 {
		t.Fatalf("unexpected curve config: %+v", cfg.Curve)
	}
	if cfg.Funding.DefaultGoal != 50000 || cfg.Funding.FounderAllocation != 250 {
		t.Fatalf("unexpected funding config: %+v", cfg.Funding)
	}
	if cfg.Events.BufferSize != 32 {
		t.Fatalf("unexpected events config: %+v", cfg.Events)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launchpad.yaml")
	if err := os.WriteFile(path, []byte(`listen_addr: ":7000"`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Curve.BasePrice != 0.01 {
		t.Fatalf("missing fields should keep defaults, got %+v", cfg.Curve)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launchpad.yaml")
	raw := `
curve:
  base_price: -1
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("negative base price must be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
