package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Renderer.FrameIntervalMS != 16 {
		t.Errorf("frame interval = %d, want 16", cfg.Renderer.FrameIntervalMS)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.FrameInterval() != 16*time.Millisecond {
		t.Errorf("FrameInterval = %v", cfg.FrameInterval())
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prism.toml")
	content := `
[renderer]
frame_interval_ms = 33

[log]
level = "debug"
file = "/tmp/prism.log"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Renderer.FrameIntervalMS != 33 {
		t.Errorf("frame interval = %d, want 33", cfg.Renderer.FrameIntervalMS)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/prism.log" {
		t.Errorf("log config = %+v", cfg.Log)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("renderer = {"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvFrameInterval, "50")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level = %q, want error", cfg.Log.Level)
	}
	if cfg.Renderer.FrameIntervalMS != 50 {
		t.Errorf("frame interval = %d, want 50", cfg.Renderer.FrameIntervalMS)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Renderer.FrameIntervalMS = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("zero interval: err = %v, want ErrInvalidValue", err)
	}

	cfg = Default()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("bad level: err = %v, want ErrInvalidValue", err)
	}
}
