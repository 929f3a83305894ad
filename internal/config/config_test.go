package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Quality != 1 {
		t.Errorf("Expected quality 1, got %d", cfg.Quality)
	}
	if !cfg.FullFramerate {
		t.Error("Full framerate should be on by default")
	}
	if cfg.SettleDelay != 20*time.Millisecond {
		t.Errorf("Expected settle delay 20ms, got %v", cfg.SettleDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lottie2gif.yaml")
	data := []byte(`
quality: 3
full_framerate: false
formats: [gif]
settle_delay: 50ms
frame_timeout: 2s
scale: 0.5
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Quality != 3 || cfg.FullFramerate {
		t.Errorf("Unexpected sampling config: quality=%d full=%v", cfg.Quality, cfg.FullFramerate)
	}
	if len(cfg.Formats) != 1 || cfg.Formats[0] != "gif" {
		t.Errorf("Unexpected formats: %v", cfg.Formats)
	}
	if cfg.SettleDelay != 50*time.Millisecond {
		t.Errorf("Expected settle delay 50ms, got %v", cfg.SettleDelay)
	}
	if cfg.FrameTimeout != 2*time.Second {
		t.Errorf("Expected frame timeout 2s, got %v", cfg.FrameTimeout)
	}
	// Not in the file: must keep the default.
	if cfg.ReadyTimeout != 30*time.Second {
		t.Errorf("Expected default ready timeout, got %v", cfg.ReadyTimeout)
	}
	if cfg.PlayerMode != "svg" {
		t.Errorf("Expected default player mode svg, got %s", cfg.PlayerMode)
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Workers = 4
	cfg.Formats = []string{"apng"}

	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Workers != 4 || got.Formats[0] != "apng" {
		t.Errorf("Round trip mismatch: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"negative workers clamped", func(c *Config) { c.Workers = -3 }, false},
		{"zero scale clamped", func(c *Config) { c.Scale = 0 }, false},
		{"canvas mode", func(c *Config) { c.PlayerMode = "canvas" }, false},
		{"unknown mode", func(c *Config) { c.PlayerMode = "html" }, true},
		{"webp quality too high", func(c *Config) { c.WebPQuality = 101 }, true},
		{"no formats", func(c *Config) { c.Formats = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if cfg.Workers < 0 || cfg.Scale <= 0 {
				t.Errorf("Values not clamped: workers=%d scale=%f", cfg.Workers, cfg.Scale)
			}
		})
	}
}
