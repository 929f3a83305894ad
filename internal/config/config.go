package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a conversion batch. Zero values are replaced
// by Default() when loaded from a file.
type Config struct {
	Quality       int      `yaml:"quality"`
	FullFramerate bool     `yaml:"full_framerate"`
	Formats       []string `yaml:"formats"`

	Workers      int           `yaml:"workers"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
	FrameTimeout time.Duration `yaml:"frame_timeout"`

	ChromePath   string `yaml:"chrome_path"`
	PlayerScript string `yaml:"player_script"`
	PlayerMode   string `yaml:"player_mode"`
	Headless     bool   `yaml:"headless"`

	TempDir   string `yaml:"temp_dir"`
	OutputDir string `yaml:"output_dir"`

	Scale        float64 `yaml:"scale"`
	Dither       bool    `yaml:"dither"`
	WebPLossless bool    `yaml:"webp_lossless"`
	WebPQuality  int     `yaml:"webp_quality"`
	FFmpegPath   string  `yaml:"ffmpeg_path"`

	Inspect      bool     `yaml:"inspect"`
	Checks       []string `yaml:"checks"`
	Progress     bool     `yaml:"progress"`
	ShowStats    bool     `yaml:"show_stats"`
	Debug        bool     `yaml:"debug"`
	BuildVersion string   `yaml:"-"`
}

// DefaultPlayerScript is the lottie-web build injected into the page when no
// local script is configured.
const DefaultPlayerScript = "https://cdnjs.cloudflare.com/ajax/libs/lottie-web/5.12.2/lottie.min.js"

func Default() *Config {
	return &Config{
		Quality:       1,
		FullFramerate: true,
		Formats:       []string{"gif", "webp"},
		Workers:       1,
		SettleDelay:   20 * time.Millisecond,
		ReadyTimeout:  30 * time.Second,
		FrameTimeout:  10 * time.Second,
		PlayerScript:  DefaultPlayerScript,
		PlayerMode:    "svg",
		Headless:      true,
		OutputDir:     "output",
		Scale:         1.0,
		Dither:        true,
		WebPLossless:  true,
		WebPQuality:   75,
		FFmpegPath:    "ffmpeg",
		Inspect:       true,
	}
}

// Load reads a YAML config file on top of Default(). Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Write saves the config as YAML, mostly for `--dump-config`.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate clamps values that would stall or break a batch and rejects
// settings that cannot work at all.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		c.Workers = 1
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 30 * time.Second
	}
	if c.FrameTimeout <= 0 {
		c.FrameTimeout = 10 * time.Second
	}
	if c.Scale <= 0 {
		c.Scale = 1.0
	}
	if c.WebPQuality < 0 || c.WebPQuality > 100 {
		return fmt.Errorf("webp_quality %d вне диапазона 0-100", c.WebPQuality)
	}
	switch strings.ToLower(c.PlayerMode) {
	case "", "svg":
		c.PlayerMode = "svg"
	case "canvas":
		c.PlayerMode = "canvas"
	default:
		return fmt.Errorf("неизвестный player_mode: %s", c.PlayerMode)
	}
	if c.PlayerScript == "" {
		c.PlayerScript = DefaultPlayerScript
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("не задан ни один выходной формат")
	}
	return nil
}
