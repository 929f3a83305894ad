// Package lottie2gif converts Lottie animations (.json, Telegram .tgs) into
// animated GIF, WebP and APNG by playing them in headless Chrome and
// capturing the frames.
//
// Every call is synchronous and owns its own temporary workspace, which is
// removed before the call returns.
package lottie2gif

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/ivlev/lottie2gif/internal/anim"
	"github.com/ivlev/lottie2gif/internal/config"
	"github.com/ivlev/lottie2gif/internal/engine"
	"github.com/ivlev/lottie2gif/internal/render"
	"github.com/ivlev/lottie2gif/internal/render/chrome"
)

// Options tunes a conversion. Use DefaultOptions and change what you need;
// a nil *Options means defaults.
type Options struct {
	// Quality 0..3 picks the sampling density when FullFramerate is off.
	// Anything else uses a fixed step of 2.
	Quality       int
	FullFramerate bool

	Workers      int // parallel Chrome tabs; 0 sizes from the host
	SettleDelay  time.Duration
	FrameTimeout time.Duration
	ReadyTimeout time.Duration

	ChromePath   string
	PlayerScript string // URL or local path of lottie-web
	FFmpegPath   string
	TempDir      string

	Scale        float64
	Dither       bool
	WebPLossless bool
	WebPQuality  int
}

func DefaultOptions() *Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig copies the conversion settings of a loaded config.
func OptionsFromConfig(cfg *config.Config) *Options {
	return &Options{
		Quality:       cfg.Quality,
		FullFramerate: cfg.FullFramerate,
		Workers:       cfg.Workers,
		SettleDelay:   cfg.SettleDelay,
		FrameTimeout:  cfg.FrameTimeout,
		ReadyTimeout:  cfg.ReadyTimeout,
		ChromePath:    cfg.ChromePath,
		PlayerScript:  cfg.PlayerScript,
		FFmpegPath:    cfg.FFmpegPath,
		TempDir:       cfg.TempDir,
		Scale:         cfg.Scale,
		Dither:        cfg.Dither,
		WebPLossless:  cfg.WebPLossless,
		WebPQuality:   cfg.WebPQuality,
	}
}

func (o *Options) config() (*config.Config, error) {
	cfg := config.Default()
	if o == nil {
		return cfg, nil
	}
	cfg.Quality = o.Quality
	cfg.FullFramerate = o.FullFramerate
	cfg.Workers = o.Workers
	cfg.SettleDelay = o.SettleDelay
	cfg.FrameTimeout = o.FrameTimeout
	cfg.ReadyTimeout = o.ReadyTimeout
	cfg.ChromePath = o.ChromePath
	cfg.PlayerScript = o.PlayerScript
	cfg.FFmpegPath = o.FFmpegPath
	cfg.TempDir = o.TempDir
	cfg.Scale = o.Scale
	cfg.Dither = o.Dither
	cfg.WebPLossless = o.WebPLossless
	cfg.WebPQuality = o.WebPQuality
	cfg.Inspect = false
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEngine is the render engine used by every call.
var newEngine engine.EngineFactory = func(cfg *config.Config, workDir string) render.Engine {
	return chrome.New(cfg, workDir)
}

// ConvertAll writes output.gif and output.webp.
func ConvertAll(ctx context.Context, input, output string, opts *Options) error {
	return convert(ctx, []string{input}, []string{output}, []anim.Format{anim.GIF, anim.WebP}, opts)
}

// ConvertGIF writes a GIF to output, used as the file name verbatim.
func ConvertGIF(ctx context.Context, input, output string, opts *Options) error {
	return convert(ctx, []string{input}, []string{output}, []anim.Format{anim.GIF}, opts)
}

// ConvertWebP writes an animated WebP to output. Requires ffmpeg with libwebp_anim.
func ConvertWebP(ctx context.Context, input, output string, opts *Options) error {
	return convert(ctx, []string{input}, []string{output}, []anim.Format{anim.WebP}, opts)
}

// ConvertAPNG writes an animated PNG to output.
func ConvertAPNG(ctx context.Context, input, output string, opts *Options) error {
	return convert(ctx, []string{input}, []string{output}, []anim.Format{anim.APNG}, opts)
}

// ConvertBatchAll converts inputs[i] to outputs[i].gif and outputs[i].webp
// with one Chrome instance for the whole batch.
func ConvertBatchAll(ctx context.Context, inputs, outputs []string, opts *Options) error {
	return convert(ctx, inputs, outputs, []anim.Format{anim.GIF, anim.WebP}, opts)
}

func ConvertBatchGIF(ctx context.Context, inputs, outputs []string, opts *Options) error {
	return convert(ctx, inputs, outputs, []anim.Format{anim.GIF}, opts)
}

func ConvertBatchWebP(ctx context.Context, inputs, outputs []string, opts *Options) error {
	return convert(ctx, inputs, outputs, []anim.Format{anim.WebP}, opts)
}

// Frames are the decoded captures of one document.
type Frames struct {
	Input    string
	Images   []image.Image
	Duration float64 // seconds
}

// RenderFrames captures the sampled frames of every input without encoding
// them. Corrupt inputs are left out of the result.
func RenderFrames(ctx context.Context, inputs []string, opts *Options) ([]Frames, error) {
	jobs := make([]engine.Job, len(inputs))
	for i, in := range inputs {
		jobs[i] = engine.Job{Input: in}
	}
	results, err := run(ctx, jobs, opts, true)
	if err != nil {
		return nil, err
	}

	var frames []Frames
	var errs []error
	for _, r := range results {
		switch {
		case r.Skipped:
			continue
		case r.Err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", r.Job.Input, r.Err))
		default:
			frames = append(frames, Frames{Input: r.Job.Input, Images: r.Frames, Duration: r.Samples.Duration})
		}
	}
	return frames, errors.Join(errs...)
}

func convert(ctx context.Context, inputs, outputs []string, formats []anim.Format, opts *Options) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("входов %d, а выходов %d", len(inputs), len(outputs))
	}
	jobs := make([]engine.Job, len(inputs))
	for i := range inputs {
		jobs[i] = engine.Job{Input: inputs[i], Output: outputs[i], Formats: formats}
	}
	results, err := run(ctx, jobs, opts, false)
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range results {
		if r.Err != nil && !r.Skipped {
			errs = append(errs, fmt.Errorf("%s: %w", r.Job.Input, r.Err))
		}
	}
	return errors.Join(errs...)
}

func run(ctx context.Context, jobs []engine.Job, opts *Options, keepFrames bool) ([]engine.Result, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	c := engine.NewConverter(cfg, newEngine)
	c.KeepFrames = keepFrames
	results, err := c.Run(ctx, jobs)
	if err != nil {
		log.Printf("[!] Пакет прерван: %v", err)
		return nil, err
	}
	return results, nil
}
