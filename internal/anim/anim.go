// Package anim assembles captured frames into animated containers.
//
// Every frame of an animation gets the same delay: duration / frameCount.
package anim

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/ivlev/lottie2gif/internal/collector"
)

// ErrNoFrames is returned by encoders given an empty sequence.
var ErrNoFrames = errors.New("no frames")

type Format string

const (
	GIF  Format = "gif"
	WebP Format = "webp"
	APNG Format = "apng"
)

// Ext is the file extension used when several formats share one base name.
func (f Format) Ext() string {
	if f == APNG {
		return "png"
	}
	return string(f)
}

// ParseFormats accepts names like "gif", "WebP", "apng" and "all" (gif+webp).
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	add := func(f Format) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "gif":
			add(GIF)
		case "webp":
			add(WebP)
		case "apng", "png":
			add(APNG)
		case "all":
			add(GIF)
			add(WebP)
		default:
			return nil, fmt.Errorf("неизвестный формат: %s", n)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("не задан ни один формат")
	}
	return out, nil
}

// OutputPaths maps a destination name to one path per format. A single
// format uses the name verbatim; several formats append their extension.
func OutputPaths(name string, formats []Format) []string {
	if len(formats) == 1 {
		return []string{name}
	}
	paths := make([]string, len(formats))
	for i, f := range formats {
		paths[i] = name + "." + f.Ext()
	}
	return paths
}

// FrameDelayMs is the uniform per-frame delay in (fractional) milliseconds.
func FrameDelayMs(duration float64, frames int) float64 {
	if frames <= 0 || duration <= 0 {
		return 0
	}
	return duration * 1000 / float64(frames)
}

// GIFDelay is the per-frame delay in GIF units (1/100 s), rounded and
// capped at the 16-bit field of the format.
func GIFDelay(duration float64, frames int) int {
	return min(int(math.Round(FrameDelayMs(duration, frames)/10)), math.MaxUint16)
}

// WebPDelay is the per-frame delay in whole milliseconds, truncated.
func WebPDelay(duration float64, frames int) int {
	return int(FrameDelayMs(duration, frames))
}

// Options shared by all encoders.
type Options struct {
	Scale        float64
	Dither       bool
	WebPLossless bool
	WebPQuality  int
	FFmpegPath   string
}

// Encoder writes one animation to path.
type Encoder interface {
	Format() Format
	Encode(ctx context.Context, seq collector.Sequence, path string) error
}

// NewEncoder returns the encoder for a format.
func NewEncoder(f Format, opts Options) (Encoder, error) {
	switch f {
	case GIF:
		return &GIFEncoder{Options: opts}, nil
	case WebP:
		return &WebPEncoder{Options: opts}, nil
	case APNG:
		return &APNGEncoder{Options: opts}, nil
	}
	return nil, fmt.Errorf("неизвестный формат: %s", f)
}

// LoadFrame decodes one captured PNG.
func LoadFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadFrames decodes a whole sequence in order.
func LoadFrames(seq collector.Sequence) ([]image.Image, error) {
	images := make([]image.Image, 0, seq.Len())
	for _, p := range seq.Frames {
		img, err := LoadFrame(p)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}
