package anim

import (
	"bufio"
	"context"
	"math"
	"os"

	"github.com/kettek/apng"

	"github.com/ivlev/lottie2gif/internal/collector"
)

// APNGEncoder writes an animated PNG with full alpha.
type APNGEncoder struct {
	Options
}

func (e *APNGEncoder) Format() Format { return APNG }

func (e *APNGEncoder) Encode(ctx context.Context, seq collector.Sequence, path string) error {
	if seq.Len() == 0 {
		return ErrNoFrames
	}
	delay := min(WebPDelay(seq.Duration, seq.Len()), math.MaxUint16)

	a := apng.APNG{
		Frames:    make([]apng.Frame, 0, seq.Len()),
		LoopCount: 0,
	}
	var releases []func()
	defer func() {
		for _, r := range releases {
			r()
		}
	}()

	for _, p := range seq.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := LoadFrame(p)
		if err != nil {
			return err
		}
		scaled, release := scaleFrame(img, e.Scale)
		releases = append(releases, release)

		a.Frames = append(a.Frames, apng.Frame{
			Image:            scaled,
			DelayNumerator:   uint16(delay),
			DelayDenominator: 1000,
			DisposeOp:        apng.DISPOSE_OP_BACKGROUND,
			BlendOp:          apng.BLEND_OP_SOURCE,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := apng.Encode(bw, a); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
