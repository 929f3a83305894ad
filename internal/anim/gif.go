package anim

import (
	"bufio"
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	"github.com/ivlev/lottie2gif/internal/collector"
)

// alphaThreshold: pixels at least this opaque are drawn, the rest become the
// transparent index.
const alphaThreshold = 0x80

// transparentPalette is index 0 = fully transparent, the 216 web-safe colours
// and a gray ramp filling up to 256 entries.
var transparentPalette = buildPalette()

func buildPalette() color.Palette {
	pal := make(color.Palette, 0, 256)
	pal = append(pal, color.RGBA{})
	pal = append(pal, palette.WebSafe...)
	for v := 0; v < 256 && len(pal) < 256; v += 6 {
		if v%0x33 == 0 {
			continue
		}
		pal = append(pal, color.RGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 0xff})
	}
	return pal
}

// GIFEncoder writes GIF89a: infinite loop, index 0 transparent, every frame
// disposed to background.
type GIFEncoder struct {
	Options
}

func (e *GIFEncoder) Format() Format { return GIF }

func (e *GIFEncoder) Encode(ctx context.Context, seq collector.Sequence, path string) error {
	if seq.Len() == 0 {
		return ErrNoFrames
	}
	delay := GIFDelay(seq.Duration, seq.Len())

	out := &gif.GIF{LoopCount: 0, BackgroundIndex: 0}
	w, h := scaledSize(seq.Width, seq.Height, e.Scale)
	for _, p := range seq.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := LoadFrame(p)
		if err != nil {
			return err
		}
		src, release := scaleFrame(img, e.Scale)
		pm := e.quantize(src)
		release()

		w = max(w, pm.Rect.Dx())
		h = max(h, pm.Rect.Dy())
		out.Image = append(out.Image, pm)
		out.Delay = append(out.Delay, delay)
		out.Disposal = append(out.Disposal, gif.DisposalBackground)
	}
	out.Config = image.Config{ColorModel: transparentPalette, Width: w, Height: h}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := gif.EncodeAll(bw, out); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// quantize maps src onto the shared palette. Semi-transparent pixels are
// snapped to either fully transparent or fully opaque first, GIF has no alpha.
func (e *GIFEncoder) quantize(src image.Image) *image.Paletted {
	b := src.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if c.A < alphaThreshold {
				continue
			}
			c.A = 0xff
			flat.SetNRGBA(x, y, c)
		}
	}

	pm := image.NewPaletted(flat.Rect, transparentPalette)
	if e.Dither {
		draw.FloydSteinberg.Draw(pm, pm.Rect, flat, image.Point{})
	} else {
		draw.Draw(pm, pm.Rect, flat, image.Point{}, draw.Src)
	}
	return pm
}
