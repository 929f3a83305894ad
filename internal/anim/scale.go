package anim

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/ivlev/lottie2gif/internal/system"
)

// scaleFrame resizes img by factor using CatmullRom. The returned release
// func hands pooled buffers back and must be called once the image is no
// longer referenced.
func scaleFrame(img image.Image, factor float64) (image.Image, func()) {
	if factor <= 0 || factor == 1 {
		return img, func() {}
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor+0.5))
	h := max(1, int(float64(b.Dy())*factor+0.5))

	dst := system.GetImage(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, func() { system.PutImage(dst) }
}

// scaledSize is the output canvas of a sequence after scaling.
func scaledSize(w, h int, factor float64) (int, int) {
	if factor <= 0 || factor == 1 {
		return w, h
	}
	return max(1, int(float64(w)*factor+0.5)), max(1, int(float64(h)*factor+0.5))
}
