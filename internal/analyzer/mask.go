package analyzer

import (
	"image"
	"image/color"
	"math"
)

// visibleAlpha is the opacity above which a pixel counts as content.
const visibleAlpha = 8

// alphaMask extracts the alpha channel of img into an origin-based mask.
func alphaMask(img image.Image) *image.Alpha {
	b := img.Bounds()
	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mask.SetAlpha(x, y, color.Alpha{A: uint8(a >> 8)})
		}
	}
	return mask
}

// ContentBounds is the bounding box of all visible pixels, relative to the
// image origin. Empty for a fully transparent frame.
func ContentBounds(img image.Image) image.Rectangle {
	mask := alphaMask(img)
	b := mask.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := -1, -1

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if mask.AlphaAt(x, y).A <= visibleAlpha {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// IsBlank reports whether no pixel of img is visible.
func IsBlank(img image.Image) bool {
	return ContentBounds(img).Empty()
}

// Regions finds the bounding boxes of connected visible areas of at least
// minArea pixels².
func Regions(img image.Image, minArea int) []image.Rectangle {
	mask := alphaMask(img)
	b := mask.Bounds()
	visited := make([][]bool, b.Dy())
	for i := range visited {
		visited[i] = make([]bool, b.Dx())
	}

	var regions []image.Rectangle
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if visited[y][x] || mask.AlphaAt(x, y).A <= visibleAlpha {
				continue
			}
			rect := floodFill(mask, visited, x, y)
			if rect.Dx()*rect.Dy() >= minArea {
				regions = append(regions, rect)
			}
		}
	}
	return regions
}

func floodFill(mask *image.Alpha, visited [][]bool, startX, startY int) image.Rectangle {
	b := mask.Bounds()
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !p.In(b) || visited[p.Y][p.X] || mask.AlphaAt(p.X, p.Y).A <= visibleAlpha {
			continue
		}
		visited[p.Y][p.X] = true

		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// MeanDiff is the mean absolute per-channel difference of two frames in
// 0..255, premultiplied alpha included. Frames of different size differ by
// definition and return +Inf.
func MeanDiff(a, b image.Image) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Size() != bb.Size() {
		return math.Inf(1)
	}
	if ab.Empty() {
		return 0
	}

	var sum float64
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			sum += absDiff(r1, r2) + absDiff(g1, g2) + absDiff(b1, b2) + absDiff(a1, a2)
		}
	}
	return sum / float64(ab.Dx()*ab.Dy()*4) / 257
}

func absDiff(a, b uint32) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
