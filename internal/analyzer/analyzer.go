// Package analyzer looks at captured frames and reports suspicious
// animations: nothing drawn, nothing moving, content cut off by the canvas.
// Findings are warnings only, they never fail a conversion.
package analyzer

import (
	"fmt"
	"image"
	"strings"
)

// Finding is one warning about a sampled frame sequence.
type Finding struct {
	Check  string
	Frame  int // index into the inspected frames, -1 for the whole sequence
	Detail string
}

func (f Finding) String() string {
	if f.Frame < 0 {
		return fmt.Sprintf("%s: %s", f.Check, f.Detail)
	}
	return fmt.Sprintf("%s (кадр %d): %s", f.Check, f.Frame, f.Detail)
}

// Check is one inspection strategy.
type Check interface {
	Name() string
	Run(frames []image.Image) []Finding
}

// BlankCheck flags frames with nothing visible but specks smaller than
// MinArea. A player that failed to draw usually produces exactly these.
type BlankCheck struct {
	MinArea int
}

func (BlankCheck) Name() string { return "blank" }

func (c BlankCheck) Run(frames []image.Image) []Finding {
	var out []Finding
	blank := 0
	for i, img := range frames {
		if IsBlank(img) || len(Regions(img, c.MinArea)) == 0 {
			blank++
			out = append(out, Finding{Check: c.Name(), Frame: i, Detail: "пустой кадр"})
		}
	}
	if blank > 0 && blank == len(frames) {
		return []Finding{{Check: c.Name(), Frame: -1, Detail: "все кадры пустые"}}
	}
	return out
}

// StaticCheck flags sequences whose frames are all alike.
type StaticCheck struct {
	Threshold float64 // MeanDiff below which two frames are considered equal
}

func (StaticCheck) Name() string { return "static" }

func (c StaticCheck) Run(frames []image.Image) []Finding {
	if len(frames) < 2 {
		return nil
	}
	for i := 1; i < len(frames); i++ {
		if MeanDiff(frames[0], frames[i]) >= c.Threshold {
			return nil
		}
	}
	return []Finding{{Check: c.Name(), Frame: -1, Detail: "анимация не меняется"}}
}

// EdgeCheck flags frames whose content touches the canvas border on some
// side but does not fill it, a sign of layers leaving the composition.
type EdgeCheck struct{}

func (EdgeCheck) Name() string { return "edge" }

func (c EdgeCheck) Run(frames []image.Image) []Finding {
	var out []Finding
	for i, img := range frames {
		size := img.Bounds().Size()
		cb := ContentBounds(img)
		if cb.Empty() || cb == image.Rect(0, 0, size.X, size.Y) {
			continue
		}
		var sides []string
		if cb.Min.X == 0 {
			sides = append(sides, "слева")
		}
		if cb.Min.Y == 0 {
			sides = append(sides, "сверху")
		}
		if cb.Max.X == size.X {
			sides = append(sides, "справа")
		}
		if cb.Max.Y == size.Y {
			sides = append(sides, "снизу")
		}
		if len(sides) > 0 && len(sides) < 4 {
			out = append(out, Finding{
				Check:  c.Name(),
				Frame:  i,
				Detail: "содержимое обрезано " + strings.Join(sides, ", "),
			})
		}
	}
	return out
}

// Inspect runs every check over frames.
func Inspect(frames []image.Image, checks ...Check) []Finding {
	var out []Finding
	for _, c := range checks {
		out = append(out, c.Run(frames)...)
	}
	return out
}

// Probe picks the frames worth inspecting out of a sequence of n: first,
// middle and last.
func Probe(n int) []int {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []int{0}
	case n == 2:
		return []int{0, 1}
	}
	return []int{0, n / 2, n - 1}
}
