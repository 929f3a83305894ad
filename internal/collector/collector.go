// Package collector maps a document's sample set back to the frames the
// render session stored, in capture order.
package collector

import (
	"errors"
	"fmt"

	"github.com/ivlev/lottie2gif/internal/sampler"
)

// ErrMissingFrame means a sampled frame was never written. It points at a
// render session defect, not at bad input.
var ErrMissingFrame = errors.New("missing frame")

// FrameStore is the part of the workspace the collector needs.
type FrameStore interface {
	FramePath(doc, frame int) string
	Has(doc, frame int) bool
}

// Sequence is the ordered input of the assembler for one document.
type Sequence struct {
	Doc      int
	Frames   []string // frame paths in capture order
	Duration float64  // seconds
	Width    int
	Height   int
}

func (s Sequence) Len() int { return len(s.Frames) }

// Collect resolves every frame of set to its storage path.
func Collect(store FrameStore, doc int, set sampler.SampleSet, width, height int) (Sequence, error) {
	seq := Sequence{
		Doc:      doc,
		Frames:   make([]string, 0, set.Len()),
		Duration: set.Duration,
		Width:    width,
		Height:   height,
	}
	for _, f := range set.Frames {
		if !store.Has(doc, f) {
			return Sequence{}, fmt.Errorf("%w: документ %d, кадр %d", ErrMissingFrame, doc, f)
		}
		seq.Frames = append(seq.Frames, store.FramePath(doc, f))
	}
	return seq, nil
}
