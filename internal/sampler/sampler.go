// Package sampler decides which frames of an animation get captured.
package sampler

import "math"

// qualityFPS maps quality levels 0..3 to a frames-per-second threshold.
// A larger threshold makes the divisor bigger and therefore the step smaller.
var qualityFPS = []float64{10, 15, 20, 30}

// FallbackStep is used for quality levels outside the table.
const FallbackStep = 2

// SampleSet is the ordered list of frames to capture for one document.
type SampleSet struct {
	Duration float64 // seconds, as reported by the player
	Step     int
	Frames   []int
}

// Len returns the number of sampled frames.
func (s SampleSet) Len() int { return len(s.Frames) }

// Step computes the stride for quality-based sampling:
// max(1, floor(numFrames / (duration * fps[quality]))).
func Step(quality, numFrames int, duration float64) int {
	if quality < 0 || quality >= len(qualityFPS) {
		return FallbackStep
	}
	if numFrames <= 0 || duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 1
	}
	step := int(math.Floor(float64(numFrames) / (duration * qualityFPS[quality])))
	if step < 1 {
		return 1
	}
	return step
}

// Sample returns the frames to capture in [start, end). With full set every
// frame is taken; otherwise frames are strided by Step and the last frame
// (end-1) is always appended so the final pose is never lost.
func Sample(start, end int, duration float64, quality int, full bool) SampleSet {
	set := SampleSet{Duration: duration, Step: 1}
	if end <= start {
		return set
	}

	if !full {
		set.Step = Step(quality, end-start, duration)
	}

	frames := make([]int, 0, (end-start)/set.Step+1)
	for f := start; f < end; f += set.Step {
		frames = append(frames, f)
	}
	if len(frames) > 0 && frames[len(frames)-1] != end-1 {
		frames = append(frames, end-1)
	}
	set.Frames = frames
	return set
}
