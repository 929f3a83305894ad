package sampler

import (
	"math"
	"testing"
)

func TestFullFramerate(t *testing.T) {
	ranges := []struct{ start, end int }{
		{0, 10},
		{0, 1},
		{5, 65},
		{-3, 3},
	}

	for _, r := range ranges {
		set := Sample(r.start, r.end, 2.0, 3, true)
		if set.Len() != r.end-r.start {
			t.Fatalf("[%d,%d): expected %d frames, got %d", r.start, r.end, r.end-r.start, set.Len())
		}
		for i, f := range set.Frames {
			if f != r.start+i {
				t.Errorf("[%d,%d): frame %d = %d, expected %d", r.start, r.end, i, f, r.start+i)
			}
		}
		if set.Step != 1 {
			t.Errorf("Expected step 1, got %d", set.Step)
		}
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name      string
		quality   int
		numFrames int
		duration  float64
		want      int
	}{
		{"q0 60 frames 1s", 0, 60, 1.0, 6},
		{"q1 60 frames 1s", 1, 60, 1.0, 4},
		{"q2 60 frames 1s", 2, 60, 1.0, 3},
		{"q3 60 frames 1s", 3, 60, 1.0, 2},
		{"q3 180 frames 3s", 3, 180, 3.0, 2},
		{"sparse source", 1, 10, 2.0, 1},
		{"negative quality", -1, 60, 1.0, FallbackStep},
		{"quality too high", 4, 60, 1.0, FallbackStep},
		{"quality far too high", 100, 0, 0, FallbackStep},
		{"zero duration", 1, 60, 0, 1},
		{"negative duration", 2, 60, -1, 1},
		{"NaN duration", 2, 60, math.NaN(), 1},
		{"no frames", 0, 0, 1.0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Step(tt.quality, tt.numFrames, tt.duration); got != tt.want {
				t.Errorf("Step(%d, %d, %f) = %d, expected %d", tt.quality, tt.numFrames, tt.duration, got, tt.want)
			}
		})
	}
}

func TestSampleAlwaysEndsOnLastFrame(t *testing.T) {
	for q := -1; q <= 4; q++ {
		for end := 1; end <= 90; end++ {
			for _, dur := range []float64{0, 0.25, 1, 3.3} {
				set := Sample(0, end, dur, q, false)
				if set.Len() == 0 {
					t.Fatalf("q=%d end=%d dur=%f: empty sample", q, end, dur)
				}
				if last := set.Frames[set.Len()-1]; last != end-1 {
					t.Errorf("q=%d end=%d dur=%f: last frame %d, expected %d", q, end, dur, last, end-1)
				}
				for i := 1; i < set.Len(); i++ {
					if set.Frames[i] <= set.Frames[i-1] {
						t.Fatalf("q=%d end=%d: frames not strictly increasing: %v", q, end, set.Frames)
					}
				}
				if set.Frames[0] != 0 {
					t.Errorf("q=%d end=%d: first frame %d, expected 0", q, end, set.Frames[0])
				}
			}
		}
	}
}

func TestSampleStrided(t *testing.T) {
	// 60 frames over 1s at quality 1: step 4, 0..56 plus the last frame.
	set := Sample(0, 60, 1.0, 1, false)
	expected := []int{0, 4, 8, 12, 16, 20, 24, 28, 32, 36, 40, 44, 48, 52, 56, 59}
	if set.Len() != len(expected) {
		t.Fatalf("Expected %d frames, got %d: %v", len(expected), set.Len(), set.Frames)
	}
	for i := range expected {
		if set.Frames[i] != expected[i] {
			t.Errorf("Frame %d: expected %d, got %d", i, expected[i], set.Frames[i])
		}
	}

	// Step lands exactly on the last frame: nothing appended.
	set = Sample(0, 7, 1.0, 5, false)
	expected = []int{0, 2, 4, 6}
	if set.Len() != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, set.Frames)
	}
}

func TestSampleDegenerate(t *testing.T) {
	for _, full := range []bool{true, false} {
		if set := Sample(10, 10, 1.0, 1, full); set.Len() != 0 {
			t.Errorf("full=%v: expected empty sample for empty range, got %v", full, set.Frames)
		}
		if set := Sample(10, 3, 1.0, 1, full); set.Len() != 0 {
			t.Errorf("full=%v: expected empty sample for inverted range, got %v", full, set.Frames)
		}
	}

	set := Sample(0, 0, 0, -5, false)
	if set.Len() != 0 {
		t.Errorf("Expected empty sample, got %v", set.Frames)
	}
}

func TestSampleKeepsDuration(t *testing.T) {
	set := Sample(0, 10, 1.25, 1, true)
	if set.Duration != 1.25 {
		t.Errorf("Expected duration 1.25, got %f", set.Duration)
	}
}
