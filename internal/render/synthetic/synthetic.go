// Package synthetic is an in-process render.Engine that draws deterministic
// frames without a browser. Tests use it to drive the whole pipeline.
package synthetic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sync"

	"github.com/ivlev/lottie2gif/internal/lottie"
	"github.com/ivlev/lottie2gif/internal/render"
)

type Engine struct {
	// Duration overrides the reported duration. By default the document's
	// nominal duration is used, or 1s when it has no frame rate.
	Duration func(doc *lottie.Document) float64
	// Fail makes LoadDocument fail with render.ErrRenderTimeout.
	Fail func(doc *lottie.Document) bool
	// Noise adds +/-Noise jitter to every channel, like a nondeterministic renderer.
	Noise int
	// MissFrame makes CaptureRoot silently return an empty payload for this
	// frame index (-1 disables it).
	MissFrame int

	mu       sync.Mutex
	started  bool
	closed   bool
	starts   int
	closes   int
	sessions int
	open     int
	seeks    map[string][]int
}

func New() *Engine {
	return &Engine{MissFrame: -1, seeks: make(map[string][]int)}
}

func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	if e.started {
		return errors.New("synthetic: engine already started")
	}
	e.started = true
	return nil
}

func (e *Engine) NewSession(ctx context.Context) (render.FrameRenderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.closed {
		return nil, errors.New("synthetic: engine not running")
	}
	e.sessions++
	e.open++
	return &Session{engine: e, rng: rand.New(rand.NewSource(int64(e.sessions)))}, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closes++
	e.closed = true
	return nil
}

func (e *Engine) Starts() int   { e.mu.Lock(); defer e.mu.Unlock(); return e.starts }
func (e *Engine) Closes() int   { e.mu.Lock(); defer e.mu.Unlock(); return e.closes }
func (e *Engine) Sessions() int { e.mu.Lock(); defer e.mu.Unlock(); return e.sessions }
func (e *Engine) Open() int     { e.mu.Lock(); defer e.mu.Unlock(); return e.open }

// Seeks returns the frames seeked for a document path, in order.
func (e *Engine) Seeks(path string) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.seeks[path]...)
}

type Session struct {
	engine *Engine
	rng    *rand.Rand
	doc    *lottie.Document
	frame  int
	closed bool
}

func (s *Session) LoadDocument(ctx context.Context, doc *lottie.Document) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return 0, fmt.Errorf("%w: нет корневого элемента", render.ErrRenderTimeout)
	}
	if s.engine.Fail != nil && s.engine.Fail(doc) {
		return 0, fmt.Errorf("%w: synthetic failure", render.ErrRenderTimeout)
	}
	s.doc = doc
	s.frame = doc.FrameStart
	if s.engine.Duration != nil {
		return s.engine.Duration(doc), nil
	}
	if d := doc.NominalDuration(); d > 0 {
		return d, nil
	}
	return 1.0, nil
}

func (s *Session) SeekToFrame(ctx context.Context, frame int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.doc == nil {
		return errors.New("synthetic: document not loaded")
	}
	if frame < s.doc.FrameStart || frame >= s.doc.FrameEnd {
		return fmt.Errorf("synthetic: frame %d outside [%d, %d)", frame, s.doc.FrameStart, s.doc.FrameEnd)
	}
	s.frame = frame
	s.engine.mu.Lock()
	s.engine.seeks[s.doc.Path] = append(s.engine.seeks[s.doc.Path], frame)
	s.engine.mu.Unlock()
	return nil
}

// CaptureRoot draws a square whose position and colour follow the frame on a
// transparent canvas.
func (s *Session) CaptureRoot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.doc == nil {
		return nil, errors.New("synthetic: document not loaded")
	}
	if s.frame == s.engine.MissFrame {
		return nil, nil
	}

	w, h := s.doc.Width, s.doc.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	size := max(1, min(w, h)/2)
	span := max(1, w-size)
	x0 := (s.frame * 7) % span
	y0 := (h - size) / 2
	c := color.NRGBA{R: uint8(s.frame * 13), G: uint8(255 - s.frame*5), B: 128, A: 255}

	for y := y0; y < y0+size && y < h; y++ {
		for x := x0; x < x0+size && x < w; x++ {
			img.SetNRGBA(x, y, s.jitter(c))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Session) jitter(c color.NRGBA) color.NRGBA {
	if s.engine.Noise <= 0 {
		return c
	}
	n := s.engine.Noise
	j := func(v uint8) uint8 {
		d := int(v) + s.rng.Intn(2*n+1) - n
		return uint8(min(255, max(0, d)))
	}
	return color.NRGBA{R: j(c.R), G: j(c.G), B: j(c.B), A: c.A}
}

func (s *Session) Close() error {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.engine.open--
	}
	return nil
}
