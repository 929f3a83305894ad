package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/ivlev/lottie2gif/internal/render"
	"github.com/ivlev/lottie2gif/internal/sampler"
	"github.com/ivlev/lottie2gif/internal/workspace"
)

// captureDocument renders the sampled frames of one document into the
// workspace with a fresh session.
func (c *Converter) captureDocument(ctx context.Context, eng render.Engine, ws *workspace.Workspace, r *Result) error {
	doc := r.Document
	if doc.NumFrames() == 0 {
		r.Samples = sampler.SampleSet{}
		return nil
	}

	sess, err := eng.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("не удалось открыть сессию: %w", err)
	}
	defer sess.Close()

	duration, err := sess.LoadDocument(ctx, doc)
	if err != nil {
		return fmt.Errorf("загрузка в плеер: %w", err)
	}
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		log.Printf("[!] %s: плеер вернул длительность %v, используется %.3fs из ip/op/fr", doc.Path, duration, doc.NominalDuration())
		duration = doc.NominalDuration()
	}

	quality := c.Config.Quality
	if r.Job.Quality != nil {
		quality = *r.Job.Quality
	}
	r.Samples = sampler.Sample(doc.FrameStart, doc.FrameEnd, duration, quality, c.Config.FullFramerate)
	fmt.Printf("[*] %s: %.2fs, кадров к захвату %d (шаг %d)\n", doc, duration, r.Samples.Len(), r.Samples.Step)

	for _, frame := range r.Samples.Frames {
		if err := c.captureFrame(ctx, sess, ws, r.Index, frame); err != nil {
			return err
		}
		if c.Progress != nil {
			c.Progress.Add(1)
		}
	}
	return nil
}

// captureFrame seeks and snapshots one frame under the per-frame deadline.
// An empty snapshot is logged and not stored; the collector reports it.
func (c *Converter) captureFrame(ctx context.Context, sess render.FrameRenderer, ws *workspace.Workspace, doc, frame int) error {
	fctx, cancel := context.WithTimeout(ctx, c.Config.FrameTimeout)
	defer cancel()

	if err := sess.SeekToFrame(fctx, frame); err != nil {
		return frameError(ctx, fctx, frame, err)
	}
	png, err := sess.CaptureRoot(fctx)
	if err != nil {
		return frameError(ctx, fctx, frame, err)
	}
	if len(png) == 0 {
		log.Printf("[!] Пустой снимок: документ %d, кадр %d", doc, frame)
		return nil
	}
	return ws.WriteFrame(doc, frame, png)
}

// frameError maps a breached per-frame deadline to render.ErrRenderTimeout.
// Cancellation of the batch itself is passed through untouched.
func frameError(ctx, fctx context.Context, frame int, err error) error {
	if errors.Is(err, render.ErrRenderTimeout) {
		return fmt.Errorf("кадр %d: %w", frame, err)
	}
	if ctx.Err() == nil && errors.Is(fctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: кадр %d: %v", render.ErrRenderTimeout, frame, err)
	}
	return fmt.Errorf("кадр %d: %w", frame, err)
}
