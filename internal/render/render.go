// Package render defines how the capture pipeline drives a Lottie player.
// The player itself is never reimplemented: a FrameRenderer only seeks it to
// a frame and takes a snapshot of its root element.
package render

import (
	"context"
	"errors"

	"github.com/ivlev/lottie2gif/internal/lottie"
)

// ErrRenderTimeout: the surface never reached a capturable state (no root
// element, script failure, deadline breached). It only fails one document.
var ErrRenderTimeout = errors.New("render timeout")

// FrameRenderer is one rendering surface bound to one document.
type FrameRenderer interface {
	// LoadDocument injects the document and returns the player's duration in seconds.
	LoadDocument(ctx context.Context, doc *lottie.Document) (float64, error)
	// SeekToFrame shows exactly this frame and holds it, then waits for the draw.
	SeekToFrame(ctx context.Context, frame int) error
	// CaptureRoot returns a PNG of the root element with transparency preserved.
	CaptureRoot(ctx context.Context) ([]byte, error)
	Close() error
}

// Engine owns the process behind the surfaces. It is started once per batch
// and hands out a fresh session per document.
type Engine interface {
	Start(ctx context.Context) error
	NewSession(ctx context.Context) (FrameRenderer, error)
	Close() error
}
