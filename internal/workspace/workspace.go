// Package workspace is the scoped on-disk storage of one conversion batch.
// Every batch gets its own directory named after an xid, so two batches never
// share frames, and Close removes the directory on every exit path.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/xid"
)

type Workspace struct {
	id  string
	dir string

	mu      sync.Mutex
	written map[key]struct{}
	closed  bool
}

type key struct{ doc, frame int }

// New creates the batch directory under base (os.TempDir() when empty).
func New(base string) (*Workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	id := xid.New().String()
	dir := filepath.Join(base, "lottie2gif_"+id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать рабочую папку: %w", err)
	}
	return &Workspace{
		id:      id,
		dir:     dir,
		written: make(map[key]struct{}),
	}, nil
}

func (w *Workspace) ID() string  { return w.id }
func (w *Workspace) Dir() string { return w.dir }

// DocDir returns (and creates) the directory for one document.
func (w *Workspace) DocDir(doc int) (string, error) {
	dir := filepath.Join(w.dir, fmt.Sprintf("d%03d", doc))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// FramePath is the storage key of a captured frame.
func (w *Workspace) FramePath(doc, frame int) string {
	return filepath.Join(w.dir, fmt.Sprintf("d%03d", doc), fmt.Sprintf("f%06d.png", frame))
}

// WriteFrame stores the PNG bytes of a captured frame.
func (w *Workspace) WriteFrame(doc, frame int, png []byte) error {
	if _, err := w.DocDir(doc); err != nil {
		return err
	}
	if err := os.WriteFile(w.FramePath(doc, frame), png, 0644); err != nil {
		return err
	}
	w.mu.Lock()
	w.written[key{doc, frame}] = struct{}{}
	w.mu.Unlock()
	return nil
}

// Has reports whether a frame was written and is still on disk.
func (w *Workspace) Has(doc, frame int) bool {
	w.mu.Lock()
	_, ok := w.written[key{doc, frame}]
	w.mu.Unlock()
	if !ok {
		return false
	}
	_, err := os.Stat(w.FramePath(doc, frame))
	return err == nil
}

// Close removes the whole batch directory. Calling it twice is fine.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.written = make(map[key]struct{})
	if err := os.RemoveAll(w.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
