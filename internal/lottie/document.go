// Package lottie loads Lottie animation documents (plain JSON or gzip, e.g.
// Telegram .tgs stickers) and extracts the metadata the capture pipeline needs.
package lottie

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrCorruptInput: the payload claims gzip (magic bytes) but does not
	// decompress. Batch loaders skip such documents.
	ErrCorruptInput = errors.New("corrupt input")
	// ErrMalformedDocument: the payload is not a JSON object.
	ErrMalformedDocument = errors.New("malformed document")
)

var gzipMagic = []byte{0x1f, 0x8b}

// Document is one parsed input. It is read-only once loaded.
type Document struct {
	Path       string
	Name       string
	Width      int
	Height     int
	FrameStart int // inclusive
	FrameEnd   int // exclusive
	FrameRate  float64
	Compressed bool
	Raw        []byte // JSON handed to the player as-is
}

// header covers the top-level fields we read; the rest of the document is
// passed through untouched in Raw.
type header struct {
	W  float64 `json:"w"`
	H  float64 `json:"h"`
	IP float64 `json:"ip"`
	OP float64 `json:"op"`
	FR float64 `json:"fr"`
	NM string  `json:"nm"`
}

// IsGzip reports whether data starts with the gzip magic number.
func IsGzip(data []byte) bool {
	return len(data) >= 2 && bytes.Equal(data[:2], gzipMagic)
}

// Parse decodes raw file bytes into a Document.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}

	if IsGzip(data) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptInput, err)
		}
		plain, err := io.ReadAll(zr)
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("%w: %v", ErrCorruptInput, err)
		}
		if err := zr.Close(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptInput, err)
		}
		data = plain
		doc.Compressed = true
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: ожидается JSON-объект", ErrMalformedDocument)
	}

	var h header
	if err := json.Unmarshal(trimmed, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc.Name = h.NM
	doc.Width = int(h.W)
	doc.Height = int(h.H)
	doc.FrameStart = int(h.IP)
	doc.FrameEnd = int(h.OP)
	doc.FrameRate = h.FR
	doc.Raw = trimmed
	return doc, nil
}

// Load reads and parses a document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// NumFrames is the size of the frame range, never negative.
func (d *Document) NumFrames() int {
	if d.FrameEnd <= d.FrameStart {
		return 0
	}
	return d.FrameEnd - d.FrameStart
}

// NominalDuration is the playback length implied by ip/op/fr. The player's own
// duration stays authoritative; this is only a fallback.
func (d *Document) NominalDuration() float64 {
	if d.FrameRate <= 0 {
		return 0
	}
	return float64(d.NumFrames()) / d.FrameRate
}

func (d *Document) String() string {
	name := d.Name
	if name == "" {
		name = d.Path
	}
	return fmt.Sprintf("%s (%dx%d, кадры %d..%d)", name, d.Width, d.Height, d.FrameStart, d.FrameEnd)
}
