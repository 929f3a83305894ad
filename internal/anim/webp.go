package anim

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ivlev/lottie2gif/internal/collector"
)

// WebPEncoder writes animated WebP through ffmpeg's libwebp_anim encoder.
type WebPEncoder struct {
	Options
}

func (e *WebPEncoder) Format() Format { return WebP }

func (e *WebPEncoder) Encode(ctx context.Context, seq collector.Sequence, path string) error {
	if seq.Len() == 0 {
		return ErrNoFrames
	}
	delay := WebPDelay(seq.Duration, seq.Len())
	if delay < 1 {
		delay = 1
	}

	// image2 нужен непрерывный ряд файлов, а сэмплированные кадры идут с пропусками.
	seqDir, err := os.MkdirTemp(filepath.Dir(seq.Frames[0]), "webp_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(seqDir)

	for i, p := range seq.Frames {
		if err := linkOrCopy(p, filepath.Join(seqDir, fmt.Sprintf("seq_%05d.png", i))); err != nil {
			return err
		}
	}

	args := e.buildFFmpegArgs(filepath.Join(seqDir, "seq_%05d.png"), delay, path)
	cmd := exec.CommandContext(ctx, e.ffmpeg(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg webp error: %v, output: %s", err, string(out))
	}
	return nil
}

func (e *WebPEncoder) ffmpeg() string {
	if e.FFmpegPath == "" {
		return "ffmpeg"
	}
	return e.FFmpegPath
}

// buildFFmpegArgs: the input frame rate is 1000/delay, so every frame lasts
// exactly delay milliseconds in the output.
func (e *WebPEncoder) buildFFmpegArgs(pattern string, delayMs int, out string) []string {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-framerate", fmt.Sprintf("1000/%d", delayMs),
		"-start_number", "0",
		"-i", pattern,
	}
	if e.Scale > 0 && e.Scale != 1 {
		s := strconv.FormatFloat(e.Scale, 'f', -1, 64)
		args = append(args, "-vf", fmt.Sprintf("scale=trunc(iw*%s+0.5):trunc(ih*%s+0.5):flags=lanczos", s, s))
	}
	args = append(args, "-c:v", "libwebp_anim", "-loop", "0")
	if e.WebPLossless {
		args = append(args, "-lossless", "1")
	} else {
		args = append(args, "-lossless", "0", "-quality", strconv.Itoa(e.WebPQuality))
	}
	args = append(args, "-f", "webp", out)
	return args
}

func linkOrCopy(src, dst string) error {
	if err := os.Link(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
