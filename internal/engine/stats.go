package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/lottie2gif/internal/system"
)

type stats struct {
	start       time.Time
	renderStart time.Time
	renderEnd   time.Time
	encodeEnd   time.Time
}

// report prints the performance summary and appends one line to
// benchmark.log.
func (c *Converter) report(results []Result) {
	var docs, frames, failed, skipped int
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Err != nil:
			failed++
		default:
			docs++
			frames += r.Samples.Len()
		}
	}

	total := time.Since(c.stats.start)
	render := c.stats.renderEnd.Sub(c.stats.renderStart)
	encode := c.stats.encodeEnd.Sub(c.stats.renderEnd)
	fps := 0.0
	if render > 0 {
		fps = float64(frames) / render.Seconds()
	}

	fmt.Printf("--- [PERFORMANCE REPORT] ---\n"+
		"Build: %s\n"+
		"Host: %s\n"+
		"Documents: %d ok, %d failed, %d skipped\n"+
		"Frames captured: %d\n"+
		"Total Time: %.2fs\n"+
		"Rendering (Chrome): %.2fs\n"+
		"Encoding: %.2fs\n"+
		"Capture FPS: %.2f\n"+
		"----------------------------\n",
		c.Config.BuildVersion, system.HostSummary(), docs, failed, skipped, frames,
		total.Seconds(), render.Seconds(), encode.Seconds(), fps,
	)

	input := ""
	if len(results) > 0 {
		input = filepath.Base(results[0].Job.Input)
	}
	entry := fmt.Sprintf("[%s] Build: %s | Input: %s | Docs: %d | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		c.Config.BuildVersion, input, len(results), frames,
		total.Seconds(), render.Seconds(), encode.Seconds(), fps,
	)
	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(entry); err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
