// Package engine runs a conversion batch: load documents, capture the sampled
// frames through a render.Engine, collect them and write the animations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/lottie2gif/internal/analyzer"
	"github.com/ivlev/lottie2gif/internal/anim"
	"github.com/ivlev/lottie2gif/internal/collector"
	"github.com/ivlev/lottie2gif/internal/config"
	"github.com/ivlev/lottie2gif/internal/lottie"
	"github.com/ivlev/lottie2gif/internal/render"
	"github.com/ivlev/lottie2gif/internal/sampler"
	"github.com/ivlev/lottie2gif/internal/workspace"
)

// EngineFactory creates the render engine of a batch. workDir is the batch
// workspace, engines may keep their own files there.
type EngineFactory func(cfg *config.Config, workDir string) render.Engine

// Progress receives one Add(1) per captured frame. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(n int) error
}

// Job is one input document and where its animations go.
type Job struct {
	Input   string
	Output  string // destination name, see anim.OutputPaths
	Formats []anim.Format
	Quality *int // overrides Config.Quality when set
}

// Result is the outcome of one job. Results keep the order of the jobs, so a
// skipped document never shifts the outputs of the others.
type Result struct {
	Index    int
	Job      Job
	Document *lottie.Document
	Samples  sampler.SampleSet
	Outputs  []string
	Findings []analyzer.Finding
	Frames   []image.Image // decoded captures, only with Converter.KeepFrames
	Skipped  bool
	Err      error
}

func (r Result) OK() bool { return r.Err == nil && !r.Skipped }

type Converter struct {
	Config    *config.Config
	NewEngine EngineFactory
	Progress  Progress

	// KeepFrames decodes the captured frames into Result.Frames before the
	// workspace is removed.
	KeepFrames bool

	checks []analyzer.Check
	stats  stats
}

func NewConverter(cfg *config.Config, factory EngineFactory) *Converter {
	return &Converter{Config: cfg, NewEngine: factory}
}

// Run converts every job. Per-document failures end up in Result.Err; the
// returned error is reserved for the batch itself (workspace, engine start,
// cancellation). The workspace is gone when Run returns.
func (c *Converter) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if c.NewEngine == nil {
		return nil, errors.New("не задан движок рендеринга")
	}
	if c.Config.Inspect {
		checks, err := analyzer.NewChecks(c.Config.Checks)
		if err != nil {
			return nil, err
		}
		c.checks = checks
	}
	c.stats = stats{start: time.Now()}

	ws, err := workspace.New(c.Config.TempDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Printf("[!] Не удалось удалить рабочую папку %s: %v", ws.Dir(), err)
		}
	}()

	results := c.load(jobs)

	c.stats.renderStart = time.Now()
	if err := c.renderAll(ctx, ws, results); err != nil {
		return results, err
	}
	c.stats.renderEnd = time.Now()

	if err := c.assembleAll(ctx, ws, results); err != nil {
		return results, err
	}
	c.stats.encodeEnd = time.Now()

	if c.Config.ShowStats {
		c.report(results)
	}
	return results, nil
}

// load parses every input. Corrupt gzip payloads are skipped, anything else
// that fails to load fails only its own job.
func (c *Converter) load(jobs []Job) []Result {
	results := make([]Result, len(jobs))
	for i, job := range jobs {
		results[i] = Result{Index: i, Job: job}
		doc, err := lottie.Load(job.Input)
		switch {
		case errors.Is(err, lottie.ErrCorruptInput):
			log.Printf("[!] Пропуск повреждённого файла %s: %v", job.Input, err)
			results[i].Skipped = true
			results[i].Err = err
		case err != nil:
			log.Printf("[!] Ошибка загрузки %s: %v", job.Input, err)
			results[i].Err = err
		default:
			results[i].Document = doc
		}
	}
	return results
}

func (c *Converter) assembleAll(ctx context.Context, ws *workspace.Workspace, results []Result) error {
	for i := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := &results[i]
		if r.Document == nil || r.Err != nil {
			continue
		}
		if err := c.assemble(ctx, ws, r); err != nil {
			log.Printf("[!] Документ %s: %v", r.Job.Input, err)
			r.Err = err
			continue
		}
		for _, p := range r.Outputs {
			fmt.Printf("[>] Готово: %s\n", p)
		}
	}
	return nil
}

func (c *Converter) assemble(ctx context.Context, ws *workspace.Workspace, r *Result) error {
	doc := r.Document
	seq, err := collector.Collect(ws, r.Index, r.Samples, doc.Width, doc.Height)
	if err != nil {
		return err
	}
	if seq.Len() == 0 {
		fmt.Printf("[!] %s: нет кадров, файл не создаётся\n", r.Job.Input)
		return nil
	}

	if len(c.checks) > 0 {
		r.Findings = c.inspect(seq)
		for _, f := range r.Findings {
			log.Printf("[!] %s: %s", r.Job.Input, f)
		}
	}
	if c.KeepFrames {
		if r.Frames, err = anim.LoadFrames(seq); err != nil {
			return err
		}
	}

	if len(r.Job.Formats) == 0 {
		return nil
	}
	opts := anim.Options{
		Scale:        c.Config.Scale,
		Dither:       c.Config.Dither,
		WebPLossless: c.Config.WebPLossless,
		WebPQuality:  c.Config.WebPQuality,
		FFmpegPath:   c.Config.FFmpegPath,
	}
	paths := anim.OutputPaths(r.Job.Output, r.Job.Formats)
	for i, f := range r.Job.Formats {
		enc, err := anim.NewEncoder(f, opts)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(paths[i]); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
		if err := enc.Encode(ctx, seq, paths[i]); err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		r.Outputs = append(r.Outputs, paths[i])
	}
	return nil
}

// inspect decodes the probe frames (first, middle, last) and runs the checks.
func (c *Converter) inspect(seq collector.Sequence) []analyzer.Finding {
	var frames []image.Image
	for _, i := range analyzer.Probe(seq.Len()) {
		img, err := anim.LoadFrame(seq.Frames[i])
		if err != nil {
			log.Printf("[!] Не удалось прочитать кадр для проверки: %v", err)
			return nil
		}
		frames = append(frames, img)
	}
	return analyzer.Inspect(frames, c.checks...)
}
