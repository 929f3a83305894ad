package engine

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/lottie2gif/internal/system"
	"github.com/ivlev/lottie2gif/internal/workspace"
)

// renderAll starts the engine once, gives every loaded document its own
// session and closes the engine once all of them are done. A failing
// document never stops the others.
func (c *Converter) renderAll(ctx context.Context, ws *workspace.Workspace, results []Result) error {
	pending := 0
	for _, r := range results {
		if r.Document != nil {
			pending++
		}
	}
	if pending == 0 {
		return nil
	}

	eng := c.NewEngine(c.Config, ws.Dir())
	if err := eng.Start(ctx); err != nil {
		eng.Close()
		return fmt.Errorf("не удалось запустить движок рендеринга: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Printf("[!] Ошибка остановки движка: %v", err)
		}
	}()

	workers := c.workers(pending)
	fmt.Printf("[*] Рендеринг %d документов, потоков: %d\n", pending, workers)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range results {
		r := &results[i]
		if r.Document == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				r.Err = err
				return nil
			}
			if err := c.captureDocument(ctx, eng, ws, r); err != nil {
				log.Printf("[!] Документ %s: %v", r.Job.Input, err)
				r.Err = err
			}
			return nil
		})
	}
	g.Wait()
	return ctx.Err()
}

// workers is Config.Workers, sized from the host when 0, never more than
// there are documents.
func (c *Converter) workers(docs int) int {
	n := c.Config.Workers
	if n <= 0 {
		n = system.RecommendedWorkers()
	}
	return max(1, min(n, docs))
}
