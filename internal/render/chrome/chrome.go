// Package chrome renders Lottie documents in headless Chrome through chromedp.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/ivlev/lottie2gif/internal/config"
	"github.com/ivlev/lottie2gif/internal/lottie"
	"github.com/ivlev/lottie2gif/internal/render"
)

// Engine is one Chrome process shared by all sessions of a batch.
type Engine struct {
	cfg     *config.Config
	pageDir string
	player  string

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	pages     atomic.Int64
	closeOnce sync.Once
}

// New prepares an engine; pages are written to pageDir (the batch workspace).
func New(cfg *config.Config, pageDir string) *Engine {
	return &Engine{cfg: cfg, pageDir: pageDir}
}

func (e *Engine) Start(ctx context.Context) error {
	tag, err := render.PlayerTag(e.cfg.PlayerScript)
	if err != nil {
		return err
	}
	e.player = tag

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", e.cfg.Headless),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("allow-file-access-from-files", true),
	)
	if e.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	e.allocCancel = allocCancel

	var ctxOpts []chromedp.ContextOption
	if e.cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(log.Printf), chromedp.WithErrorf(log.Printf))
	}
	e.browserCtx, e.browserCancel = chromedp.NewContext(allocCtx, ctxOpts...)

	// Первый Run запускает сам браузер.
	if err := chromedp.Run(e.browserCtx); err != nil {
		e.Close()
		return fmt.Errorf("не удалось запустить Chrome: %w", err)
	}
	return nil
}

func (e *Engine) NewSession(ctx context.Context) (render.FrameRenderer, error) {
	if e.browserCtx == nil {
		return nil, errors.New("chrome: движок не запущен")
	}
	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	// Вкладка создаётся здесь, чтобы таймауты отдельных шагов не владели ею.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("не удалось открыть вкладку: %w", err)
	}
	id := e.pages.Add(1)
	return &Session{
		cfg:      e.cfg,
		player:   e.player,
		pagePath: filepath.Join(e.pageDir, fmt.Sprintf("page_%03d.html", id)),
		tabCtx:   tabCtx,
		cancel:   cancel,
	}, nil
}

// Close shuts Chrome down gracefully, then kills the allocator.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.browserCtx != nil {
			err = chromedp.Cancel(e.browserCtx)
			e.browserCancel()
		}
		if e.allocCancel != nil {
			e.allocCancel()
		}
	})
	return err
}

// Session is one tab bound to one document.
type Session struct {
	cfg      *config.Config
	player   string
	pagePath string

	tabCtx context.Context
	cancel context.CancelFunc
}

// run executes actions on the tab with a deadline, also honouring the
// caller's context.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", render.ErrRenderTimeout, err)
	}
	return err
}

func (s *Session) LoadDocument(ctx context.Context, doc *lottie.Document) (float64, error) {
	if doc.Width <= 0 || doc.Height <= 0 {
		return 0, fmt.Errorf("%w: некорректный размер холста %dx%d", render.ErrRenderTimeout, doc.Width, doc.Height)
	}
	if err := os.WriteFile(s.pagePath, render.Page(doc, s.player, s.cfg.PlayerMode), 0644); err != nil {
		return 0, err
	}
	abs, err := filepath.Abs(s.pagePath)
	if err != nil {
		return 0, err
	}

	var ready bool
	var jsErr string
	var duration float64
	err = s.run(ctx, s.cfg.ReadyTimeout,
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}),
		chromedp.EmulateViewport(int64(doc.Width), int64(doc.Height)),
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.WaitReady("#root", chromedp.ByID),
		chromedp.Poll(`window.lottieReady === true || window.lottieError !== ""`, &ready),
		chromedp.Evaluate(`window.lottieError`, &jsErr),
	)
	if err != nil {
		return 0, err
	}
	if jsErr != "" {
		return 0, fmt.Errorf("%w: ошибка плеера: %s", render.ErrRenderTimeout, jsErr)
	}
	if err := s.run(ctx, s.cfg.ReadyTimeout, chromedp.Evaluate(`duration`, &duration)); err != nil {
		return 0, err
	}
	return duration, nil
}

func (s *Session) SeekToFrame(ctx context.Context, frame int) error {
	return s.run(ctx, s.cfg.FrameTimeout,
		chromedp.Evaluate(fmt.Sprintf("animation.goToAndStop(%d, true)", frame), nil),
		chromedp.Sleep(s.cfg.SettleDelay),
	)
}

func (s *Session) CaptureRoot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, s.cfg.FrameTimeout, chromedp.Screenshot("#root", &buf, chromedp.ByID)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *Session) Close() error {
	s.cancel()
	if err := os.Remove(s.pagePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
