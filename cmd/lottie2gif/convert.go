package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ivlev/lottie2gif/internal/anim"
	"github.com/ivlev/lottie2gif/internal/config"
	"github.com/ivlev/lottie2gif/internal/engine"
	"github.com/ivlev/lottie2gif/internal/manifest"
	"github.com/ivlev/lottie2gif/internal/render"
	"github.com/ivlev/lottie2gif/internal/render/chrome"
	"github.com/ivlev/lottie2gif/internal/system"
)

// defaultInputDir is searched for the newest Lottie file when no input is given.
const defaultInputDir = "input/lottie"

func newConvertCmd(use, short string, formats ...anim.Format) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [файл или папка ...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := resolveInputs(args)
			if err != nil {
				return err
			}
			jobs, err := buildJobs(inputs, formats)
			if err != nil {
				return err
			}
			return runJobs(cmd.Context(), jobs)
		},
	}
}

// resolveInputs expands directories and falls back to the newest file in
// input/lottie/.
func resolveInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		if err := os.MkdirAll(defaultInputDir, 0755); err != nil {
			return nil, err
		}
		latest, err := system.FindLatestLottie(defaultInputDir)
		if err != nil {
			return nil, fmt.Errorf("%v. Положите .json или .tgs в %s/", err, defaultInputDir)
		}
		fmt.Printf("%s Выбран файл: %s\n", infoMark("[*]"), latest)
		return []string{latest}, nil
	}

	var inputs []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			inputs = append(inputs, a)
			continue
		}
		files, err := system.FindLottieFiles(a)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, files...)
	}
	return inputs, nil
}

// buildJobs names the outputs: -o is the file for a single input and the
// directory for several; without it timestamped names go to the output dir.
func buildJobs(inputs []string, formats []anim.Format) ([]engine.Job, error) {
	outDir := cfg.OutputDir
	single := ""
	if flags.output != "" {
		if len(inputs) == 1 {
			single = flags.output
		} else {
			outDir = flags.output
		}
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	names := manifest.NewNamer(outDir)
	jobs := make([]engine.Job, len(inputs))
	for i, in := range inputs {
		out := single
		if out == "" {
			out = names.Next(in, formats)
		}
		jobs[i] = engine.Job{Input: in, Output: out, Formats: formats}
	}
	return jobs, nil
}

func chromeEngine(c *config.Config, workDir string) render.Engine {
	return chrome.New(c, workDir)
}

// runJobs converts the jobs and prints a summary. Any failed document makes
// the command fail.
func runJobs(ctx context.Context, jobs []engine.Job) error {
	if needsWebP(jobs) {
		if err := system.CheckWebPEncoder(cfg.FFmpegPath); err != nil {
			return fmt.Errorf("WebP недоступен: %w", err)
		}
	}

	fmt.Println("--- [LOTTIE2GIF] ---")
	fmt.Printf("%s Документов: %d | Выборка: %s | Потоков: %d\n", infoMark("[*]"), len(jobs), samplingLabel(cfg), cfg.Workers)
	fmt.Println("--------------------")

	conv := engine.NewConverter(cfg, chromeEngine)
	if cfg.Progress {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Захват кадров"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
		defer bar.Finish()
		conv.Progress = bar
	}

	results, err := conv.Run(ctx, jobs)
	if err != nil {
		return err
	}

	var errs []error
	done, skipped := 0, 0
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
			fmt.Printf("%s Пропущен: %s\n", warnMark("[!]"), r.Job.Input)
		case r.Err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(r.Job.Input), r.Err))
			fmt.Printf("%s %s: %v\n", failMark("[-]"), r.Job.Input, r.Err)
		default:
			done++
		}
	}
	fmt.Printf("%s Готово: %d из %d (пропущено %d)\n", okMark("[+++]"), done, len(results), skipped)
	return errors.Join(errs...)
}

func needsWebP(jobs []engine.Job) bool {
	for _, j := range jobs {
		if slices.Contains(j.Formats, anim.WebP) {
			return true
		}
	}
	return false
}

func samplingLabel(c *config.Config) string {
	if c.FullFramerate {
		return "все кадры"
	}
	return fmt.Sprintf("качество %d", c.Quality)
}

func init() {
	rootCmd.AddCommand(
		newConvertCmd("all", "GIF и WebP", anim.GIF, anim.WebP),
		newConvertCmd("gif", "Только GIF", anim.GIF),
		newConvertCmd("webp", "Только WebP (нужен ffmpeg с libwebp_anim)", anim.WebP),
		newConvertCmd("apng", "Анимированный PNG", anim.APNG),
	)
}
