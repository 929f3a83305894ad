package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/lottie2gif/internal/anim"
	"github.com/ivlev/lottie2gif/internal/manifest"
)

const manifestsDir = "manifests"

var manifestPath string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Пакетная конвертация по YAML-манифесту",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := manifestPath
		if path == "" {
			latest, err := manifest.FindLatest(manifestsDir)
			if err != nil {
				return fmt.Errorf("манифест не указан (-m): %w", err)
			}
			path = latest
		}
		fmt.Printf("%s Используется манифест: %s\n", infoMark("[*]"), path)

		m, err := manifest.Read(path)
		if err != nil {
			return err
		}
		defaults, err := anim.ParseFormats(cfg.Formats)
		if err != nil {
			return err
		}
		outDir := cfg.OutputDir
		if flags.output != "" {
			outDir = flags.output
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
		jobs, err := m.Resolve(outDir, defaults)
		if err != nil {
			return err
		}
		return runJobs(cmd.Context(), jobs)
	},
}

var manifestFormats []string

var manifestCmd = &cobra.Command{
	Use:   "manifest <папка>",
	Short: "Создать манифест из папки с Lottie-файлами",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := anim.ParseFormats(manifestFormats); err != nil {
			return err
		}
		m, err := manifest.FromDir(args[0], manifestFormats)
		if err != nil {
			return err
		}

		out := flags.output
		if out == "" {
			out = manifest.GeneratePath(manifestsDir)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		if err := manifest.Write(m, out); err != nil {
			return err
		}
		fmt.Printf("%s Манифест на %d файлов сохранён: %s\n", okMark("[+++]"), len(m.Jobs), out)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "YAML-манифест (по умолчанию: самый свежий в manifests/)")
	manifestCmd.Flags().StringSliceVar(&manifestFormats, "formats", []string{"gif", "webp"}, "Форматы по умолчанию: gif, webp, apng, all")
	rootCmd.AddCommand(batchCmd, manifestCmd)
}
