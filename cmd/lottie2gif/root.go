package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ivlev/lottie2gif/internal/config"
)

// Version is the application version.
const Version = "0.3.0"

var (
	infoMark = color.New(color.FgCyan).SprintFunc()
	okMark   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
)

// cliFlags are the persistent flags. They override the config file only when
// given explicitly.
type cliFlags struct {
	configPath   string
	dumpConfig   string
	quality      int
	full         bool
	output       string
	workers      int
	settle       time.Duration
	frameTimeout time.Duration
	chrome       string
	player       string
	scale        float64
	progress     bool
	stats        bool
	debug        bool
}

var (
	flags cliFlags
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "lottie2gif",
	Short:         "Конвертер Lottie/TGS в GIF, WebP и APNG через headless Chrome",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flags.configPath != "" {
			cfg, err = config.Load(flags.configPath)
			if err != nil {
				return err
			}
			fmt.Printf("%s Конфигурация: %s\n", infoMark("[*]"), flags.configPath)
		} else {
			cfg = config.Default()
		}
		applyFlags(cmd, cfg)
		cfg.BuildVersion = Version
		if err := cfg.Validate(); err != nil {
			return err
		}

		if flags.dumpConfig != "" {
			if err := cfg.Write(flags.dumpConfig); err != nil {
				return err
			}
			fmt.Printf("%s Конфигурация сохранена: %s\n", okMark("[+++]"), flags.dumpConfig)
		}
		return nil
	},
}

func applyFlags(cmd *cobra.Command, c *config.Config) {
	changed := cmd.Flags().Changed
	if changed("quality") {
		c.Quality = flags.quality
		// Явно заданное качество имеет смысл только с выборочным захватом.
		if !changed("full-framerate") {
			c.FullFramerate = false
		}
	}
	if changed("full-framerate") {
		c.FullFramerate = flags.full
	}
	if changed("workers") {
		c.Workers = flags.workers
	}
	if changed("settle") {
		c.SettleDelay = flags.settle
	}
	if changed("frame-timeout") {
		c.FrameTimeout = flags.frameTimeout
	}
	if changed("chrome") {
		c.ChromePath = flags.chrome
	}
	if changed("player") {
		c.PlayerScript = flags.player
	}
	if changed("scale") {
		c.Scale = flags.scale
	}
	if changed("progress") {
		c.Progress = flags.progress
	}
	if changed("stats") {
		c.ShowStats = flags.stats
	}
	if changed("debug") {
		c.Debug = flags.debug
	}
}

func init() {
	def := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML-файл конфигурации")
	pf.StringVar(&flags.dumpConfig, "dump-config", "", "Сохранить итоговую конфигурацию в файл")
	pf.IntVarP(&flags.quality, "quality", "q", def.Quality, "Качество 0-3 (плотность выборки кадров), другое значение = каждый второй кадр")
	pf.BoolVar(&flags.full, "full-framerate", def.FullFramerate, "Захватывать каждый кадр")
	pf.StringVarP(&flags.output, "output", "o", "", "Выходной файл (один вход) или папка (несколько входов)")
	pf.IntVar(&flags.workers, "workers", def.Workers, "Параллельные вкладки Chrome (0 = по ресурсам машины)")
	pf.DurationVar(&flags.settle, "settle", def.SettleDelay, "Пауза после перехода к кадру")
	pf.DurationVar(&flags.frameTimeout, "frame-timeout", def.FrameTimeout, "Лимит времени на один кадр")
	pf.StringVar(&flags.chrome, "chrome", "", "Путь к Chrome/Chromium")
	pf.StringVar(&flags.player, "player", def.PlayerScript, "URL или локальный путь к lottie-web")
	pf.Float64Var(&flags.scale, "scale", def.Scale, "Масштаб выходной анимации")
	pf.BoolVar(&flags.progress, "progress", false, "Показывать прогресс захвата")
	pf.BoolVar(&flags.stats, "stats", false, "Отчёт о производительности")
	pf.BoolVar(&flags.debug, "debug", false, "Логи Chrome")
}
