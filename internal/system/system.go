package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// LottieExtensions are the input files picked up from directories.
var LottieExtensions = []string{".lottie.json", ".json", ".tgs"}

// sessionBudget is the memory one Chrome tab with a large animation needs.
const sessionBudget = 300 << 20

// InitResourceLimits поднимает лимит открытых файлов: Chrome держит много
// дескрипторов, а кадры пишутся в файлы.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}
	if rLimit.Cur >= 4096 {
		return
	}

	rLimit.Cur = 4096
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	}
}

// IsLottieFile reports whether the name has one of LottieExtensions.
func IsLottieFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range LottieExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FindLottieFiles lists Lottie files in dir, sorted by name.
func FindLottieFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsLottieFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("в папке %s не найдено Lottie-файлов", dir)
	}
	return files, nil
}

// FindLatestLottie returns the most recently modified Lottie file in dir.
func FindLatestLottie(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time
	for _, f := range files {
		if f.IsDir() || !IsLottieFile(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено Lottie-файлов", dir)
	}
	return latestFile, nil
}

// OutputName builds the default destination name (without extension) for an
// input: <dir>/<name>_<timestamp>.
func OutputName(dir, input string) string {
	base := filepath.Base(input)
	lower := strings.ToLower(base)
	for _, ext := range LottieExtensions {
		if strings.HasSuffix(lower, ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	clean := strings.ReplaceAll(base, " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("%s_%s", clean, timestamp))
}

// CheckWebPEncoder checks that ffmpeg exists and was built with libwebp_anim.
func CheckWebPEncoder(ffmpegPath string) error {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	out, err := exec.Command(ffmpegPath, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg недоступен (%s): %w", ffmpegPath, err)
	}
	if !strings.Contains(string(out), "libwebp_anim") {
		return fmt.Errorf("ffmpeg собран без libwebp_anim")
	}
	return nil
}

// RecommendedWorkers sizes the session pool: one Chrome tab per physical core,
// limited by available memory, at least one.
func RecommendedWorkers() int {
	cores, err := cpu.Counts(false)
	if err != nil || cores <= 0 {
		cores = runtime.NumCPU()
	}
	workers := cores

	if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
		byMem := int(vm.Available / sessionBudget)
		if byMem < workers {
			workers = byMem
		}
	}
	return max(1, workers)
}

// HostSummary is a one-line description of the machine for the stats report.
func HostSummary() string {
	cores, _ := cpu.Counts(true)
	model := "unknown cpu"
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		model = infos[0].ModelName
	}
	var availMB uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		availMB = vm.Available >> 20
	}
	return fmt.Sprintf("%s, %d threads, %d MB free", model, cores, availMB)
}
