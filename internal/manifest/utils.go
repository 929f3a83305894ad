package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ivlev/lottie2gif/internal/anim"
	"github.com/ivlev/lottie2gif/internal/system"
)

// GeneratePath creates a timestamped manifest filename in dir.
func GeneratePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("batch_%s.yaml", timestamp))
}

// FindLatest finds the most recent manifest in dir.
func FindLatest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read manifests directory: %w", err)
	}

	var manifests []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			manifests = append(manifests, filepath.Join(dir, name))
		}
	}
	if len(manifests) == 0 {
		return "", fmt.Errorf("no manifest files found in %s", dir)
	}

	sort.Slice(manifests, func(i, j int) bool {
		infoI, _ := os.Stat(manifests[i])
		infoJ, _ := os.Stat(manifests[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})
	return manifests[0], nil
}

// withExt appends the extension of a single format. Several formats get
// theirs from anim.OutputPaths.
func withExt(name string, formats []anim.Format) string {
	if len(formats) == 1 {
		return name + "." + formats[0].Ext()
	}
	return name
}

// Namer hands out the timestamped default destinations of one batch. Inputs
// sharing a base name get _2, _3 and so on, so no output overwrites another.
type Namer struct {
	dir  string
	used map[string]bool
}

func NewNamer(outputDir string) *Namer {
	return &Namer{dir: outputDir, used: make(map[string]bool)}
}

// Next returns the destination for input, unique among the names given out
// so far.
func (n *Namer) Next(input string, formats []anim.Format) string {
	base := system.OutputName(n.dir, input)
	name := base
	for i := 2; n.used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	n.used[name] = true
	return withExt(name, formats)
}

// FromDir builds a manifest with one job per Lottie file in dir. Inputs are
// absolute so the manifest can be saved anywhere; outputs are left to the
// converter.
func FromDir(dir string, formats []string) (*Manifest, error) {
	files, err := system.FindLottieFiles(dir)
	if err != nil {
		return nil, err
	}
	m := &Manifest{Version: Version, Formats: formats}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		m.Jobs = append(m.Jobs, Job{Input: abs})
	}
	return m, nil
}
