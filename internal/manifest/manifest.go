// Package manifest describes a batch as a YAML file: which documents to
// convert, where to put them and in which formats.
package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/ivlev/lottie2gif/internal/anim"
	"github.com/ivlev/lottie2gif/internal/engine"
)

const Version = "1.0"

// Manifest is a batch description.
type Manifest struct {
	Version string   `yaml:"version"`
	Formats []string `yaml:"formats,omitempty"` // defaults for every job
	Jobs    []Job    `yaml:"jobs"`

	path string
}

// Job is one document. Relative paths are resolved against the manifest's
// directory.
type Job struct {
	Input   string   `yaml:"input"`
	Output  string   `yaml:"output,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
	Quality *int     `yaml:"quality,omitempty"`
}

// Resolve turns the manifest into engine jobs. Jobs without an output get a
// timestamped name in outputDir, unique within the batch; formats fall back
// to the manifest's, then to defaults.
func (m *Manifest) Resolve(outputDir string, defaults []anim.Format) ([]engine.Job, error) {
	base := ""
	if m.path != "" {
		base = filepath.Dir(m.path)
	}
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || base == "" {
			return p
		}
		return filepath.Join(base, p)
	}

	common := defaults
	if len(m.Formats) > 0 {
		f, err := anim.ParseFormats(m.Formats)
		if err != nil {
			return nil, err
		}
		common = f
	}

	names := NewNamer(outputDir)
	jobs := make([]engine.Job, 0, len(m.Jobs))
	for i, j := range m.Jobs {
		if j.Input == "" {
			return nil, fmt.Errorf("задание %d: не указан input", i+1)
		}
		formats := common
		if len(j.Formats) > 0 {
			f, err := anim.ParseFormats(j.Formats)
			if err != nil {
				return nil, fmt.Errorf("задание %d: %w", i+1, err)
			}
			formats = f
		}
		input := resolve(j.Input)
		output := resolve(j.Output)
		if output == "" {
			output = names.Next(input, formats)
		}
		jobs = append(jobs, engine.Job{
			Input:   input,
			Output:  output,
			Formats: formats,
			Quality: j.Quality,
		})
	}
	return jobs, nil
}
