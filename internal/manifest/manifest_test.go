package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/lottie2gif/internal/anim"
)

func TestWriteRead(t *testing.T) {
	q := 2
	m := &Manifest{
		Formats: []string{"gif"},
		Jobs: []Job{
			{Input: "a.json", Output: "out/a.gif"},
			{Input: "b.tgs", Formats: []string{"webp", "apng"}, Quality: &q},
		},
	}
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := Write(m, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, got.Version)
	}
	if len(got.Jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(got.Jobs))
	}
	if got.Jobs[1].Quality == nil || *got.Jobs[1].Quality != 2 {
		t.Errorf("Quality override lost: %v", got.Jobs[1].Quality)
	}
	if got.Jobs[0].Quality != nil {
		t.Errorf("Job without quality should stay nil")
	}
}

func TestReadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	os.WriteFile(path, []byte("version: \"1.0\"\njobs: []\n"), 0644)
	if _, err := Read(path); err == nil {
		t.Error("Expected error for manifest without jobs")
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	os.WriteFile(path, []byte(`
version: "1.0"
formats: [gif]
jobs:
  - input: a.json
    output: out/a.gif
  - input: /abs/b.tgs
    formats: [all]
`), 0644)

	m, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	jobs, err := m.Resolve("output", []anim.Format{anim.WebP})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if jobs[0].Input != filepath.Join(dir, "a.json") || jobs[0].Output != filepath.Join(dir, "out/a.gif") {
		t.Errorf("Relative paths not resolved: %+v", jobs[0])
	}
	if len(jobs[0].Formats) != 1 || jobs[0].Formats[0] != anim.GIF {
		t.Errorf("Expected manifest formats [gif], got %v", jobs[0].Formats)
	}

	if jobs[1].Input != "/abs/b.tgs" {
		t.Errorf("Absolute input changed: %s", jobs[1].Input)
	}
	if len(jobs[1].Formats) != 2 {
		t.Errorf("Expected gif+webp, got %v", jobs[1].Formats)
	}
	if !strings.HasPrefix(jobs[1].Output, filepath.Join("output", "b_")) || filepath.Ext(jobs[1].Output) != "" {
		t.Errorf("Unexpected default output %s", jobs[1].Output)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		m    Manifest
	}{
		{"no input", Manifest{Jobs: []Job{{Output: "x.gif"}}}},
		{"bad job format", Manifest{Jobs: []Job{{Input: "a.json", Formats: []string{"avi"}}}}},
		{"bad common format", Manifest{Formats: []string{"mov"}, Jobs: []Job{{Input: "a.json"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.m.Resolve("output", []anim.Format{anim.GIF}); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNamer(t *testing.T) {
	n := NewNamer("output")
	single := n.Next("in/wave.json", []anim.Format{anim.APNG})
	if filepath.Ext(single) != ".png" {
		t.Errorf("Single format should carry its extension: %s", single)
	}
	multi := NewNamer("output").Next("in/wave.json", []anim.Format{anim.GIF, anim.WebP})
	if filepath.Ext(multi) != "" {
		t.Errorf("Several formats should leave the name bare: %s", multi)
	}

	// Same base name from different folders within one batch.
	n = NewNamer("output")
	seen := make(map[string]bool)
	for _, in := range []string{"a/sticker.tgs", "b/sticker.tgs", "c/sticker.json"} {
		out := n.Next(in, []anim.Format{anim.GIF})
		if seen[out] {
			t.Errorf("Duplicate output %s for %s", out, in)
		}
		seen[out] = true
		if filepath.Dir(out) != "output" || filepath.Ext(out) != ".gif" {
			t.Errorf("Unexpected output %s", out)
		}
	}
}

func TestResolveUniqueOutputs(t *testing.T) {
	m := &Manifest{Jobs: []Job{
		{Input: "/x/sticker.tgs"},
		{Input: "/y/sticker.tgs"},
	}}
	jobs, err := m.Resolve("output", []anim.Format{anim.GIF})
	if err != nil {
		t.Fatal(err)
	}
	if jobs[0].Output == jobs[1].Output {
		t.Errorf("Both jobs write to %s", jobs[0].Output)
	}
}

func TestFromDir(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.tgs", "a.json", "skip.txt"} {
		os.WriteFile(filepath.Join(dir, n), []byte("{}"), 0644)
	}
	m, err := FromDir(dir, []string{"gif"})
	if err != nil {
		t.Fatalf("FromDir failed: %v", err)
	}
	if len(m.Jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(m.Jobs))
	}
	if filepath.Base(m.Jobs[0].Input) != "a.json" || !filepath.IsAbs(m.Jobs[0].Input) {
		t.Errorf("Unexpected first input %s", m.Jobs[0].Input)
	}
}

func TestGeneratePath(t *testing.T) {
	path := GeneratePath("manifests")
	if !strings.HasPrefix(filepath.Base(path), "batch_") || filepath.Ext(path) != ".yaml" {
		t.Errorf("Unexpected manifest path %s", path)
	}
	if filepath.Dir(path) != "manifests" {
		t.Errorf("Path should be in manifests: %s", path)
	}
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	files := []string{"batch_1.yaml", "batch_2.yml", "batch_3.yaml"}
	for i, f := range files {
		p := filepath.Join(dir, f)
		os.WriteFile(p, []byte("jobs: []"), 0644)
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(p, modTime, modTime)
	}

	latest, err := FindLatest(dir)
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if filepath.Base(latest) != "batch_3.yaml" {
		t.Errorf("Expected batch_3.yaml, got %s", latest)
	}

	if _, err := FindLatest(t.TempDir()); err == nil {
		t.Error("Expected error for empty directory")
	}
}
