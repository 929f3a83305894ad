package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceLifecycle(t *testing.T) {
	base := t.TempDir()
	ws, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if filepath.Dir(ws.Dir()) != base {
		t.Errorf("Workspace %s not under %s", ws.Dir(), base)
	}

	if err := ws.WriteFrame(0, 12, []byte("png")); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if !ws.Has(0, 12) {
		t.Error("Frame (0, 12) should exist")
	}
	if ws.Has(1, 12) || ws.Has(0, 13) {
		t.Error("Unwritten frames reported as present")
	}

	data, err := os.ReadFile(ws.FramePath(0, 12))
	if err != nil || string(data) != "png" {
		t.Errorf("Unexpected frame content %q (%v)", data, err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Errorf("Workspace still exists after Close: %v", err)
	}
	if ws.Has(0, 12) {
		t.Error("Frame reported after Close")
	}
	if err := ws.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}

func TestWorkspacesDoNotCollide(t *testing.T) {
	base := t.TempDir()
	a, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.ID() == b.ID() || a.Dir() == b.Dir() {
		t.Fatalf("Two batches share a workspace: %s", a.Dir())
	}
	if a.FramePath(0, 0) == b.FramePath(0, 0) {
		t.Error("Frame keys collide across batches")
	}
}

func TestFramePathKeys(t *testing.T) {
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	seen := map[string]bool{}
	for doc := 0; doc < 3; doc++ {
		for frame := 0; frame < 20; frame++ {
			p := ws.FramePath(doc, frame)
			if seen[p] {
				t.Fatalf("Duplicate key %s", p)
			}
			seen[p] = true
		}
	}
}
