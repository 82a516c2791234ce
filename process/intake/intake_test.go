package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestProcessor(t *testing.T, toy string, matched bool) (*Processor, string) {
	t.Helper()
	root := t.TempDir()
	p := &Processor{
		OutputDir:    filepath.Join(root, "organized"),
		UnmatchedDir: filepath.Join(root, "unmatched"),
		LogPath:      filepath.Join(root, "processed.csv"),
		Recognize:    func(string) (string, bool) { return toy, matched },
	}
	return p, root
}

func dropFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("img"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestProcessFilesByToyNumber(t *testing.T) {
	p, root := newTestProcessor(t, "GRX12", true)
	src := dropFile(t, root, "IMG_0001.jpg")
	dest, err := p.Process(src)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := filepath.Join(p.OutputDir, "GRX12", "IMG_0001.jpg")
	if dest != want {
		t.Fatalf("dest = %q want %q", dest, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("moved file missing: %v", err)
	}
	logData, err := os.ReadFile(p.LogPath)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(string(logData), "GRX12,Processed") {
		t.Fatalf("log = %q", logData)
	}
}

func TestProcessUnmatchedGoesToUnmatchedDir(t *testing.T) {
	p, root := newTestProcessor(t, "", false)
	src := dropFile(t, root, "IMG_0002.png")
	dest, err := p.Process(src)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if filepath.Dir(dest) != p.UnmatchedDir {
		t.Fatalf("dest = %q", dest)
	}
}

func TestProcessSkipsDuplicates(t *testing.T) {
	p, root := newTestProcessor(t, "HCT93", true)
	first := dropFile(t, root, "a.jpg")
	if _, err := p.Process(first); err != nil {
		t.Fatalf("first: %v", err)
	}
	second := dropFile(t, root, "b.jpg")
	dest, err := p.Process(second)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if dest != "" {
		t.Fatalf("expected duplicate skip, got %q", dest)
	}
	if _, err := os.Stat(second); err != nil {
		t.Fatalf("duplicate source should stay in place: %v", err)
	}
}

func TestProcessIgnoresNonImages(t *testing.T) {
	p, root := newTestProcessor(t, "GRX12", true)
	src := dropFile(t, root, "notes.txt")
	dest, err := p.Process(src)
	if err != nil || dest != "" {
		t.Fatalf("dest=%q err=%v", dest, err)
	}
}
