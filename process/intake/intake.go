// Package intake files raw card photos dropped into a watch folder: each new
// image is OCR'd, matched against the toy-number pattern and moved into an
// organized per-toy directory (or the unmatched folder), with a CSV log line
// per processed file.
package intake

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rcm-webdev/the-shop/pkg/inference"
	"github.com/rcm-webdev/the-shop/pkg/vision"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// Recognizer extracts a toy number from a card image on disk.
type Recognizer func(path string) (string, bool)

// Processor files one image at a time. Recognize is swappable for tests.
type Processor struct {
	OutputDir    string
	UnmatchedDir string
	LogPath      string
	Recognize    Recognizer
}

// NewProcessor wires the default OCR-backed recognizer.
func NewProcessor(outputDir, unmatchedDir, logPath string) *Processor {
	return &Processor{
		OutputDir:    outputDir,
		UnmatchedDir: unmatchedDir,
		LogPath:      logPath,
		Recognize:    recognizeToyNumber,
	}
}

func recognizeToyNumber(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("intake: read %s: %v", path, err)
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	env := vision.Recognize(ctx, data)
	for f := range inference.Fragments(env) {
		if toy, ok := inference.MatchToyNumber(f.Text); ok {
			return toy, true
		}
	}
	return "", false
}

// Process files a single image. Returns the destination path, or "" when
// the file was skipped (not an image, or already processed).
func (p *Processor) Process(path string) (string, error) {
	name := filepath.Base(path)
	if !imageExts[strings.ToLower(filepath.Ext(name))] {
		return "", nil
	}

	toy, matched := p.Recognize(path)
	identifier := toy
	if !matched {
		identifier = strings.TrimSuffix(name, filepath.Ext(name))
	}
	done, err := p.alreadyProcessed(identifier)
	if err != nil {
		return "", err
	}
	if done {
		log.Printf("intake: duplicate %s (%s), skipping", name, identifier)
		return "", nil
	}

	destDir := p.UnmatchedDir
	status := "Unmatched"
	if matched {
		destDir = filepath.Join(p.OutputDir, toy)
		status = "Processed"
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("intake: mkdir %s: %w", destDir, err)
	}
	dest := filepath.Join(destDir, name)
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("intake: move %s: %w", name, err)
	}
	if err := p.appendLog(dest, name, identifier, status); err != nil {
		log.Printf("intake: log write failed: %v", err)
	}
	return dest, nil
}

const logHeader = "Timestamp,File Path,Original Name,Identifier,Status\n"

func (p *Processor) appendLog(dest, original, identifier, status string) error {
	f, err := os.OpenFile(p.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if st, err := f.Stat(); err == nil && st.Size() == 0 {
		if _, err := f.WriteString(logHeader); err != nil {
			return err
		}
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	_, err = fmt.Fprintf(f, "%s,%s,%s,%s,%s\n", ts, dest, original, identifier, status)
	return err
}

// alreadyProcessed scans the CSV log for a prior Processed entry with the
// same identifier.
func (p *Processor) alreadyProcessed(identifier string) (bool, error) {
	data, err := os.ReadFile(p.LogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.Split(strings.TrimSpace(line), ",")
		if len(parts) >= 5 && parts[3] == identifier && strings.HasPrefix(parts[4], "Processed") {
			return true, nil
		}
	}
	return false, nil
}

// Watch processes files already present in dir, then blocks watching for new
// ones until ctx is done.
func Watch(ctx context.Context, dir string, p *Processor) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("intake: read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := p.Process(filepath.Join(dir, e.Name())); err != nil {
			log.Printf("intake: %v", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("intake: watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("intake: watch %s: %w", dir, err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			// Give the copy a moment to finish before reading it.
			time.Sleep(500 * time.Millisecond)
			if _, err := p.Process(ev.Name); err != nil {
				log.Printf("intake: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("intake: watcher error: %v", err)
		}
	}
}
