// Command watch scans a directory of deck screenshots, runs the extraction
// pipeline over each, and writes the deck next to the screenshot as an Arena
// import file. With -watch it stays running and picks up new files.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"deckscan/pkg/config"
	"deckscan/pkg/export"
	"deckscan/pkg/ocr"

	"github.com/fsnotify/fsnotify"
)

var verbose bool

func main() {
	dirFlag := flag.String("dir", "", "directory to scan for deck screenshots (default from config watch_dir)")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	format := flag.String("format", "mtga", "export format for result files")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("DECKSCAN_CONFIG"))
	if err != nil {
		log.Fatal("config: ", err)
	}
	dir := *dirFlag
	if dir == "" {
		dir = cfg.WatchDir
	}
	if dir == "" {
		log.Fatal("no directory: pass -dir or set DECKSCAN_WATCH_DIR")
	}

	profiles, err := ocr.LoadProfiles(cfg.ZoneProfiles)
	if err != nil {
		log.Fatal("zone profiles: ", err)
	}
	p := &processor{
		pipeline: ocr.NewPipeline(ocr.PipelineOptions{
			Profiles:     profiles,
			VisionAPIKey: cfg.VisionAPIKey,
			Budget:       ocr.NewRateBudget(cfg.VisionPerMinute, cfg.VisionBurst),
		}),
		dir:    dir,
		format: export.Format(*format),
	}

	files := listImageFiles(dir)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	if *watch {
		fileCh := make(chan string, 256)
		go func() {
			for _, f := range files {
				fileCh <- f
			}
		}()
		go runWorkerPool(p, fileCh, effectiveWorkers(*workers))
		if err := watchDirectory(dir, fileCh); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
		return
	}
	fileCh := make(chan string, len(files))
	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)
	runWorkerPool(p, fileCh, effectiveWorkers(*workers))
}

type processor struct {
	pipeline *ocr.Pipeline
	dir      string
	format   export.Format
}

// process runs one screenshot through the pipeline and writes the deck file.
// A deck file that already exists means the screenshot was handled on a
// previous run.
func (p *processor) process(name string) {
	src := filepath.Join(p.dir, name)
	dst := deckFileName(src)
	if _, err := os.Stat(dst); err == nil {
		logV("SKIP deck file exists %s", name)
		return
	}
	data, err := os.ReadFile(src)
	if err != nil {
		log.Printf("read %s: %v", name, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	result, err := p.pipeline.Process(ctx, data)
	if err != nil {
		log.Printf("process %s: %v", name, err)
		return
	}
	text, err := export.Render(result.Cards, p.format)
	if err != nil {
		log.Printf("render %s: %v", name, err)
		return
	}
	if err := os.WriteFile(dst, []byte(text), 0644); err != nil {
		log.Printf("write %s: %v", dst, err)
		return
	}
	log.Printf("DECK %s cards=%d guaranteed=%t confidence=%.2f", name,
		len(result.Cards), result.Guaranteed, result.Confidence)
	for _, w := range result.Warnings {
		logV("  warn %s: %s", name, w)
	}
}

// deckFileName is the screenshot path with the image extension swapped for
// .deck.txt.
func deckFileName(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + ".deck.txt"
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	if strings.HasSuffix(name, ".deck.txt") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

// runWorkerPool drains fileCh with a fixed worker count. Returns when the
// channel closes.
func runWorkerPool(p *processor, fileCh <-chan string, workers int) {
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				p.process(name)
			}
		}()
	}
	wg.Wait()
}

// watchDirectory feeds new screenshot names into fileCh, debounced so files
// still being written are not processed half-copied.
func watchDirectory(dir string, fileCh chan<- string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	// simple debounce map of pending files
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				close(fileCh)
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				name := filepath.Base(ev.Name)
				if !isSupportedExt(name) {
					continue
				}
				pending[name] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					fileCh <- name
					delete(pending, name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				close(fileCh)
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}
