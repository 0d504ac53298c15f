package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Writer writes generated artifacts to disk with parallel execution.
// Go sources are formatted with goimports before they are written.
type Writer struct {
	outDir  string
	workers int

	mu      sync.Mutex
	files   map[string]fileTask
	metrics *WriterMetrics
}

// WriterMetrics tracks generation performance.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
	FormatTime     int64 // nanoseconds
	WriteTime      int64 // nanoseconds
}

// fileTask represents a single file generation task.
type fileTask struct {
	name string    // output file path (relative to outDir)
	buf  []byte    // raw content
	jf   *jen.File // jennifer file, rendered at flush time
}

// NewWriter creates a new writer rooted at outDir.
func NewWriter(outDir string) *Writer {
	return &Writer{
		outDir:  outDir,
		workers: runtime.GOMAXPROCS(0),
		files:   make(map[string]fileTask),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns the generation metrics.
func (w *Writer) Metrics() *WriterMetrics {
	return w.metrics
}

// WriteFile queues a file with the given content. Name is relative to the
// output directory. A later call with the same name replaces the content.
func (w *Writer) WriteFile(name string, buf []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[name] = fileTask{name: name, buf: buf}
}

// WriteJen queues a jennifer file.
func (w *Writer) WriteJen(name string, f *jen.File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[name] = fileTask{name: name, jf: f}
}

// Files returns the queued file names in sorted order.
func (w *Writer) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.files))
	for name := range w.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flush writes all queued files in parallel.
func (w *Writer) Flush(ctx context.Context) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	w.mu.Lock()
	files := make([]fileTask, 0, len(w.files))
	for _, f := range w.files {
		files = append(files, f)
	}
	w.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

// writeFile renders, formats and writes a single file.
func (w *Writer) writeFile(f fileTask) error {
	fullPath := filepath.Join(w.outDir, f.name)
	buf := f.buf
	if f.jf != nil {
		var b bytes.Buffer
		if err := f.jf.Render(&b); err != nil {
			return NewGenerationError("write", f.name, "render", err)
		}
		buf = b.Bytes()
	}
	if strings.HasSuffix(f.name, ".go") {
		start := time.Now()
		formatted, err := imports.Process(fullPath, buf, nil)
		if err != nil {
			// Write unformatted file for debugging (errors intentionally ignored as we're already in error state)
			debugPath := fullPath + ".error"
			_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
			_ = os.WriteFile(debugPath, buf, 0o644)
			return NewGenerationError("write", f.name, fmt.Sprintf("format (unformatted written to %s)", debugPath), err)
		}
		buf = formatted
		w.addTime(&w.metrics.FormatTime, start)
	}

	start := time.Now()
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return NewGenerationError("write", f.name, "create directory", err)
	}
	if err := os.WriteFile(fullPath, buf, 0o644); err != nil {
		return NewGenerationError("write", f.name, "write file", err)
	}
	w.addTime(&w.metrics.WriteTime, start)

	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(buf))
	w.mu.Unlock()
	return nil
}

func (w *Writer) addTime(field *int64, start time.Time) {
	w.mu.Lock()
	*field += time.Since(start).Nanoseconds()
	w.mu.Unlock()
}
