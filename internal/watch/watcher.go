package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc is called each time the watcher triggers a re-run. It returns
// the run outcome for the status line.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult summarizes a single batch run for status reporting.
type RunResult struct {
	Configurations int
	Succeeded      int
	Failed         int
	Warnings       int
}

// Options configures the watch behaviour.
type Options struct {
	// Inputs are the files and directories to watch. Directories are
	// watched recursively.
	Inputs []string

	// Extensions limits directory events to matching files (with leading
	// dot, lowercase). Empty means every file counts.
	Extensions []string

	// Debounce is the quiet period before triggering a re-run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, input := range opts.Inputs {
		abs, absErr := filepath.Abs(input)
		if absErr != nil {
			return fmt.Errorf("resolving input %q: %w", input, absErr)
		}

		info, statErr := os.Stat(abs)
		if statErr != nil {
			return fmt.Errorf("watching input %q: %w", abs, statErr)
		}

		if info.IsDir() {
			if err := addRecursive(watcher, abs); err != nil {
				return fmt.Errorf("watching directory %q: %w", abs, err)
			}

			continue
		}

		// Watch the parent directory so editors that replace files via
		// rename keep triggering events.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watching input %q: %w", abs, err)
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %d input(s) (debounce=%s)\n", len(opts.Inputs), opts.Debounce)

	// Initial run.
	doRun(sigCtx, opts, runFn, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		doRun(sigCtx, opts, runFn, path)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, opts.Extensions) {
				continue
			}

			// Watch newly created subdirectories too.
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name)
				}
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single batch run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	status := "OK"
	if result.Failed > 0 {
		status = "FAILED"
	}

	fmt.Fprintf(opts.Out, "[%s] %s → %s (%d configurations, %d succeeded, %d failed, %d warnings)\n",
		now, trigger, status, result.Configurations, result.Succeeded, result.Failed, result.Warnings)
}

// addRecursive walks root and adds all directories to the watcher.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip hidden directories (e.g., .git).
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}

			return watcher.Add(path)
		}

		return nil
	})
}

// isRelevant filters out events on files that are not asset inputs.
func isRelevant(event fsnotify.Event, extensions []string) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	// Ignore editor temporary files and hidden files.
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	if len(extensions) == 0 {
		return true
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}

	return false
}
