package preprocess

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jaki95/eventseq/internal/progress"
)

// Summary tallies a streaming run.
type Summary struct {
	Total int `json:"total"`
	// Processed files produced output in this run.
	Processed int `json:"processed"`
	// Skipped files already had their output from an earlier run.
	Skipped  int         `json:"skipped"`
	Failed   int         `json:"failed"`
	Failures []FileError `json:"failures,omitempty"`
}

// FileError records why one file was skipped.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// StreamOptions configures how a streamer walks its files.
type StreamOptions struct {
	// Workers bounds the number of files handled concurrently.
	Workers int
	Tracker *progress.ProgressTracker
	// Output receives the progress bar; nil means stdout.
	Output io.Writer
}

type outcome int

const (
	processed outcome = iota
	skipped
)

type fileFunc func(ctx context.Context, path string) (outcome, error)

// run applies fn to every file with at most opts.Workers in flight. A failing
// file is logged and counted; the run goes on. Cancelling ctx stops
// scheduling new files.
func run(ctx context.Context, files []string, description string, opts StreamOptions, fn fileFunc) (*Summary, error) {
	workers := max(opts.Workers, 1)
	out := opts.Output
	if out == nil {
		out = ansi.NewAnsiStdout()
	}

	bar := progressbar.NewOptions(
		len(files),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
	)

	summary := &Summary{Total: len(files)}
	var mu sync.Mutex
	if opts.Tracker != nil {
		opts.Tracker.UpdateProgress(progress.StageStreaming, 0, description, nil)
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

loop:
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(f string) {
			defer func() {
				<-semaphore
				bar.Add(1)
				wg.Done()
			}()

			res, err := fn(ctx, f)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				slog.Warn("skipping file", "file", f, "error", err)
				summary.Failed++
				summary.Failures = append(summary.Failures, FileError{Path: f, Error: err.Error()})
			case res == skipped:
				summary.Skipped++
			default:
				summary.Processed++
			}
			if opts.Tracker != nil {
				opts.Tracker.UpdateFileProgress(progress.FileDetails{
					CurrentFile:    f,
					TotalFiles:     summary.Total,
					ProcessedFiles: summary.Processed,
					SkippedFiles:   summary.Skipped,
					FailedFiles:    summary.Failed,
				})
			}
		}(f)
	}

	wg.Wait()
	bar.Finish()
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Path < summary.Failures[j].Path
	})

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	slog.Info("streaming finished",
		"total", summary.Total,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}
