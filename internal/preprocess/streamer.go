package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/jaki95/eventseq/internal/dataset"
	"github.com/jaki95/eventseq/internal/domain"
	"github.com/jaki95/eventseq/internal/progress"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/transform"
)

// Streamer turns a raw corpus into clean data.
type Streamer interface {
	Stream(ctx context.Context) (*Summary, error)
}

// EventStreamer converts raw songs into token files under clean_data/, one
// line per track. Songs whose output already exists are skipped so an
// interrupted run can be resumed.
type EventStreamer struct {
	store    storage.Storage
	loader   Loader
	pipeline *transform.Pipeline
	opts     StreamOptions
}

// NewEventStreamer creates a streamer; a nil pipeline writes songs as loaded.
func NewEventStreamer(store storage.Storage, loader Loader, p *transform.Pipeline, opts StreamOptions) *EventStreamer {
	return &EventStreamer{store: store, loader: loader, pipeline: p, opts: opts}
}

func (s *EventStreamer) Stream(ctx context.Context) (*Summary, error) {
	if s.opts.Tracker != nil {
		s.opts.Tracker.UpdateProgress(progress.StageLoading, 0, "Listing raw files", nil)
	}
	files, err := s.loader.Files(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.MkdirAll(storage.CleanDir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", storage.CleanDir, err)
	}

	return run(ctx, files, "[cyan][1/1][reset] Streaming songs...", s.opts, s.streamFile)
}

func (s *EventStreamer) streamFile(ctx context.Context, p string) (outcome, error) {
	out := storage.CleanPath(p, ".csv")
	if s.store.FileExists(out) {
		return skipped, nil
	}

	content, err := s.loader.Read(ctx, p)
	if err != nil {
		return processed, err
	}
	if content.Song == nil {
		return processed, fmt.Errorf("%s: loader returned no song", p)
	}

	var form domain.Form = content.Song.Tracks
	if s.pipeline != nil {
		if form, err = s.pipeline.Apply(form); err != nil {
			return processed, err
		}
	}

	var buf bytes.Buffer
	if err := dataset.WriteSong(&buf, form); err != nil {
		return processed, err
	}
	return processed, writeAll(s.store, out, &buf)
}

// writeAll copies a fully encoded file to p.
func writeAll(store storage.Storage, p string, r io.Reader) error {
	w, err := store.GetWriter(p)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", p, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", p, err)
	}
	return nil
}
