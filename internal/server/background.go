package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jaki95/eventseq/internal/job"
	"github.com/jaki95/eventseq/internal/preprocess"
	"github.com/jaki95/eventseq/internal/progress"
)

// jobTimeout bounds a background job.
const jobTimeout = 6 * time.Hour

func (s *Server) newPreprocessJob(req job.PreprocessRequest) (preprocess.Streamer, *job.Status, context.Context, error) {
	cfg := *s.cfg
	if req.Kind != "" {
		cfg.Preprocess.Kind = req.Kind
	}
	cfg.Preprocess.Shuffle = cfg.Preprocess.Shuffle || req.Shuffle

	tracker := progress.NewProgressTracker()
	opts := preprocess.StreamOptions{
		Workers: job.ValidateWorkers(req.Workers),
		Tracker: tracker,
		Output:  io.Discard,
	}
	streamer, err := preprocess.FromConfig(&cfg, s.store, req.Pack, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	status, ctx := s.jobManager.CreateJob("preprocess", tracker)
	return streamer, status, ctx, nil
}

// runPreprocess streams the corpus and records the outcome on the job
func (s *Server) runPreprocess(ctx context.Context, jobID string, streamer preprocess.Streamer) {
	slog.Info("Starting background preprocessing", "jobId", jobID)

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	summary, err := streamer.Stream(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Warn("Job cancelled", "jobId", jobID)
	case err != nil:
		slog.Error("Job failed", "jobId", jobID, "error", err)
		s.jobManager.Fail(jobID, err)
	default:
		slog.Info("Job completed successfully", "jobId", jobID, "processed", summary.Processed, "failed", summary.Failed)
		if err := s.jobManager.Complete(jobID, summary); err != nil {
			slog.Warn("Job finished after it was closed", "jobId", jobID, "error", err)
		}
	}
}
