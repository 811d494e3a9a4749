package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaki95/eventseq/config"
	"github.com/jaki95/eventseq/internal/dataset"
	"github.com/jaki95/eventseq/internal/progress"
	"github.com/jaki95/eventseq/internal/storage"
)

// SplitResult holds the files of each manifest.
type SplitResult struct {
	Train []string
	Val   []string
	Test  []string
}

// Split partitions clean_data/**/*.csv in listing order into train, val and
// test manifests: the first floor(train*n) files, the next floor(val*n) and
// the rest. Fractions not summing to 1 fail with a ConfigurationError.
// tracker may be nil.
func Split(store storage.Storage, fractions config.SplitConfig, tracker *progress.ProgressTracker) (*SplitResult, error) {
	if err := fractions.Validate(); err != nil {
		return nil, err
	}
	report := func(stage progress.Stage, pct float64, msg string) {
		if tracker != nil {
			tracker.UpdateProgress(stage, pct, msg, nil)
		}
	}
	report(progress.StageSplitting, 0, "Listing clean data")

	files, err := store.WalkFiles(storage.CleanDir, ".csv")
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &MissingFolderError{Path: storage.CleanDir}
	}
	if err != nil {
		return nil, err
	}

	n := len(files)
	nTrain := int(fractions.Train * float64(n))
	nVal := min(int(fractions.Val*float64(n)), n-nTrain)

	res := &SplitResult{
		Train: files[:nTrain],
		Val:   files[nTrain : nTrain+nVal],
		Test:  files[nTrain+nVal:],
	}

	manifests := []struct {
		name  string
		files []string
	}{
		{storage.TrainManifest, res.Train},
		{storage.ValManifest, res.Val},
		{storage.TestManifest, res.Test},
	}
	for i, m := range manifests {
		var buf bytes.Buffer
		if err := dataset.WriteManifest(&buf, m.files); err != nil {
			return nil, err
		}
		if err := writeAll(store, m.name, &buf); err != nil {
			return nil, fmt.Errorf("failed to write manifest: %w", err)
		}
		report(progress.StageSplitting, 100*float64(i+1)/float64(len(manifests)), "Wrote "+m.name)
	}
	report(progress.StageComplete, 100, "Split complete")

	slog.Info("split corpus", "train", len(res.Train), "val", len(res.Val), "test", len(res.Test))
	return res, nil
}
