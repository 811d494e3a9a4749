// Package generate prompts a sequence model with songs from the test split and
// writes what it predicts as token and MIDI files.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/jaki95/eventseq/internal/batch"
	"github.com/jaki95/eventseq/internal/dataset"
	"github.com/jaki95/eventseq/internal/model"
	"github.com/jaki95/eventseq/internal/reconstruct"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/transform"
	"github.com/jaki95/eventseq/internal/vocab"
)

// Options configures a generation run.
type Options struct {
	Store     storage.Storage
	Vocab     *vocab.Vocabulary
	Generator model.Generator
	Exec      model.ExecContext
	// Pipeline configures the generate pack; its Vocab is set from Vocab.
	Pipeline transform.Options
	// Manifest defaults to the test split.
	Manifest     string
	MaxSamples   int
	PromptLength int
	OutputDir    string
	MIDI         reconstruct.MIDIOptions
}

// Report lists what a run produced.
type Report struct {
	Samples []string `json:"samples"`
	// Skipped counts songs whose prompt had no events.
	Skipped int `json:"skipped"`
}

// Run prompts the generator with one song at a time until MaxSamples
// samples were written or the manifest is exhausted.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Vocab == nil || opts.Generator == nil || opts.Store == nil {
		return nil, errors.New("generate: store, vocabulary and generator are required")
	}
	if opts.PromptLength < 1 {
		return nil, fmt.Errorf("prompt length must be positive, got %d", opts.PromptLength)
	}
	manifest := opts.Manifest
	if manifest == "" {
		manifest = storage.TestManifest
	}

	pipeOpts := opts.Pipeline
	pipeOpts.Vocab = opts.Vocab
	p, err := transform.Pack("generate", pipeOpts)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Open(opts.Store, manifest, p)
	if err != nil {
		return nil, err
	}
	if err := opts.Store.MkdirAll(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opts.OutputDir, err)
	}

	collator := batch.Collator{Vocab: opts.Vocab}
	report := &Report{}

	for i := 0; i < ds.NumBatches(1); i++ {
		if opts.MaxSamples > 0 && len(report.Samples) >= opts.MaxSamples {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		b, err := ds.Batch(i, 1, collator)
		if errors.Is(err, batch.ErrEmptyBatch) {
			slog.Debug("skipping song without prompt events", "file", ds.Path(i))
			report.Skipped++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("%s: %w", ds.Path(i), err)
		}

		prompt, err := b.Crop(opts.PromptLength)
		if err != nil {
			return report, err
		}
		seq := prompt.Rows[0][:prompt.Lengths[0]]

		predicted, err := opts.Generator.Generate(ctx, opts.Exec, seq)
		if err != nil {
			return report, fmt.Errorf("%s: %w", ds.Path(i), err)
		}

		var continuation []int
		if len(predicted) > len(seq) {
			continuation = predicted[len(seq):]
		}
		res, err := reconstruct.Reconstruct(continuation, opts.Vocab)
		if err != nil {
			return report, err
		}

		name := path.Join(opts.OutputDir, fmt.Sprintf("generated_sample_%d", len(report.Samples)))
		if err := writeSample(opts.Store, name, res, opts.MIDI); err != nil {
			return report, err
		}
		slog.Info("generated sample", "source", ds.Path(i), "sample", name, "tokens", len(res.Tokens))
		report.Samples = append(report.Samples, name)
	}

	return report, nil
}

func writeSample(store storage.Storage, name string, res *reconstruct.Result, opts reconstruct.MIDIOptions) error {
	var text, mid bytes.Buffer
	if err := res.WriteText(&text); err != nil {
		return err
	}
	if err := res.WriteMIDI(&mid, opts); err != nil {
		return err
	}
	if err := put(store, name+".csv", &text); err != nil {
		return err
	}
	return put(store, name+".mid", &mid)
}

func put(store storage.Storage, p string, r io.Reader) error {
	w, err := store.GetWriter(p)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", p, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return w.Close()
}
