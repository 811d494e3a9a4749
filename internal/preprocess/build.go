package preprocess

import (
	"fmt"

	"github.com/jaki95/eventseq/config"
	"github.com/jaki95/eventseq/internal/audio"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/transform"
)

// PipelineOptions turns the pipeline and vocabulary settings into pack options.
func PipelineOptions(cfg *config.Config) (transform.Options, error) {
	policy, err := transform.ParseTruncatePolicy(cfg.Pipeline.TruncatePolicy)
	if err != nil {
		return transform.Options{}, &config.ConfigurationError{Field: "pipeline.truncate_policy", Reason: err.Error()}
	}
	return transform.Options{
		Target:    cfg.Pipeline.Target,
		PadLength: cfg.Pipeline.PadLength,
		Cap:       cfg.Pipeline.Cap,
		Policy:    policy,
		Allowed:   cfg.Pipeline.Allowed,
		MaxWait:   cfg.Vocab.MaxWait,

		Instruments: vocabInstruments(cfg.Vocab),
	}, nil
}

// vocabInstruments lists the configured instruments the vocabulary encodes.
func vocabInstruments(v config.VocabConfig) []string {
	excluded := make(map[string]bool, len(v.Exclude))
	for _, e := range v.Exclude {
		excluded[e] = true
	}
	out := make([]string, 0, len(v.Instruments))
	for _, instr := range v.Instruments {
		if !excluded[instr] {
			out = append(out, instr)
		}
	}
	return out
}

// FromConfig builds the streamer for the configured corpus kind. pack
// overrides the configured pipeline pack when not empty.
func FromConfig(cfg *config.Config, store storage.Storage, pack string, opts StreamOptions) (Streamer, error) {
	loaderOpts := LoaderOptions{Shuffle: cfg.Preprocess.Shuffle, Seed: cfg.Seed}
	if opts.Workers == 0 {
		opts.Workers = cfg.Preprocess.Workers
	}

	switch cfg.Preprocess.Kind {
	case "midi", "":
		if pack == "" {
			pack = cfg.Pipeline.Pack
		}
		pipeOpts, err := PipelineOptions(cfg)
		if err != nil {
			return nil, err
		}
		p, err := transform.Pack(pack, pipeOpts)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "pipeline.pack", Reason: err.Error()}
		}
		loader := NewMIDILoader(store, cfg.Preprocess.StepsPerQuarter, loaderOpts)
		return NewEventStreamer(store, loader, p, opts), nil
	case "audio":
		if cfg.Audio.Dataset == "" {
			return nil, &config.ConfigurationError{Field: "audio.dataset", Reason: "required for audio corpora"}
		}
		loader := NewWavLoader(store, cfg.Audio.Dataset, loaderOpts)
		return NewUtteranceStreamer(store, loader, cfg.Audio.Dataset, audio.NewWavSlicer(), opts), nil
	default:
		return nil, &config.ConfigurationError{Field: "preprocess.kind", Reason: fmt.Sprintf("unknown corpus kind %q", cfg.Preprocess.Kind)}
	}
}
