package transform

import (
	"fmt"
	"sort"

	"github.com/jaki95/eventseq/internal/domain"
)

// Options configures the prebuilt pipelines.
type Options struct {
	Target    string
	PadLength int
	Cap       int
	Policy    TruncatePolicy
	Allowed   []string
	MaxWait   int
	// Instruments, when set, are the vocabulary's instruments; the standard
	// pack drops every other instrument so clean data stays encodable.
	Instruments []string
	// Vocab, when set, appends a ToIndex stage to the pack.
	Vocab Encoder
}

// DefaultOptions mirrors the settings the training scripts used.
func DefaultOptions() Options {
	return Options{
		Target:    "Piano",
		PadLength: 200,
		Cap:       1024,
		Policy:    TruncateEnd,
		Allowed:   []string{"Piano", "Guitar", "Bass"},
	}
}

type packFunc func(Options) []Transform

var packs = map[string]packFunc{
	// standard writes clean data: wait-aggregated tracks, nothing else.
	"standard": func(o Options) []Transform {
		if len(o.Instruments) == 0 {
			return []Transform{AggregateWait{MaxWait: o.MaxWait}}
		}
		return []Transform{
			FilterInstruments{Allowed: o.Instruments},
			AggregateWait{MaxWait: o.MaxWait},
		}
	},
	"train": func(o Options) []Transform {
		return []Transform{
			PadFixed{N: o.PadLength},
			Flatten{},
			FilterInstruments{Allowed: o.Allowed},
			StripWait{},
		}
	},
	"seq2seq": func(o Options) []Transform {
		return []Transform{
			SplitSourceTarget{Target: o.Target, MaxWait: o.MaxWait},
			Cap{Max: o.Cap, Policy: o.Policy},
		}
	},
	"instrument": func(o Options) []Transform {
		return []Transform{
			SelectInstrument{Instrument: o.Target, MaxWait: o.MaxWait},
			Cap{Max: o.Cap, Policy: o.Policy},
		}
	},
	"include": func(o Options) []Transform {
		return []Transform{
			IncludeInstrument{Instrument: o.Target, MaxWait: o.MaxWait},
			Cap{Max: o.Cap, Policy: o.Policy},
		}
	},
	"autoencode": func(o Options) []Transform {
		return []Transform{
			EqualSourceTarget{Instrument: o.Target, MaxWait: o.MaxWait},
			Cap{Max: o.Cap, Policy: o.Policy},
		}
	},
	// generate keeps the source side of the split as the prompt.
	"generate": func(o Options) []Transform {
		return []Transform{
			SplitSourceTarget{Target: o.Target, MaxWait: o.MaxWait},
			SelectTrack{Index: 0},
		}
	},
}

// Packs lists the names accepted by Pack.
func Packs() []string {
	names := make([]string, 0, len(packs))
	for name := range packs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pack builds a named pipeline for multi-track symbolic songs.
func Pack(name string, opts Options) (*Pipeline, error) {
	build, ok := packs[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline pack %q", name)
	}
	ts := build(opts)
	if opts.Vocab != nil {
		ts = append(ts, ToIndex{Vocab: opts.Vocab})
	}
	return Compose(domain.KindMultiSymbolic, ts...)
}
