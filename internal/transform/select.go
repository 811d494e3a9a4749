package transform

import (
	"fmt"

	"github.com/jaki95/eventseq/internal/domain"
	"github.com/jaki95/eventseq/internal/event"
)

// SelectInstrument extracts one instrument's events, keeping the waits of the
// tracks it plays on, wrapped in <begin>/<end> and wait-aggregated. A song
// without the instrument yields [<begin>, <end>].
type SelectInstrument struct {
	Instrument string
	MaxWait    int
}

func (t SelectInstrument) Name() string { return "select-instrument(" + t.Instrument + ")" }

func (t SelectInstrument) Accepts() domain.Kind {
	return domain.KindSymbolic | domain.KindMultiSymbolic
}

func (t SelectInstrument) Produces(domain.Kind) domain.Kind { return domain.KindSymbolic }

func (t SelectInstrument) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	tracks, err := symbolicTracks(f)
	if err != nil {
		return nil, err
	}
	return domain.Symbolic(selectInstrument(tracks, t.Instrument, t.MaxWait)), nil
}

func selectInstrument(tracks [][]string, instrument string, maxWait int) []string {
	out := []string{event.Begin}
	for _, track := range tracks {
		if !plays(track, instrument) {
			continue
		}
		for _, tok := range track {
			if event.IsWait(tok) || event.Type(tok) == instrument {
				out = append(out, tok)
			}
		}
	}
	out = append(out, event.End)
	if len(out) == 2 {
		return out
	}
	return event.Aggregator{MaxWait: maxWait}.Aggregate(out)
}

// plays reports whether track holds at least one event of instrument.
func plays(track []string, instrument string) bool {
	for _, tok := range track {
		if event.Type(tok) == instrument {
			return true
		}
	}
	return false
}

// SelectTrack picks one track of a multi-track song by position.
type SelectTrack struct {
	Index int
}

func (t SelectTrack) Name() string { return fmt.Sprintf("select-track(%d)", t.Index) }

func (t SelectTrack) Accepts() domain.Kind { return domain.KindMulti }

func (t SelectTrack) Produces(in domain.Kind) domain.Kind { return flatOf(in) }

func (t SelectTrack) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	mt := f.(domain.MultiTrack)
	if t.Index < 0 || t.Index >= len(mt) {
		return nil, fmt.Errorf("track %d out of range for song with %d tracks", t.Index, len(mt))
	}
	return mt[t.Index], nil
}

// FirstPopulatedTrack picks the first track longer than MinLen events and
// falls back to the longest track.
type FirstPopulatedTrack struct {
	MinLen int
}

func (t FirstPopulatedTrack) Name() string { return "first-populated-track" }

func (t FirstPopulatedTrack) Accepts() domain.Kind { return domain.KindMulti }

func (t FirstPopulatedTrack) Produces(in domain.Kind) domain.Kind { return flatOf(in) }

func (t FirstPopulatedTrack) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	mt := f.(domain.MultiTrack)
	if len(mt) == 0 {
		return nil, fmt.Errorf("song has no tracks")
	}
	longest := 0
	for i, track := range mt {
		if track.Len() > t.MinLen {
			return track, nil
		}
		if track.Len() > mt[longest].Len() {
			longest = i
		}
	}
	return mt[longest], nil
}

// FilterInstruments keeps only the allowed instruments' events. Wait and
// control tokens always survive; tracks left without any allowed event are
// dropped from multi-track songs.
type FilterInstruments struct {
	Allowed []string
}

func (t FilterInstruments) Name() string { return "filter-instruments" }

func (t FilterInstruments) Accepts() domain.Kind {
	return domain.KindSymbolic | domain.KindMultiSymbolic
}

func (t FilterInstruments) Produces(in domain.Kind) domain.Kind { return in }

func (t FilterInstruments) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(t.Allowed))
	for _, a := range t.Allowed {
		allowed[a] = true
	}

	filter := func(track []string) ([]string, bool) {
		out := make([]string, 0, len(track))
		kept := false
		for _, tok := range track {
			switch {
			case event.IsWait(tok) || event.IsControl(tok):
				out = append(out, tok)
			case allowed[event.Type(tok)]:
				out = append(out, tok)
				kept = true
			}
		}
		return out, kept
	}

	switch v := f.(type) {
	case domain.Symbolic:
		out, _ := filter(v)
		return domain.Symbolic(out), nil
	default:
		tracks, err := symbolicTracks(f)
		if err != nil {
			return nil, err
		}
		out := make(domain.MultiTrack, 0, len(tracks))
		for _, track := range tracks {
			if ft, kept := filter(track); kept {
				out = append(out, domain.Symbolic(ft))
			}
		}
		return out, nil
	}
}

// StripWait removes every wait token.
type StripWait struct{}

func (t StripWait) Name() string { return "strip-wait" }

func (t StripWait) Accepts() domain.Kind { return domain.KindSymbolic | domain.KindMultiSymbolic }

func (t StripWait) Produces(in domain.Kind) domain.Kind { return in }

func (t StripWait) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	return mapTracks(f, func(track []string) ([]string, error) {
		return event.StripWait(track), nil
	})
}

// AggregateWait collapses wait runs in every track.
type AggregateWait struct {
	MaxWait int
}

func (t AggregateWait) Name() string { return "aggregate-wait" }

func (t AggregateWait) Accepts() domain.Kind { return domain.KindSymbolic | domain.KindMultiSymbolic }

func (t AggregateWait) Produces(in domain.Kind) domain.Kind { return in }

func (t AggregateWait) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	agg := event.Aggregator{MaxWait: t.MaxWait}
	return mapTracks(f, func(track []string) ([]string, error) {
		return agg.Aggregate(track), nil
	})
}

// flatOf maps multi-track kinds to the kind of their tracks.
func flatOf(in domain.Kind) domain.Kind {
	var out domain.Kind
	if in&domain.KindMultiSymbolic != 0 {
		out |= domain.KindSymbolic
	}
	if in&domain.KindMultiIndexed != 0 {
		out |= domain.KindIndexed
	}
	return out
}
