package transform

import (
	"github.com/jaki95/eventseq/internal/domain"
	"github.com/jaki95/eventseq/internal/event"
)

// SplitSourceTarget frames a song for sequence-to-sequence training: the
// target holds the Target instrument's events, the source everything else.
// In a flat stream every wait goes to both sides. In a multi-track song a
// track's waits follow its events, to the target if it plays Target and to
// the source if it plays anything else. Both sides are wrapped in
// <begin>/<end> and wait-aggregated. The result is MultiTrack{source, target}.
type SplitSourceTarget struct {
	Target  string
	MaxWait int
}

func (t SplitSourceTarget) Name() string { return "split-source-target(" + t.Target + ")" }

func (t SplitSourceTarget) Accepts() domain.Kind {
	return domain.KindSymbolic | domain.KindMultiSymbolic
}

func (t SplitSourceTarget) Produces(domain.Kind) domain.Kind { return domain.KindMultiSymbolic }

func (t SplitSourceTarget) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}

	src := []string{event.Begin}
	trg := []string{event.Begin}

	route := func(track []string, waitToSrc, waitToTrg bool) {
		for _, tok := range track {
			switch {
			case event.IsControl(tok):
			case event.IsWait(tok):
				if waitToSrc {
					src = append(src, tok)
				}
				if waitToTrg {
					trg = append(trg, tok)
				}
			case event.Type(tok) == t.Target:
				trg = append(trg, tok)
			default:
				src = append(src, tok)
			}
		}
	}

	switch v := f.(type) {
	case domain.Symbolic:
		route(v, true, true)
	default:
		tracks, err := symbolicTracks(f)
		if err != nil {
			return nil, err
		}
		for _, track := range tracks {
			hasTarget, hasOther := composition(track, t.Target)
			route(track, hasOther, hasTarget)
		}
	}

	agg := event.Aggregator{MaxWait: t.MaxWait}
	src = agg.Aggregate(append(src, event.End))
	trg = agg.Aggregate(append(trg, event.End))

	return domain.MultiTrack{domain.Symbolic(src), domain.Symbolic(trg)}, nil
}

// composition reports whether a track plays the target instrument and
// whether it plays anything else.
func composition(track []string, target string) (hasTarget, hasOther bool) {
	for _, tok := range track {
		if event.IsControl(tok) || event.IsWait(tok) {
			continue
		}
		if event.Type(tok) == target {
			hasTarget = true
		} else {
			hasOther = true
		}
	}
	return hasTarget, hasOther
}

// IncludeInstrument frames the whole song as source and one instrument as
// target: MultiTrack{aggregate(song), select(instrument)}.
type IncludeInstrument struct {
	Instrument string
	MaxWait    int
}

func (t IncludeInstrument) Name() string { return "include-instrument(" + t.Instrument + ")" }

func (t IncludeInstrument) Accepts() domain.Kind {
	return domain.KindSymbolic | domain.KindMultiSymbolic
}

func (t IncludeInstrument) Produces(domain.Kind) domain.Kind { return domain.KindMultiSymbolic }

func (t IncludeInstrument) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	tracks, err := symbolicTracks(f)
	if err != nil {
		return nil, err
	}

	var whole []string
	for _, track := range tracks {
		whole = append(whole, track...)
	}
	agg := event.Aggregator{MaxWait: t.MaxWait}

	return domain.MultiTrack{
		domain.Symbolic(agg.Aggregate(whole)),
		domain.Symbolic(selectInstrument(tracks, t.Instrument, t.MaxWait)),
	}, nil
}

// EqualSourceTarget uses the selected instrument as both source and target,
// for autoencoding setups.
type EqualSourceTarget struct {
	Instrument string
	MaxWait    int
}

func (t EqualSourceTarget) Name() string { return "equal-source-target(" + t.Instrument + ")" }

func (t EqualSourceTarget) Accepts() domain.Kind {
	return domain.KindSymbolic | domain.KindMultiSymbolic
}

func (t EqualSourceTarget) Produces(domain.Kind) domain.Kind { return domain.KindMultiSymbolic }

func (t EqualSourceTarget) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	tracks, err := symbolicTracks(f)
	if err != nil {
		return nil, err
	}
	sel := selectInstrument(tracks, t.Instrument, t.MaxWait)
	dup := make([]string, len(sel))
	copy(dup, sel)
	return domain.MultiTrack{domain.Symbolic(sel), domain.Symbolic(dup)}, nil
}
