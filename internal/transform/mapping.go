package transform

import (
	"fmt"

	"github.com/jaki95/eventseq/internal/domain"
)

// Encoder maps tokens to vocabulary indices.
type Encoder interface {
	Encode(tokens []string) ([]int, error)
}

// Decoder maps vocabulary indices back to tokens.
type Decoder interface {
	Decode(indices []int) ([]string, error)
}

// ToIndex maps symbolic tracks to indices. Unknown tokens fail the song.
type ToIndex struct {
	Vocab Encoder
}

func (t ToIndex) Name() string { return "to-index" }

func (t ToIndex) Accepts() domain.Kind { return domain.KindSymbolic | domain.KindMultiSymbolic }

func (t ToIndex) Produces(in domain.Kind) domain.Kind {
	var out domain.Kind
	if in&domain.KindSymbolic != 0 {
		out |= domain.KindIndexed
	}
	if in&domain.KindMultiSymbolic != 0 {
		out |= domain.KindMultiIndexed
	}
	return out
}

func (t ToIndex) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	switch v := f.(type) {
	case domain.Symbolic:
		idx, err := t.Vocab.Encode(v)
		if err != nil {
			return nil, err
		}
		return domain.Indexed(idx), nil
	default:
		tracks, err := symbolicTracks(f)
		if err != nil {
			return nil, err
		}
		out := make(domain.MultiTrack, len(tracks))
		for i, track := range tracks {
			idx, err := t.Vocab.Encode(track)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
			out[i] = domain.Indexed(idx)
		}
		return out, nil
	}
}

// ToToken maps indexed tracks back to tokens.
type ToToken struct {
	Vocab Decoder
}

func (t ToToken) Name() string { return "to-token" }

func (t ToToken) Accepts() domain.Kind { return domain.KindIndexed | domain.KindMultiIndexed }

func (t ToToken) Produces(in domain.Kind) domain.Kind {
	var out domain.Kind
	if in&domain.KindIndexed != 0 {
		out |= domain.KindSymbolic
	}
	if in&domain.KindMultiIndexed != 0 {
		out |= domain.KindMultiSymbolic
	}
	return out
}

func (t ToToken) Apply(f domain.Form) (domain.Form, error) {
	if err := check(t, f); err != nil {
		return nil, err
	}
	switch v := f.(type) {
	case domain.Indexed:
		toks, err := t.Vocab.Decode(v)
		if err != nil {
			return nil, err
		}
		return domain.Symbolic(toks), nil
	case domain.MultiTrack:
		tracks, err := v.IndexedTracks()
		if err != nil {
			return nil, err
		}
		out := make(domain.MultiTrack, len(tracks))
		for i, track := range tracks {
			toks, err := t.Vocab.Decode(track)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
			out[i] = domain.Symbolic(toks)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported form %T", f)
	}
}
