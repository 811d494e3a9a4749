package domain

import (
	"fmt"
	"strings"
)

// Kind is a bit set describing the shape of a Form.
type Kind uint8

const (
	KindSymbolic Kind = 1 << iota
	KindIndexed
	KindMultiSymbolic
	KindMultiIndexed

	// KindMixed marks a multi-track form holding both symbolic and indexed
	// tracks. No transform accepts it.
	KindMixed Kind = 0

	KindFlat  = KindSymbolic | KindIndexed
	KindMulti = KindMultiSymbolic | KindMultiIndexed
	KindAny   = KindFlat | KindMulti
)

func (k Kind) String() string {
	if k == KindMixed {
		return "mixed"
	}
	var parts []string
	for _, n := range []struct {
		k    Kind
		name string
	}{
		{KindSymbolic, "symbolic"},
		{KindIndexed, "indexed"},
		{KindMultiSymbolic, "multi-symbolic"},
		{KindMultiIndexed, "multi-indexed"},
	} {
		if k&n.k != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Form is one stage of a song flowing through the transform pipeline:
// Symbolic, Indexed or MultiTrack.
type Form interface {
	Kind() Kind
	Len() int
}

// Symbolic is a track of string event tokens.
type Symbolic []string

func (s Symbolic) Kind() Kind { return KindSymbolic }
func (s Symbolic) Len() int   { return len(s) }

// Indexed is a track of vocabulary indices.
type Indexed []int

func (s Indexed) Kind() Kind { return KindIndexed }
func (s Indexed) Len() int   { return len(s) }

// MultiTrack is an ordered list of flat tracks.
type MultiTrack []Form

// Kind reports KindMultiSymbolic or KindMultiIndexed when every track has the
// same flat kind, KindMulti for an empty song and KindMixed otherwise.
func (m MultiTrack) Kind() Kind {
	if len(m) == 0 {
		return KindMulti
	}
	var seen Kind
	for _, t := range m {
		if t == nil {
			return KindMixed
		}
		seen |= t.Kind()
	}
	switch seen {
	case KindSymbolic:
		return KindMultiSymbolic
	case KindIndexed:
		return KindMultiIndexed
	default:
		return KindMixed
	}
}

func (m MultiTrack) Len() int { return len(m) }

// Song is a decoded multi-track song.
type Song struct {
	Name   string
	Tracks MultiTrack
}

// NewSymbolicSong wraps raw token tracks.
func NewSymbolicSong(name string, tracks [][]string) *Song {
	mt := make(MultiTrack, len(tracks))
	for i, t := range tracks {
		mt[i] = Symbolic(t)
	}
	return &Song{Name: name, Tracks: mt}
}

// SymbolicTracks returns the tracks as string slices, failing if any track is not symbolic.
func (m MultiTrack) SymbolicTracks() ([][]string, error) {
	out := make([][]string, len(m))
	for i, t := range m {
		s, ok := t.(Symbolic)
		if !ok {
			return nil, fmt.Errorf("track %d is %s, not symbolic", i, kindOf(t))
		}
		out[i] = s
	}
	return out, nil
}

// IndexedTracks returns the tracks as int slices, failing if any track is not indexed.
func (m MultiTrack) IndexedTracks() ([][]int, error) {
	out := make([][]int, len(m))
	for i, t := range m {
		s, ok := t.(Indexed)
		if !ok {
			return nil, fmt.Errorf("track %d is %s, not indexed", i, kindOf(t))
		}
		out[i] = s
	}
	return out, nil
}

func kindOf(f Form) Kind {
	if f == nil {
		return KindMixed
	}
	return f.Kind()
}
