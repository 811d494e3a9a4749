package transform

import (
	"fmt"
	"strings"

	"github.com/jaki95/eventseq/internal/domain"
)

// Transform is a pure function over one song form. It declares which kinds
// it accepts and which kind it produces for a given input kind, so that a
// pipeline can be checked before any song flows through it.
type Transform interface {
	Name() string
	Accepts() domain.Kind
	Produces(in domain.Kind) domain.Kind
	Apply(f domain.Form) (domain.Form, error)
}

// Pipeline applies transforms left to right.
type Pipeline struct {
	input      domain.Kind
	output     domain.Kind
	transforms []Transform
}

// Compose builds a pipeline for songs of the given input kind. Adjacent
// transforms must agree on their shapes, otherwise a ShapeMismatchError is
// returned naming the first stage that cannot accept its input.
func Compose(input domain.Kind, transforms ...Transform) (*Pipeline, error) {
	cur := input
	for i, t := range transforms {
		accepted := cur & t.Accepts()
		if accepted == 0 {
			return nil, &ShapeMismatchError{Transform: t.Name(), Stage: i, Want: t.Accepts(), Got: cur}
		}
		cur = t.Produces(accepted)
	}
	return &Pipeline{input: input, output: cur, transforms: transforms}, nil
}

// MustCompose is Compose for pipelines fixed at compile time.
func MustCompose(input domain.Kind, transforms ...Transform) *Pipeline {
	p, err := Compose(input, transforms...)
	if err != nil {
		panic(err)
	}
	return p
}

// Apply runs f through every stage. The shape of every intermediate form is
// checked again at run time.
func (p *Pipeline) Apply(f domain.Form) (domain.Form, error) {
	if f == nil {
		return nil, &ShapeMismatchError{Transform: "input", Stage: -1, Want: p.input, Got: domain.KindMixed}
	}
	if f.Kind()&p.input == 0 {
		return nil, &ShapeMismatchError{Transform: "input", Stage: -1, Want: p.input, Got: f.Kind()}
	}

	var err error
	for i, t := range p.transforms {
		if f.Kind()&t.Accepts() == 0 {
			return nil, &ShapeMismatchError{Transform: t.Name(), Stage: i, Want: t.Accepts(), Got: f.Kind()}
		}
		if f, err = t.Apply(f); err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, t.Name(), err)
		}
	}
	return f, nil
}

func (p *Pipeline) Input() domain.Kind  { return p.input }
func (p *Pipeline) Output() domain.Kind { return p.output }

func (p *Pipeline) String() string {
	names := make([]string, len(p.transforms))
	for i, t := range p.transforms {
		names[i] = t.Name()
	}
	return strings.Join(names, " -> ")
}

// check guards Apply when a transform is used outside a pipeline.
func check(t Transform, f domain.Form) error {
	if f == nil {
		return &ShapeMismatchError{Transform: t.Name(), Want: t.Accepts(), Got: domain.KindMixed}
	}
	if f.Kind()&t.Accepts() == 0 {
		return &ShapeMismatchError{Transform: t.Name(), Want: t.Accepts(), Got: f.Kind()}
	}
	return nil
}

// mapTracks applies fn to a flat symbolic track or to every track of a
// multi-track symbolic song.
func mapTracks(f domain.Form, fn func([]string) ([]string, error)) (domain.Form, error) {
	switch v := f.(type) {
	case domain.Symbolic:
		out, err := fn(v)
		if err != nil {
			return nil, err
		}
		return domain.Symbolic(out), nil
	case domain.MultiTrack:
		tracks, err := v.SymbolicTracks()
		if err != nil {
			return nil, err
		}
		out := make(domain.MultiTrack, len(tracks))
		for i, t := range tracks {
			nt, err := fn(t)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
			out[i] = domain.Symbolic(nt)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported form %T", f)
	}
}

// symbolicTracks views a flat or multi-track symbolic form as a list of tracks.
func symbolicTracks(f domain.Form) ([][]string, error) {
	switch v := f.(type) {
	case domain.Symbolic:
		return [][]string{v}, nil
	case domain.MultiTrack:
		return v.SymbolicTracks()
	default:
		return nil, fmt.Errorf("unsupported form %T", f)
	}
}
