package vocab

import (
	"sort"
	"strconv"

	"github.com/jaki95/eventseq/internal/event"
)

// Corpus describes the event space a vocabulary must cover.
type Corpus struct {
	Instruments []string
	MinPitch    uint8
	MaxPitch    uint8
	// MaxWait is the largest aggregated wait token; wt_1..wt_MaxWait are enumerated.
	MaxWait int
}

// Build enumerates every token reachable in corpus, minus the excluded event
// types, after the control tokens <pad>, <begin>, <end> (in that order).
func Build(corpus Corpus, exclude ...string) (*Vocabulary, error) {
	if len(corpus.Instruments) == 0 && corpus.MaxWait <= 0 {
		return nil, &VocabularyError{Reason: "empty corpus"}
	}
	if corpus.MinPitch > corpus.MaxPitch || corpus.MaxPitch > 127 {
		return nil, &VocabularyError{Reason: "invalid pitch range " +
			strconv.Itoa(int(corpus.MinPitch)) + ".." + strconv.Itoa(int(corpus.MaxPitch))}
	}

	skip := make(map[string]bool, len(exclude))
	for _, typ := range exclude {
		skip[typ] = true
	}

	tokens := []string{event.Pad, event.Begin, event.End}
	seen := make(map[string]bool)
	events := 0

	for _, instr := range corpus.Instruments {
		if skip[instr] || seen[instr] {
			continue
		}
		seen[instr] = true
		for p := int(corpus.MinPitch); p <= int(corpus.MaxPitch); p++ {
			tokens = append(tokens, event.NoteOn(instr, uint8(p)))
			events++
		}
		for p := int(corpus.MinPitch); p <= int(corpus.MaxPitch); p++ {
			tokens = append(tokens, event.NoteOff(instr, uint8(p)))
			events++
		}
	}

	if !skip[event.WaitType] {
		for n := 1; n <= corpus.MaxWait; n++ {
			tokens = append(tokens, event.Wait(n))
			events++
		}
	}

	if events == 0 {
		return nil, &VocabularyError{Reason: "corpus yields zero event tokens"}
	}

	return newVocabulary(tokens)
}

// BuildFromSongs collects the closed set of tokens observed in songs. Control
// tokens come first; the rest is sorted by type, then by numeric value where
// possible, so the order is stable across runs.
func BuildFromSongs(songs [][][]string, exclude ...string) (*Vocabulary, error) {
	if len(songs) == 0 {
		return nil, &VocabularyError{Reason: "empty corpus"}
	}

	skip := make(map[string]bool, len(exclude))
	for _, typ := range exclude {
		skip[typ] = true
	}

	set := make(map[string]struct{})
	for _, song := range songs {
		for _, track := range song {
			for _, tok := range track {
				if tok == "" || event.IsControl(tok) || skip[event.Type(tok)] {
					continue
				}
				set[tok] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return nil, &VocabularyError{Reason: "corpus yields zero event tokens"}
	}

	observed := make([]string, 0, len(set))
	for tok := range set {
		observed = append(observed, tok)
	}
	sort.Slice(observed, func(i, j int) bool {
		return tokenLess(observed[i], observed[j])
	})

	tokens := append([]string{event.Pad, event.Begin, event.End}, observed...)
	return newVocabulary(tokens)
}

// tokenLess orders by type, then note-ons, note-offs, numeric values and
// anything else, then by number and finally by the raw token.
func tokenLess(a, b string) bool {
	ka, kb := sortKeyOf(a), sortKeyOf(b)
	if ka.typ != kb.typ {
		return ka.typ < kb.typ
	}
	if ka.class != kb.class {
		return ka.class < kb.class
	}
	if ka.num != kb.num {
		return ka.num < kb.num
	}
	return a < b
}

type sortKey struct {
	typ   string
	class int
	num   int
}

func sortKeyOf(tok string) sortKey {
	k := sortKey{typ: event.Type(tok), class: 3}
	if n, ok := event.ParseNote(tok); ok {
		k.num = int(n.Pitch)
		if n.On {
			k.class = 0
		} else {
			k.class = 1
		}
		return k
	}
	if v, err := strconv.Atoi(event.Value(tok)); err == nil {
		k.class, k.num = 2, v
	}
	return k
}
