package vocab

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jaki95/eventseq/internal/event"
)

// Vocabulary is the closed, indexed set of event tokens shared by
// preprocessing, training and generation. It is immutable once built.
type Vocabulary struct {
	indexToToken []string
	tokenToIndex map[string]int
	checksum     string
}

func newVocabulary(tokens []string) (*Vocabulary, error) {
	if len(tokens) == 0 {
		return nil, &VocabularyError{Reason: "no tokens"}
	}

	v := &Vocabulary{
		indexToToken: make([]string, len(tokens)),
		tokenToIndex: make(map[string]int, len(tokens)),
	}
	copy(v.indexToToken, tokens)

	for i, tok := range v.indexToToken {
		if tok == "" {
			return nil, &VocabularyError{Reason: "empty token"}
		}
		if _, dup := v.tokenToIndex[tok]; dup {
			return nil, &VocabularyError{Reason: "duplicate token " + tok}
		}
		v.tokenToIndex[tok] = i
	}

	for _, ctl := range []string{event.Pad, event.Begin, event.End} {
		if _, ok := v.tokenToIndex[ctl]; !ok {
			return nil, &VocabularyError{Reason: "missing control token " + ctl}
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(v.indexToToken, "\n")))
	v.checksum = hex.EncodeToString(sum[:])
	return v, nil
}

// Len returns the vocabulary size. Valid indices are [0, Len).
func (v *Vocabulary) Len() int {
	return len(v.indexToToken)
}

// IndexToToken returns a copy of the ordered token list; position is index.
func (v *Vocabulary) IndexToToken() []string {
	out := make([]string, len(v.indexToToken))
	copy(out, v.indexToToken)
	return out
}

// TokenToIndex returns the index of tok.
func (v *Vocabulary) TokenToIndex(tok string) (int, error) {
	idx, ok := v.tokenToIndex[tok]
	if !ok {
		return 0, &UnknownTokenError{Token: tok}
	}
	return idx, nil
}

// Token returns the token at idx.
func (v *Vocabulary) Token(idx int) (string, error) {
	if idx < 0 || idx >= len(v.indexToToken) {
		return "", &UnknownIndexError{Index: idx, Len: len(v.indexToToken)}
	}
	return v.indexToToken[idx], nil
}

func (v *Vocabulary) Contains(tok string) bool {
	_, ok := v.tokenToIndex[tok]
	return ok
}

// Encode maps every token of a track to its index.
func (v *Vocabulary) Encode(tokens []string) ([]int, error) {
	out := make([]int, len(tokens))
	for i, tok := range tokens {
		idx, err := v.TokenToIndex(tok)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Decode maps every index of a track back to its token.
func (v *Vocabulary) Decode(indices []int) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		tok, err := v.Token(idx)
		if err != nil {
			return nil, err
		}
		out[i] = tok
	}
	return out, nil
}

func (v *Vocabulary) PadIndex() int   { return v.tokenToIndex[event.Pad] }
func (v *Vocabulary) BeginIndex() int { return v.tokenToIndex[event.Begin] }
func (v *Vocabulary) EndIndex() int   { return v.tokenToIndex[event.End] }

// Checksum identifies the exact token order of this vocabulary.
func (v *Vocabulary) Checksum() string {
	return v.checksum
}

// Verify fails with SnapshotMismatchError unless expected matches the checksum.
func (v *Vocabulary) Verify(expected string) error {
	if expected != v.checksum {
		return &SnapshotMismatchError{Expected: expected, Actual: v.checksum}
	}
	return nil
}
