package vocab

import (
	"errors"
	"fmt"
)

var (
	ErrVocabulary       = errors.New("invalid vocabulary")
	ErrUnknownToken     = errors.New("token not in vocabulary")
	ErrUnknownIndex     = errors.New("index out of vocabulary range")
	ErrSnapshotMismatch = errors.New("vocabulary snapshot mismatch")
)

// VocabularyError reports an empty or degenerate vocabulary.
type VocabularyError struct {
	Reason string
}

func (e *VocabularyError) Error() string {
	return fmt.Sprintf("vocabulary: %s", e.Reason)
}

func (e *VocabularyError) Unwrap() error {
	return ErrVocabulary
}

// UnknownTokenError reports a token missing from the vocabulary. It signals a
// corpus/vocabulary mismatch and is never skipped silently.
type UnknownTokenError struct {
	Token string
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown token %q", e.Token)
}

func (e *UnknownTokenError) Unwrap() error {
	return ErrUnknownToken
}

// UnknownIndexError reports an index outside [0, Len).
type UnknownIndexError struct {
	Index int
	Len   int
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("index %d outside vocabulary range [0, %d)", e.Index, e.Len)
}

func (e *UnknownIndexError) Unwrap() error {
	return ErrUnknownIndex
}

// SnapshotMismatchError reports a persisted vocabulary that differs from the
// one expected by the caller.
type SnapshotMismatchError struct {
	Expected string
	Actual   string
}

func (e *SnapshotMismatchError) Error() string {
	return fmt.Sprintf("vocabulary checksum %s does not match expected %s", e.Actual, e.Expected)
}

func (e *SnapshotMismatchError) Unwrap() error {
	return ErrSnapshotMismatch
}
