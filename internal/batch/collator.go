package batch

import (
	"fmt"
)

// Vocabulary is the part of the vocabulary the collator needs.
type Vocabulary interface {
	Encode(tokens []string) ([]int, error)
	PadIndex() int
	BeginIndex() int
	EndIndex() int
}

// Collator batches songs against one vocabulary. Unlike Collate it knows the
// control indices, so a batch made only of [<begin>, <end>] songs is rejected
// with an EmptyBatchError instead of producing a useless tensor.
type Collator struct {
	Vocab Vocabulary
}

func (c Collator) Collate(seqs [][]int) (*Batch, error) {
	if len(seqs) == 0 {
		return nil, &EmptyBatchError{}
	}
	trivial := true
	for _, s := range seqs {
		if !c.isTrivial(s) {
			trivial = false
			break
		}
	}
	if trivial {
		return nil, &EmptyBatchError{Size: len(seqs)}
	}
	return Collate(seqs, c.Vocab.PadIndex())
}

// CollateTokens encodes symbolic sequences and collates them.
func (c Collator) CollateTokens(seqs [][]string) (*Batch, error) {
	encoded := make([][]int, len(seqs))
	for i, s := range seqs {
		idx, err := c.Vocab.Encode(s)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		encoded[i] = idx
	}
	return c.Collate(encoded)
}

func (c Collator) isTrivial(seq []int) bool {
	switch len(seq) {
	case 0:
		return true
	case 2:
		return seq[0] == c.Vocab.BeginIndex() && seq[1] == c.Vocab.EndIndex()
	default:
		return false
	}
}
