package batch

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Batch is a set of equal-length index sequences, right-padded with Pad.
type Batch struct {
	Rows [][]int
	// Lengths holds each row's length before padding.
	Lengths []int
	Pad     int
}

// Collate right-pads every sequence to the longest one in the batch. Input
// order is preserved. An empty input, or one where every sequence is empty,
// yields an EmptyBatchError.
func Collate(seqs [][]int, pad int) (*Batch, error) {
	if len(seqs) == 0 {
		return nil, &EmptyBatchError{}
	}

	width := 0
	for _, s := range seqs {
		width = max(width, len(s))
	}
	if width == 0 {
		return nil, &EmptyBatchError{Size: len(seqs)}
	}

	b := &Batch{
		Rows:    make([][]int, len(seqs)),
		Lengths: make([]int, len(seqs)),
		Pad:     pad,
	}
	for i, s := range seqs {
		row := make([]int, width)
		n := copy(row, s)
		for j := n; j < width; j++ {
			row[j] = pad
		}
		b.Rows[i] = row
		b.Lengths[i] = len(s)
	}
	return b, nil
}

// Shape returns (batch size, sequence length).
func (b *Batch) Shape() (int, int) {
	if len(b.Rows) == 0 {
		return 0, 0
	}
	return len(b.Rows), len(b.Rows[0])
}

// Dense materializes the batch as a batch x length matrix.
func (b *Batch) Dense() *mat.Dense {
	r, c := b.Shape()
	data := make([]float64, 0, r*c)
	for _, row := range b.Rows {
		for _, v := range row {
			data = append(data, float64(v))
		}
	}
	return mat.NewDense(r, c, data)
}

// Mask is a batch x length matrix holding 1 for real tokens and 0 for padding.
func (b *Batch) Mask() *mat.Dense {
	r, c := b.Shape()
	m := mat.NewDense(r, c, nil)
	for i, n := range b.Lengths {
		for j := 0; j < n && j < c; j++ {
			m.Set(i, j, 1)
		}
	}
	return m
}

// Crop keeps the first n columns of every row, e.g. to cut a prompt.
func (b *Batch) Crop(n int) (*Batch, error) {
	if n < 1 {
		return nil, fmt.Errorf("crop length must be positive, got %d", n)
	}
	_, width := b.Shape()
	n = min(n, width)

	out := &Batch{
		Rows:    make([][]int, len(b.Rows)),
		Lengths: make([]int, len(b.Rows)),
		Pad:     b.Pad,
	}
	for i, row := range b.Rows {
		out.Rows[i] = append([]int(nil), row[:n]...)
		out.Lengths[i] = min(b.Lengths[i], n)
	}
	return out, nil
}
