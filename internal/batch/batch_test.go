package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVocab struct {
	mock.Mock
}

func (m *mockVocab) Encode(tokens []string) ([]int, error) {
	args := m.Called(tokens)
	if idx, ok := args.Get(0).([]int); ok {
		return idx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVocab) PadIndex() int   { return 0 }
func (m *mockVocab) BeginIndex() int { return 1 }
func (m *mockVocab) EndIndex() int   { return 2 }

func TestCollate(t *testing.T) {
	b, err := Collate([][]int{{1, 2}, {1, 2, 3}}, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 0}, {1, 2, 3}}, b.Rows)
	assert.Equal(t, []int{2, 3}, b.Lengths)

	rows, cols := b.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
}

func TestCollatePreservesOrder(t *testing.T) {
	b, err := Collate([][]int{{5, 6, 7, 8}, {9}, {4, 4}}, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{5, 6, 7, 8}, {9, 0, 0, 0}, {4, 4, 0, 0}}, b.Rows)
}

func TestCollateEmpty(t *testing.T) {
	tests := []struct {
		name string
		seqs [][]int
		size int
	}{
		{name: "no sequences", seqs: nil, size: 0},
		{name: "only empty sequences", seqs: [][]int{{}, {}}, size: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Collate(tt.seqs, 0)
			assert.Nil(t, b)
			var eErr *EmptyBatchError
			require.True(t, errors.As(err, &eErr))
			assert.Equal(t, tt.size, eErr.Size)
			assert.ErrorIs(t, err, ErrEmptyBatch)
		})
	}
}

func TestDenseAndMask(t *testing.T) {
	b, err := Collate([][]int{{1, 2}, {1, 2, 3}}, 0)
	require.NoError(t, err)

	d := b.Dense()
	r, c := d.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 3.0, d.At(1, 2))
	assert.Equal(t, 0.0, d.At(0, 2))

	m := b.Mask()
	assert.Equal(t, 1.0, m.At(0, 1))
	assert.Equal(t, 0.0, m.At(0, 2))
	assert.Equal(t, 1.0, m.At(1, 2))
}

func TestCrop(t *testing.T) {
	b, err := Collate([][]int{{1, 5, 6, 2}, {1, 7}}, 0)
	require.NoError(t, err)

	cropped, err := b.Crop(3)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 5, 6}, {1, 7, 0}}, cropped.Rows)
	assert.Equal(t, []int{3, 2}, cropped.Lengths)
	assert.Equal(t, [][]int{{1, 5, 6, 2}, {1, 7, 0, 0}}, b.Rows, "original untouched")

	wide, err := b.Crop(10)
	require.NoError(t, err)
	assert.Equal(t, b.Rows, wide.Rows)

	_, err = b.Crop(0)
	assert.Error(t, err)
}

func TestCollatorRejectsTrivialBatch(t *testing.T) {
	c := Collator{Vocab: &mockVocab{}}

	_, err := c.Collate([][]int{{1, 2}, {1, 2}})
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = c.Collate(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	b, err := c.Collate([][]int{{1, 2}, {1, 9, 2}})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 0}, {1, 9, 2}}, b.Rows)
}

func TestCollateTokens(t *testing.T) {
	v := &mockVocab{}
	v.On("Encode", []string{"<begin>", "Piano_60", "<end>"}).Return([]int{1, 7, 2}, nil)
	v.On("Encode", []string{"<begin>", "<end>"}).Return([]int{1, 2}, nil)
	v.On("Encode", []string{"Organ_1"}).Return(nil, errors.New("unknown token"))

	c := Collator{Vocab: v}
	b, err := c.CollateTokens([][]string{{"<begin>", "Piano_60", "<end>"}, {"<begin>", "<end>"}})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 7, 2}, {1, 2, 0}}, b.Rows)

	_, err = c.CollateTokens([][]string{{"<begin>", "<end>"}})
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = c.CollateTokens([][]string{{"Organ_1"}})
	assert.ErrorContains(t, err, "sequence 0")

	v.AssertExpectations(t)
}
