package generate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jaki95/eventseq/internal/dataset"
	"github.com/jaki95/eventseq/internal/model"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/transform"
	"github.com/jaki95/eventseq/internal/vocab"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, ec model.ExecContext, prompt []int) ([]int, error) {
	args := m.Called(ctx, ec, prompt)
	out, _ := args.Get(0).([]int)
	return out, args.Error(1)
}

func setup(t *testing.T, songs map[string]string, order []string) (*storage.LocalFileStorage, *vocab.Vocabulary) {
	t.Helper()
	store, err := storage.NewLocalFileStorage(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.MkdirAll(storage.CleanDir))

	write := func(p string, data []byte) {
		w, err := store.GetWriter(p)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	for _, name := range order {
		write(name, []byte(songs[name]))
	}
	var manifest bytes.Buffer
	require.NoError(t, dataset.WriteManifest(&manifest, order))
	write(storage.TestManifest, manifest.Bytes())

	v, err := vocab.Build(vocab.Corpus{Instruments: []string{"Piano", "Bass"}, MinPitch: 30, MaxPitch: 80, MaxWait: 8})
	require.NoError(t, err)
	return store, v
}

func encode(t *testing.T, v *vocab.Vocabulary, tokens ...string) []int {
	t.Helper()
	idx, err := v.Encode(tokens)
	require.NoError(t, err)
	return idx
}

func read(t *testing.T, store storage.Storage, p string) []byte {
	t.Helper()
	r, err := store.GetReader(p)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

func TestRun(t *testing.T) {
	store, v := setup(t, map[string]string{
		"clean_data/piano_only.csv": "Piano_60,wt_2,Piano_off_60\n",
		"clean_data/duet.csv":       "Bass_40,wt_2,Bass_off_40,wt_1,Bass_45,wt_1,Bass_off_45\nPiano_60,wt_4,Piano_off_60\n",
		"clean_data/bass.csv":       "Bass_50,wt_1,Bass_off_50\n",
	}, []string{"clean_data/piano_only.csv", "clean_data/duet.csv", "clean_data/bass.csv"})

	prompt := encode(t, v, "<begin>", "Bass_40", "wt_2")
	gen := &mockGenerator{}
	exec := model.ExecContext{Device: "cpu", Seed: 1}
	gen.On("Generate", mock.Anything, exec, prompt).
		Return(append(append([]int{}, prompt...), encode(t, v, "Piano_60", "wt_4", "Piano_off_60", "<end>")...), nil).
		Once()

	report, err := Run(context.Background(), Options{
		Store:        store,
		Vocab:        v,
		Generator:    gen,
		Exec:         exec,
		Pipeline:     transform.Options{Target: "Piano", MaxWait: 8},
		MaxSamples:   1,
		PromptLength: 3,
		OutputDir:    "generated",
	})
	require.NoError(t, err)
	gen.AssertExpectations(t)

	assert.Equal(t, []string{"generated/generated_sample_0"}, report.Samples)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, "Piano_60,wt_4,Piano_off_60,<end>\n", string(read(t, store, "generated/generated_sample_0.csv")))

	s, err := smf.ReadFrom(bytes.NewReader(read(t, store, "generated/generated_sample_0.mid")))
	require.NoError(t, err)
	assert.Len(t, s.Tracks, 1)
}

func TestRunSilentContinuation(t *testing.T) {
	store, v := setup(t, map[string]string{
		"clean_data/duet.csv": "Bass_40,wt_2,Bass_off_40\nPiano_60,wt_4,Piano_off_60\n",
	}, []string{"clean_data/duet.csv"})

	prompt := encode(t, v, "<begin>", "Bass_40", "wt_2")
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, prompt).
		Return(append(append([]int{}, prompt...), encode(t, v, "<end>")...), nil)

	report, err := Run(context.Background(), Options{
		Store:        store,
		Vocab:        v,
		Generator:    gen,
		Pipeline:     transform.Options{Target: "Piano", MaxWait: 8},
		PromptLength: 3,
		OutputDir:    "generated",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"generated/generated_sample_0"}, report.Samples)
	assert.Equal(t, "<end>\n", string(read(t, store, "generated/generated_sample_0.csv")))

	s, err := smf.ReadFrom(bytes.NewReader(read(t, store, "generated/generated_sample_0.mid")))
	require.NoError(t, err)
	assert.Len(t, s.Tracks, 1)
}

func TestRunGeneratorError(t *testing.T) {
	store, v := setup(t, map[string]string{
		"clean_data/bass.csv": "Bass_50,wt_1,Bass_off_50\n",
	}, []string{"clean_data/bass.csv"})

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("model crashed"))

	_, err := Run(context.Background(), Options{
		Store:        store,
		Vocab:        v,
		Generator:    gen,
		Pipeline:     transform.Options{Target: "Piano"},
		PromptLength: 8,
		OutputDir:    "generated",
	})
	assert.ErrorContains(t, err, "model crashed")
}

func TestRunValidation(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)

	store, v := setup(t, map[string]string{}, nil)
	_, err = Run(context.Background(), Options{Store: store, Vocab: v, Generator: &mockGenerator{}})
	assert.Error(t, err)
}
