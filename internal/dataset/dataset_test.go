package dataset

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/eventseq/internal/batch"
	"github.com/jaki95/eventseq/internal/domain"
	"github.com/jaki95/eventseq/internal/event"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/transform"
	"github.com/jaki95/eventseq/internal/vocab"
)

func TestReadSong(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.MultiTrack
	}{
		{
			name:  "symbolic tracks",
			input: "Piano_60,wt_1,wt_1,Piano_62\nBass_40,wt_2\n",
			want: domain.MultiTrack{
				domain.Symbolic{"Piano_60", "wt_1", "wt_1", "Piano_62"},
				domain.Symbolic{"Bass_40", "wt_2"},
			},
		},
		{
			name:  "indexed rows",
			input: "1,5,7,2\n1, 9 ,2\n",
			want: domain.MultiTrack{
				domain.Indexed{1, 5, 7, 2},
				domain.Indexed{1, 9, 2},
			},
		},
		{
			name:  "blank lines and trailing commas",
			input: "Piano_60,wt_1,\n\nBass_40\n",
			want: domain.MultiTrack{
				domain.Symbolic{"Piano_60", "wt_1"},
				domain.Symbolic{"Bass_40"},
			},
		},
		{
			name:  "empty file",
			input: "",
			want:  domain.MultiTrack{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSong(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteSong(t *testing.T) {
	var buf bytes.Buffer
	song := domain.MultiTrack{
		domain.Symbolic{event.Begin, "Bass_40", "wt_2", event.End},
		domain.Symbolic{event.Begin, "Piano_60", event.End},
	}
	require.NoError(t, WriteSong(&buf, song))
	assert.Equal(t, "<begin>,Bass_40,wt_2,<end>\n<begin>,Piano_60,<end>\n", buf.String())

	back, err := ReadSong(&buf)
	require.NoError(t, err)
	assert.Equal(t, song, back)

	buf.Reset()
	require.NoError(t, WriteSong(&buf, domain.Indexed{1, 2, 3}))
	assert.Equal(t, "1,2,3\n", buf.String())

	assert.Error(t, WriteSong(io.Discard, domain.MultiTrack{domain.MultiTrack{}}))
}

func TestWriteSongSkipsEmptyTracks(t *testing.T) {
	var buf bytes.Buffer
	song := domain.MultiTrack{
		domain.Symbolic{"Bass_40", "wt_2"},
		domain.Symbolic{},
		domain.Symbolic{"Piano_60"},
	}
	require.NoError(t, WriteSong(&buf, song))
	assert.Equal(t, "Bass_40,wt_2\nPiano_60\n", buf.String())

	back, err := ReadSong(&buf)
	require.NoError(t, err)
	assert.Equal(t, domain.MultiTrack{song[0], song[2]}, back)

	buf.Reset()
	require.NoError(t, WriteSong(&buf, domain.Symbolic{}))
	assert.Empty(t, buf.String())
}

func TestManifest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteManifest(&buf, []string{"clean_data/a.csv", "clean_data/b.csv"}))

	paths, err := ReadManifest(strings.NewReader(buf.String() + "\n  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"clean_data/a.csv", "clean_data/b.csv"}, paths)
}

func put(t *testing.T, s storage.Storage, p, content string) {
	t.Helper()
	w, err := s.GetWriter(p)
	require.NoError(t, err)
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestDataset(t *testing.T) {
	store, err := storage.NewLocalFileStorage(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	put(t, store, "clean_data/a.csv", "Piano_60,wt_1,wt_1,Piano_62\nBass_40,wt_2\n")
	put(t, store, "clean_data/b.csv", "Bass_41,wt_3\n")
	put(t, store, "clean_data/c.csv", "Piano_64,wt_1\n")
	put(t, store, storage.TrainManifest, "clean_data/a.csv\nclean_data/b.csv\nclean_data/c.csv\n")

	v, err := vocab.Build(vocab.Corpus{Instruments: []string{"Piano", "Bass"}, MinPitch: 40, MaxPitch: 64, MaxWait: 4})
	require.NoError(t, err)

	p := transform.MustCompose(domain.KindMultiSymbolic,
		transform.SelectInstrument{Instrument: "Piano", MaxWait: 4},
		transform.ToIndex{Vocab: v},
	)

	ds, err := Open(store, storage.TrainManifest, p)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "clean_data/b.csv", ds.Path(1))

	f, err := ds.Get(0)
	require.NoError(t, err)
	toks, err := v.Decode(f.(domain.Indexed))
	require.NoError(t, err)
	assert.Equal(t, []string{event.Begin, "Piano_60", "wt_2", "Piano_62", event.End}, toks)

	_, err = ds.Get(3)
	assert.Error(t, err)

	assert.Equal(t, 2, ds.NumBatches(2))
	c := batch.Collator{Vocab: v}

	b, err := ds.Batch(0, 2, c)
	require.NoError(t, err)
	rows, cols := b.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 5, cols)
	assert.Equal(t, []int{5, 2}, b.Lengths, "b.csv has no piano")

	_, err = ds.Batch(2, 2, c)
	assert.Error(t, err)

	raw, err := Open(store, storage.TrainManifest, nil)
	require.NoError(t, err)
	_, err = raw.Batch(0, 1, c)
	assert.ErrorIs(t, err, transform.ErrShapeMismatch)
}

func TestDatasetTrivialBatch(t *testing.T) {
	store, err := storage.NewLocalFileStorage(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	put(t, store, "clean_data/b.csv", "Bass_41,wt_3\n")

	v, err := vocab.Build(vocab.Corpus{Instruments: []string{"Piano", "Bass"}, MinPitch: 40, MaxPitch: 64, MaxWait: 4})
	require.NoError(t, err)
	p := transform.MustCompose(domain.KindMultiSymbolic,
		transform.SelectInstrument{Instrument: "Piano"},
		transform.ToIndex{Vocab: v},
	)

	ds := New(store, []string{"clean_data/b.csv"}, p)
	_, err = ds.Batch(0, 1, batch.Collator{Vocab: v})
	assert.ErrorIs(t, err, batch.ErrEmptyBatch)
}

func TestOpenMissingManifest(t *testing.T) {
	store, err := storage.NewLocalFileStorage(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	_, err = Open(store, storage.TestManifest, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDatasetTokens(t *testing.T) {
	store, err := storage.NewLocalFileStorage(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	put(t, store, "clean_data/a.csv", "Piano_60,wt_2\nBass_40\n")
	put(t, store, "clean_data/n.csv", "1,2,3\n")

	songs, err := New(store, []string{"clean_data/a.csv"}, nil).Tokens()
	require.NoError(t, err)
	assert.Equal(t, [][][]string{{{"Piano_60", "wt_2"}, {"Bass_40"}}}, songs)

	_, err = New(store, []string{"clean_data/n.csv"}, nil).Tokens()
	assert.Error(t, err)
}
