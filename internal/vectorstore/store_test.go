package vectorstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps known texts to fixed vectors so similarity ordering is
// deterministic.
type fakeEmbedder struct {
	vectors map[string][]float64
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func chunksOf(texts ...string) []models.Chunk {
	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{
			Content:  t,
			Filename: "doc.pdf",
			Page:     1,
			Index:    i,
			Source:   fmt.Sprintf("1-%d", i),
		}
	}
	return chunks
}

func testStore() *Store {
	return NewStore(&fakeEmbedder{vectors: map[string][]float64{
		"cats":       {1, 0, 0},
		"dogs":       {0.9, 0.1, 0},
		"accounting": {0, 0, 1},
		"about cats": {1, 0.05, 0},
	}}, logger.NewTestLogger())
}

func TestBuildNormalizesVectors(t *testing.T) {
	s := testStore()

	idx, err := s.Build(context.Background(), chunksOf("cats", "accounting"))
	require.NoError(t, err)
	require.Len(t, idx.Vectors, 2)
	assert.Equal(t, 3, idx.Dimension)

	for _, v := range idx.Vectors {
		assert.InDelta(t, 1.0, dot(v, v), 1e-9)
	}
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	s := testStore()
	_, err := s.Build(context.Background(), nil)
	assert.Error(t, err)
}

func TestSearchOrdersBySimilarity(t *testing.T) {
	s := testStore()

	idx, err := s.Build(context.Background(), chunksOf("accounting", "dogs", "cats"))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), idx, "about cats", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "cats", results[0].Content)
	assert.Equal(t, "dogs", results[1].Content)
}

func TestSearchDefaultsK(t *testing.T) {
	s := testStore()

	idx, err := s.Build(context.Background(), chunksOf("accounting", "dogs", "cats"))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), idx, "about cats", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchClampsKToIndexSize(t *testing.T) {
	s := testStore()

	idx, err := s.Build(context.Background(), chunksOf("cats"))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), idx, "about cats", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	s := testStore()
	dir := t.TempDir()

	idx, err := s.Build(context.Background(), chunksOf("cats", "dogs"))
	require.NoError(t, err)
	require.NoError(t, s.Persist(idx, dir))
	assert.True(t, HasIndex(dir))

	loaded, err := s.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, idx.Dimension, loaded.Dimension)
	require.Len(t, loaded.Chunks, 2)
	assert.Equal(t, "cats", loaded.Chunks[0].Content)

	// the loaded copy searches the same as the fresh one
	results, err := s.Search(context.Background(), loaded, "about cats", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cats", results[0].Content)
}

func TestLoadMissingDirectory(t *testing.T) {
	s := testStore()
	_, err := s.Load(t.TempDir())
	assert.Error(t, err)
}

func TestHasIndexFalseForEmptyDir(t *testing.T) {
	assert.False(t, HasIndex(t.TempDir()))
}
