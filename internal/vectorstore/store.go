package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/nitinog10/Campus-mitra/internal/models"
	"github.com/nitinog10/Campus-mitra/pkg/logger"
)

// IndexFile is the opaque index payload inside a document directory;
// MetadataFile is the sidecar next to it.
const (
	IndexFile    = "index.json"
	MetadataFile = "metadata.json"
)

// Embedder converts text into numeric vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Index holds embedded chunks for one document. Vectors are stored
// L2-normalized so cosine similarity reduces to a dot product.
type Index struct {
	Dimension int            `json:"dimension"`
	Vectors   [][]float64    `json:"vectors"`
	Chunks    []models.Chunk `json:"chunks"`
}

// Store 向量索引适配器：构建、持久化、加载、检索
type Store struct {
	embedder Embedder
	logger   logger.Logger
}

func NewStore(embedder Embedder, logger logger.Logger) *Store {
	return &Store{
		embedder: embedder,
		logger:   logger,
	}
}

// Build embeds all chunks and assembles a searchable index.
func (s *Store) Build(ctx context.Context, chunks []models.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	for i := range vectors {
		normalize(vectors[i])
	}

	return &Index{
		Dimension: len(vectors[0]),
		Vectors:   vectors,
		Chunks:    chunks,
	}, nil
}

// Persist writes the index payload into dir. The write is atomic: a torn
// process never leaves a half-written payload behind.
func (s *Store) Persist(idx *Index, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	path := filepath.Join(dir, IndexFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace index: %w", err)
	}
	return nil
}

// Load reads a previously persisted index from dir.
func (s *Store) Load(dir string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	if len(idx.Vectors) != len(idx.Chunks) {
		return nil, fmt.Errorf("corrupt index: %d vectors for %d chunks", len(idx.Vectors), len(idx.Chunks))
	}
	return &idx, nil
}

// Search embeds the query and returns the top-k chunks in descending
// similarity order. Rank-derived display scores are the caller's concern.
func (s *Store) Search(ctx context.Context, idx *Index, query string, k int) ([]models.Chunk, error) {
	if k <= 0 {
		k = 2
	}
	if len(idx.Chunks) == 0 {
		return nil, nil
	}

	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	normalize(qv)

	order := make([]int, len(idx.Vectors))
	scores := make([]float64, len(idx.Vectors))
	for i, v := range idx.Vectors {
		order[i] = i
		scores[i] = dot(v, qv)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]models.Chunk, 0, k)
	for _, j := range order[:k] {
		results = append(results, idx.Chunks[j])
	}
	return results, nil
}

// HasIndex reports whether dir contains a persisted index payload.
func HasIndex(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, IndexFile))
	return err == nil && !info.IsDir()
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}
