package services

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"hmo-chatbot-backend/models"
)

// MemoryIndex is a brute-force in-memory nearest-neighbor index. The corpus
// is a few hundred chunks, so a linear scan with a hard pre-filter beats the
// complexity of an ANN backend. Chunks and vectors are immutable after
// construction, so concurrent queries need no locking.
type MemoryIndex struct {
	chunks   []models.DocumentChunk
	minScore float64
}

// NewMemoryIndex builds an index over the given chunks. Vectors are
// L2-normalized once here so query-time similarity is a plain dot product.
// minScore (0 disables it) drops candidates below a similarity floor.
func NewMemoryIndex(chunks []models.DocumentChunk, minScore float64) *MemoryIndex {
	normalized := make([]models.DocumentChunk, len(chunks))
	copy(normalized, chunks)
	for i := range normalized {
		normalized[i].Vector = l2Normalize(normalized[i].Vector)
	}
	return &MemoryIndex{chunks: normalized, minScore: minScore}
}

// Size returns the number of indexed chunks.
func (ix *MemoryIndex) Size() int { return len(ix.chunks) }

// Query returns up to topK chunks applicable to the filter, in descending
// similarity order. Ties keep corpus build order (stable sort). An empty
// candidate set yields an empty result, never an error.
func (ix *MemoryIndex) Query(ctx context.Context, vector []float32, filter models.ChunkFilter, topK int) ([]models.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 3
	}

	query := l2Normalize(vector)
	results := make([]models.ScoredChunk, 0, topK)
	for _, chunk := range ix.chunks {
		if !chunk.AppliesTo(filter.Organization, filter.Tier) {
			continue
		}
		score := dot(query, chunk.Vector)
		if ix.minScore > 0 && score < ix.minScore {
			continue
		}
		results = append(results, models.ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func l2Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// IndexProvider hands out the current index snapshot and allows atomic
// replacement after a rebuild. In-flight queries keep the snapshot they
// loaded, so they always see a consistent corpus.
type IndexProvider struct {
	current atomic.Value // holds indexSnapshot
}

type indexSnapshot struct {
	store KnowledgeStore
}

func NewIndexProvider(store KnowledgeStore) *IndexProvider {
	p := &IndexProvider{}
	p.current.Store(indexSnapshot{store: store})
	return p
}

// Load returns the current index.
func (p *IndexProvider) Load() KnowledgeStore {
	return p.current.Load().(indexSnapshot).store
}

// Swap atomically replaces the index.
func (p *IndexProvider) Swap(store KnowledgeStore) {
	p.current.Store(indexSnapshot{store: store})
}
