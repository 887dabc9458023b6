// Package embed provides a fully local embedding provider: no network
// calls, no API key, deterministic given its input text. It keeps the
// same Embed/EmbedBatched/Dimension shape as a hosted embedding client so
// callers (the semantic cache, the resident server) never need to know
// which backend produced a vector.
package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// dimension is the fixed width of every vector this provider produces.
const dimension = 256

// trigramSize is the character n-gram length hashed into the vector. Short
// enough to share structure across near-identical identifiers, long
// enough to avoid collapsing unrelated short words onto the same bucket.
const trigramSize = 3

// LocalProvider is a hashing-trick embedder: each text is split into
// overlapping character trigrams, each trigram hashed into one of
// Dimension() buckets, and the resulting vector L2-normalized. Two texts
// sharing more trigrams land closer together under cosine similarity.
type LocalProvider struct {
	model string
}

// NewLocalProvider returns a provider identified by model (used only to
// distinguish cache entries produced under different configurations; the
// hashing scheme itself never changes).
func NewLocalProvider(model string) *LocalProvider {
	if model == "" {
		model = "local-trigram-256"
	}
	return &LocalProvider{model: model}
}

// Model returns the identifier stamped into semantic cache entries so a
// reload can detect a model change and invalidate stale vectors.
func (p *LocalProvider) Model() string { return p.model }

// Embed produces one L2-normalized vector per input text.
func (p *LocalProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = embedOne(t)
	}
	return vectors, nil
}

// EmbedBatched mirrors Embed but chunks the input; the local provider has
// no network round-trip to amortize, so batching exists only to keep this
// provider's call shape compatible with hosted ones.
func (p *LocalProvider) EmbedBatched(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = 64
	}
	var all [][]float32
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := p.Embed(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// Dimension returns the fixed vector width produced by this provider.
func (p *LocalProvider) Dimension() int { return dimension }

func embedOne(text string) []float32 {
	vec := make([]float32, dimension)
	lower := strings.ToLower(text)
	runes := []rune(lower)
	if len(runes) < trigramSize {
		runes = append(runes, make([]rune, trigramSize-len(runes))...)
	}
	for i := 0; i+trigramSize <= len(runes); i++ {
		gram := string(runes[i : i+trigramSize])
		h := fnv.New32a()
		_, _ = h.Write([]byte(gram))
		bucket := h.Sum32() % uint32(dimension)
		vec[bucket]++
	}
	normalize(vec)
	return vec
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}

// CosineSimilarity returns the cosine similarity of a and b, or 0 if
// either vector has zero norm or they differ in length.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
