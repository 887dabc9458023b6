// Package vectormirror optionally mirrors the semantic cache into Qdrant
// so semsearch can be served by ANN search over a large symbol set
// instead of brute-force cosine. The on-disk cache remains authoritative;
// the mirror is best-effort and rebuilt on every reload.
package vectormirror

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// Entry is one semantic cache entry mirrored into Qdrant.
type Entry struct {
	ID    string
	File  string
	Line  int
	Text  string
	Vec   []float32
}

// Mirror wraps a Qdrant client scoped to one collection.
type Mirror struct {
	client     *qdrant.Client
	collection string
}

// New connects to Qdrant at url. A nil Mirror (from New returning an
// error) means the caller should fall back to in-memory search; callers
// check err, not a zero value, since Qdrant being unreachable is expected
// in disconnected/offline use.
func New(url, collection string) (*Mirror, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: url})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}
	return &Mirror{client: client, collection: collection}, nil
}

// Close closes the Qdrant connection.
func (m *Mirror) Close() error {
	return m.client.Close()
}

// EnsureCollection creates the collection if it doesn't exist, sized for
// the embedding provider's dimension.
func (m *Mirror) EnsureCollection(ctx context.Context, dim int) error {
	exists, err := m.client.CollectionExists(ctx, m.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: m.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// Upsert replaces the mirrored entries in one batch.
func (m *Mirror) Upsert(ctx context.Context, entries []Entry) error {
	points := make([]*qdrant.PointStruct, len(entries))
	for i, e := range entries {
		payload := map[string]interface{}{
			"file": e.File,
			"line": e.Line,
			"text": e.Text,
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectors(e.Vec...),
			Payload: qdrant.NewValueMap(payload),
		}
	}
	_, err := m.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: m.collection,
		Points:         points,
	})
	return err
}

// Match is one ANN search hit.
type Match struct {
	File  string
	Line  int
	Score float32
}

// Search performs vector similarity search over the mirrored collection.
func (m *Mirror) Search(ctx context.Context, vector []float32, limit int) ([]Match, error) {
	results, err := m.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: m.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		file := ""
		if v, ok := r.Payload["file"]; ok {
			file = v.GetStringValue()
		}
		line := 0
		if v, ok := r.Payload["line"]; ok {
			line = int(v.GetIntegerValue())
		}
		matches[i] = Match{File: file, Line: line, Score: r.Score}
	}
	return matches, nil
}
