package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/qdrant/go-client/qdrant"

	"rocon-docs-ai/internal/contextutil"
)

// QdrantIndex implements Index backed by a Qdrant collection. Points are
// keyed by corpus position so search results map straight back onto the
// chunk store the collection was built from.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	size       atomic.Int64
}

// NewQdrantIndex creates a Qdrant-backed index client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) is derived from the HTTP port.
func NewQdrantIndex(urlStr, collection string) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantIndex{client: client, collection: collection}, nil
}

// EnsureCollection creates the collection if missing, or validates the
// vector size of an existing one.
func (q *QdrantIndex) EnsureCollection(ctx context.Context, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", q.collection, "vector_size", vectorSize)
		err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}
	if int(params.Size) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, params.Size)
	}

	logger.InfoContext(ctx, "collection validated", "collection", q.collection, "vector_size", vectorSize)
	return nil
}

// RecreateCollection drops any existing collection and creates a fresh
// one. Rebuilds go through here rather than EnsureCollection: upserting
// over an existing collection would leave stale points behind whenever
// the corpus shrank, and their IDs would no longer resolve to chunks.
func (q *QdrantIndex) RecreateCollection(ctx context.Context, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		logger.InfoContext(ctx, "dropping collection for rebuild", "collection", q.collection)
		if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
	}

	logger.InfoContext(ctx, "creating collection", "collection", q.collection, "vector_size", vectorSize)
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Upsert writes vectors into the collection starting at corpus position
// startPos. Point IDs are the corpus positions themselves.
func (q *QdrantIndex) Upsert(ctx context.Context, startPos int, vectors [][]float32, meta []map[string]any) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(vectors) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for i, vec := range vectors {
		point := &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(startPos + i)),
			Vectors: qdrant.NewVectors(vec...),
		}
		if i < len(meta) && len(meta[i]) > 0 {
			point.Payload = qdrant.NewValueMap(meta[i])
		}
		points = append(points, point)
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", q.collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", q.collection, "count", len(points))
	return nil
}

// Refresh reads the current point count from the collection. The cached
// count backs Size so the retrieval engine can cap its candidate fetch.
func (q *QdrantIndex) Refresh(ctx context.Context) error {
	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	var count int64
	if info.PointsCount != nil {
		count = int64(*info.PointsCount)
	}
	q.size.Store(count)
	return nil
}

// Size returns the point count observed by the last Refresh or Upsert
// cycle.
func (q *QdrantIndex) Size() int {
	return int(q.size.Load())
}

// SetSize records the point count after a build pass without a round
// trip to the server.
func (q *QdrantIndex) SetSize(n int) {
	q.size.Store(int64(n))
}

// Search runs a similarity query and maps point IDs back to corpus
// positions. Points without a numeric ID are returned as the negative
// no-match sentinel.
func (q *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scoredPoints, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", q.collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]Hit, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		position := -1
		if id := point.Id; id != nil {
			if _, ok := id.PointIdOptions.(*qdrant.PointId_Num); ok {
				position = int(id.GetNum())
			}
		}
		hits = append(hits, Hit{Position: position, Score: point.Score})
	}
	return hits, nil
}
