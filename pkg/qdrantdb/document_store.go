package qdrantdb

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"hotissue/board"
)

var (
	// ErrDimensionMismatch means an existing collection was created with a
	// different vector size than the caller expects. Mixing dimensions
	// corrupts similarity search silently, so it is rejected up front.
	ErrDimensionMismatch = errors.New("qdrantdb: collection dimension does not match embedding backend")
	// ErrIDCollision means two distinct document ids hashed to the same
	// point id. Rejected rather than silently overwritten.
	ErrIDCollision = errors.New("qdrantdb: point id collision between distinct documents")
)

// PointID maps a logical document id into Qdrant's numeric id space:
// a 63-bit FNV-1a hash. Collisions are possible; Upsert rejects them.
func PointID(docID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(docID))
	return h.Sum64() & (1<<63 - 1)
}

// Record pairs a document with its embedding.
type Record struct {
	Doc    board.Document
	Vector []float32
	Model  string
}

// SearchResult is one ranked hit with its payload decoded back into a
// document.
type SearchResult struct {
	Score          float32
	Doc            board.Document
	EmbeddingModel string
}

// CollectionInfo summarises durable state for the status surface.
type CollectionInfo struct {
	Name      string
	Points    uint64
	Dimension uint64
	Status    string
}

// DocumentStore binds the client to one named collection.
type DocumentStore struct {
	client     *Client
	collection string
	logger     *zap.Logger
}

func NewDocumentStore(client *Client, collection string, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{client: client, collection: collection, logger: logger}
}

// Collection returns the bound collection name.
func (s *DocumentStore) Collection() string { return s.collection }

// EnsureCollection creates the collection if absent (idempotent) and, when
// it already exists, validates that its configured dimension matches dim.
func (s *DocumentStore) EnsureCollection(ctx context.Context, dim int) error {
	exists, err := s.client.Client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrantdb: check collection %s: %w", s.collection, err)
	}
	if exists {
		info, err := s.Info(ctx)
		if err != nil {
			return err
		}
		if info.Dimension != uint64(dim) {
			return fmt.Errorf("%w: collection %s has %d, backend produces %d",
				ErrDimensionMismatch, s.collection, info.Dimension, dim)
		}
		return nil
	}

	err = s.client.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrantdb: create collection %s: %w", s.collection, err)
	}
	s.logger.Info("collection created",
		zap.String("collection", s.collection),
		zap.Int("dimension", dim))
	return nil
}

// Recreate drops and recreates the collection. There is no in-place
// migration; a schema change goes through here.
func (s *DocumentStore) Recreate(ctx context.Context, dim int) error {
	exists, err := s.client.Client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrantdb: check collection %s: %w", s.collection, err)
	}
	if exists {
		if err := s.client.Client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("qdrantdb: delete collection %s: %w", s.collection, err)
		}
	}
	err = s.client.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrantdb: recreate collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert writes records as points keyed by PointID. A pre-existing point
// with the same numeric id but a different logical id is a collision and
// fails the batch before anything is written.
func (s *DocumentStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, rec := range records {
		id := PointID(rec.Doc.ID)

		existing, err := s.client.Client.Get(ctx, &qdrant.GetPoints{
			CollectionName: s.collection,
			Ids:            []*qdrant.PointId{qdrant.NewIDNum(id)},
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return fmt.Errorf("qdrantdb: check point %d: %w", id, err)
		}
		if len(existing) > 0 {
			storedID := existing[0].GetPayload()["id"].GetStringValue()
			if storedID != "" && storedID != rec.Doc.ID {
				return fmt.Errorf("%w: %q and %q both map to %d",
					ErrIDCollision, storedID, rec.Doc.ID, id)
			}
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(id),
			Vectors: qdrant.NewVectorsDense(rec.Vector),
			Payload: qdrant.NewValueMap(payloadMap(rec)),
		})
	}

	_, err := s.client.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrantdb: upsert %d points: %w", len(points), err)
	}
	s.logger.Info("points upserted",
		zap.String("collection", s.collection),
		zap.Int("count", len(points)))
	return nil
}

// Search ranks by cosine similarity, descending. Tie order is whatever the
// store returns; callers must not assume stability.
func (s *DocumentStore) Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	limit := uint64(k)
	scored, err := s.client.Client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrantdb: search %s: %w", s.collection, err)
	}

	results := make([]SearchResult, 0, len(scored))
	for _, point := range scored {
		results = append(results, decodePoint(point))
	}
	return results, nil
}

// Info reports point count and configured vector size.
func (s *DocumentStore) Info(ctx context.Context) (*CollectionInfo, error) {
	info, err := s.client.Client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("qdrantdb: collection info %s: %w", s.collection, err)
	}
	out := &CollectionInfo{
		Name:   s.collection,
		Status: info.GetStatus().String(),
	}
	if pc := info.GetPointsCount(); pc != 0 {
		out.Points = pc
	}
	if params := info.GetConfig().GetParams().GetVectorsConfig().GetParams(); params != nil {
		out.Dimension = params.GetSize()
	}
	return out, nil
}

func payloadMap(rec Record) map[string]any {
	comments := make([]any, len(rec.Doc.Comments))
	for i, c := range rec.Doc.Comments {
		comments[i] = c
	}
	return map[string]any{
		"id":              rec.Doc.ID,
		"title":           rec.Doc.Title,
		"link":            rec.Doc.Link,
		"page_num":        int64(rec.Doc.PageNum),
		"post_datetime":   rec.Doc.PostDatetime,
		"content":         rec.Doc.Content,
		"comments":        comments,
		"comments_count":  int64(rec.Doc.CommentsCount),
		"analysis":        rec.Doc.Analysis,
		"collected_date":  rec.Doc.CollectedDate,
		"text_for_search": rec.Doc.Title + " " + rec.Doc.Content + " " + rec.Doc.Analysis,
		"embedding_model": rec.Model,
	}
}

func decodePoint(point *qdrant.ScoredPoint) SearchResult {
	payload := point.GetPayload()
	doc := board.Document{
		ID:            payload["id"].GetStringValue(),
		Title:         payload["title"].GetStringValue(),
		Link:          payload["link"].GetStringValue(),
		PageNum:       int(payload["page_num"].GetIntegerValue()),
		PostDatetime:  payload["post_datetime"].GetStringValue(),
		Content:       payload["content"].GetStringValue(),
		CommentsCount: int(payload["comments_count"].GetIntegerValue()),
		Analysis:      payload["analysis"].GetStringValue(),
		CollectedDate: payload["collected_date"].GetStringValue(),
	}
	for _, v := range payload["comments"].GetListValue().GetValues() {
		doc.Comments = append(doc.Comments, v.GetStringValue())
	}
	return SearchResult{
		Score:          point.GetScore(),
		Doc:            doc,
		EmbeddingModel: payload["embedding_model"].GetStringValue(),
	}
}
