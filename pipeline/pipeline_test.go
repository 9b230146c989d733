package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"

	"hotissue/board"
	"hotissue/config"
	"hotissue/embedding"
	"hotissue/llm"
	"hotissue/pkg/qdrantdb"
)

type fakeLister struct {
	entries []board.TitleEntry
	err     error
}

func (f *fakeLister) ListTitles(ctx context.Context, pageNum, start, end int) ([]board.TitleEntry, error) {
	return f.entries, f.err
}

// fakeClassifier tags by link; unknown links are dropped like the real
// classifier drops fabricated replies.
type fakeClassifier struct {
	tags map[string]string
}

func (f *fakeClassifier) Classify(ctx context.Context, entries []board.TitleEntry) []llm.ClassifiedTitle {
	var out []llm.ClassifiedTitle
	for _, e := range entries {
		tag, ok := f.tags[e.Link]
		if !ok {
			continue
		}
		out = append(out, llm.ClassifiedTitle{TitleEntry: e, IsIssue: tag})
	}
	return out
}

type fakeAggregator struct {
	failLinks map[string]bool
	content   map[string]string
}

func (f *fakeAggregator) Aggregate(ctx context.Context, entry board.TitleEntry, seq int) (*board.Document, error) {
	if f.failLinks[entry.Link] {
		return nil, errors.New("post fetch failed")
	}
	return &board.Document{
		ID:            board.DocumentID(entry.CollectedDate, seq),
		Title:         entry.Title,
		Link:          entry.Link,
		PageNum:       entry.PageNum,
		Content:       f.content[entry.Link],
		Analysis:      "분석: " + entry.Title,
		CollectedDate: entry.CollectedDate,
	}, nil
}

// charEmbedder maps text deterministically onto a small vector so identical
// texts embed identically.
type charEmbedder struct {
	dim  int
	fail map[string]bool
}

func (c *charEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	for bad := range c.fail {
		if bad == text {
			return nil, errors.New("embedding endpoint down")
		}
	}
	vec := make([]float32, c.dim)
	for i, r := range []rune(text) {
		vec[i%c.dim] += float32(r % 97)
	}
	vec[0]++ // never all zeros
	return vec, nil
}

func (c *charEmbedder) Dimension() int { return c.dim }
func (c *charEmbedder) Model() string  { return "char-test" }

// memStore is an in-memory VectorStore that ranks by cosine similarity.
type memStore struct {
	dim       int
	ensured   int
	records   map[string]qdrantdb.Record
	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]qdrantdb.Record{}}
}

func (m *memStore) EnsureCollection(ctx context.Context, dim int) error {
	if m.ensured > 0 && m.dim != dim {
		return qdrantdb.ErrDimensionMismatch
	}
	m.dim = dim
	m.ensured++
	return nil
}

func (m *memStore) Upsert(ctx context.Context, records []qdrantdb.Record) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, rec := range records {
		m.records[rec.Doc.ID] = rec
	}
	return nil
}

func (m *memStore) Search(ctx context.Context, vector []float32, k int) ([]qdrantdb.SearchResult, error) {
	var results []qdrantdb.SearchResult
	for _, rec := range m.records {
		results = append(results, qdrantdb.SearchResult{
			Score:          embedding.CosineSimilarity(vector, rec.Vector),
			Doc:            rec.Doc,
			EmbeddingModel: rec.Model,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

type memSeen struct {
	seen map[string]bool
}

func (m *memSeen) Seen(link string) (bool, error) { return m.seen[link], nil }
func (m *memSeen) Mark(link string) error         { m.seen[link] = true; return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OutputDir: t.TempDir(),
		Board: config.BoardConfig{
			ListURLTemplate: "https://theqoo.net/hot?filter_mode=normal&page=%d",
			PageStart:       2,
			PageEnd:         2,
			StartIdx:        0,
			EndIdx:          10,
		},
	}
}

func postEntries() []board.TitleEntry {
	return []board.TitleEntry{
		{Title: "길고양이가 출근 도장 찍는 편의점", Link: "https://theqoo.net/hot/1", PageNum: 2, CollectedDate: "2025-06-01"},
		{Title: "대선 후보 토론 정리", Link: "https://theqoo.net/hot/2", PageNum: 2, CollectedDate: "2025-06-01"},
	}
}

func newTestPipeline(t *testing.T, store *memStore, seen SeenFilter, agg DocumentAggregator) (*Pipeline, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	cls := &fakeClassifier{tags: map[string]string{
		"https://theqoo.net/hot/1": llm.IssueKeep,
		"https://theqoo.net/hot/2": llm.IssueDiscard,
	}}
	p := New(&fakeLister{entries: postEntries()}, cls, agg,
		&charEmbedder{dim: 8}, store, seen, cfg, zap.NewNop())
	p.sleep = func(time.Duration) {}
	p.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return p, cfg
}

func TestRun_EndToEnd(t *testing.T) {
	store := newMemStore()
	agg := &fakeAggregator{content: map[string]string{
		"https://theqoo.net/hot/1": "편의점 고양이 이야기",
	}}
	p, cfg := newTestPipeline(t, store, nil, agg)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Collected != 2 || summary.Kept != 1 {
		t.Errorf("collected/kept = %d/%d, want 2/1", summary.Collected, summary.Kept)
	}
	if summary.Aggregated != 1 || summary.Stored != 1 || summary.Errors != 0 {
		t.Errorf("aggregated/stored/errors = %d/%d/%d",
			summary.Aggregated, summary.Stored, summary.Errors)
	}

	// only the non-political post was stored
	if len(store.records) != 1 {
		t.Fatalf("stored %d documents, want 1", len(store.records))
	}
	rec, ok := store.records["theqoo_2025-06-01_1"]
	if !ok {
		t.Fatalf("stored ids = %v", store.records)
	}
	if rec.Doc.Link != "https://theqoo.net/hot/1" {
		t.Errorf("stored the wrong post: %+v", rec.Doc)
	}
	if rec.Model != "char-test" {
		t.Errorf("record model = %q", rec.Model)
	}

	// the audit file holds the same single document
	wantFile := filepath.Join(cfg.OutputDir, "theqoo_documents_20250601.json")
	if summary.File != wantFile {
		t.Errorf("summary file = %q, want %q", summary.File, wantFile)
	}
	docs, err := board.LoadDocuments(wantFile)
	if err != nil {
		t.Fatalf("load audit file: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "theqoo_2025-06-01_1" {
		t.Errorf("audit file content: %+v", docs)
	}

	// a query embedded from the stored text ranks the kept post first
	embedder := &charEmbedder{dim: 8}
	query, err := embedder.Embed(context.Background(), embedding.BuildText(&rec.Doc))
	if err != nil {
		t.Fatal(err)
	}
	hits, err := store.Search(context.Background(), query, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Doc.ID != rec.Doc.ID {
		t.Errorf("search hits = %+v", hits)
	}
	if hits[0].Score < 0.999 {
		t.Errorf("self-similarity = %v, want ~1", hits[0].Score)
	}
}

func TestRun_SeenFilterSkips(t *testing.T) {
	store := newMemStore()
	seen := &memSeen{seen: map[string]bool{"https://theqoo.net/hot/1": true}}
	p, _ := newTestPipeline(t, store, seen, &fakeAggregator{})

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Kept != 0 || len(store.records) != 0 {
		t.Errorf("already-seen post was processed: %+v", summary)
	}
}

func TestRun_MarksProcessedLinks(t *testing.T) {
	store := newMemStore()
	seen := &memSeen{seen: map[string]bool{}}
	p, _ := newTestPipeline(t, store, seen, &fakeAggregator{})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen.seen["https://theqoo.net/hot/1"] {
		t.Error("processed link was not marked")
	}
	if seen.seen["https://theqoo.net/hot/2"] {
		t.Error("discarded link must not be marked")
	}
}

func TestRun_AggregationFailureIsCounted(t *testing.T) {
	store := newMemStore()
	agg := &fakeAggregator{failLinks: map[string]bool{"https://theqoo.net/hot/1": true}}
	seen := &memSeen{seen: map[string]bool{}}
	p, _ := newTestPipeline(t, store, seen, agg)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Errors != 1 || summary.Aggregated != 0 || summary.Stored != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if seen.seen["https://theqoo.net/hot/1"] {
		t.Error("failed link must stay eligible for the next run")
	}
}

func TestRun_ClassificationFailureAborts(t *testing.T) {
	cfg := testConfig(t)
	p := New(&fakeLister{entries: postEntries()},
		&fakeClassifier{tags: map[string]string{}}, &fakeAggregator{},
		&charEmbedder{dim: 8}, newMemStore(), nil, cfg, zap.NewNop())
	p.sleep = func(time.Duration) {}

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("whole-batch classification failure must abort the run")
	}
}

func TestRun_NoTitlesAborts(t *testing.T) {
	cfg := testConfig(t)
	p := New(&fakeLister{err: errors.New("listing down")},
		&fakeClassifier{}, &fakeAggregator{},
		&charEmbedder{dim: 8}, newMemStore(), nil, cfg, zap.NewNop())
	p.sleep = func(time.Duration) {}

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("empty collection must abort the run")
	}
}

func TestStore_SkipsFailedEmbeddings(t *testing.T) {
	store := newMemStore()
	docs := []board.Document{
		{ID: "theqoo_2025-06-01_1", Title: "되는 문서"},
		{ID: "theqoo_2025-06-01_2", Title: "안 되는 문서"},
	}
	embedder := &charEmbedder{dim: 8, fail: map[string]bool{
		embedding.BuildText(&docs[1]): true,
	}}

	cfg := testConfig(t)
	p := New(&fakeLister{}, &fakeClassifier{}, &fakeAggregator{},
		embedder, store, nil, cfg, zap.NewNop())
	p.sleep = func(time.Duration) {}

	stored, failed, err := p.Store(context.Background(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != 1 || failed != 1 {
		t.Errorf("stored/failed = %d/%d, want 1/1", stored, failed)
	}
	if _, ok := store.records["theqoo_2025-06-01_1"]; !ok {
		t.Error("healthy document missing from the store")
	}
	if _, ok := store.records["theqoo_2025-06-01_2"]; ok {
		t.Error("failed document must not be stored")
	}
}

func TestStore_UpsertFailure(t *testing.T) {
	store := newMemStore()
	store.upsertErr = fmt.Errorf("qdrant unreachable")

	cfg := testConfig(t)
	p := New(&fakeLister{}, &fakeClassifier{}, &fakeAggregator{},
		&charEmbedder{dim: 8}, store, nil, cfg, zap.NewNop())

	_, _, err := p.Store(context.Background(),
		[]board.Document{{ID: "theqoo_2025-06-01_1", Title: "문서"}})
	if err == nil {
		t.Fatal("upsert failure must surface as an error")
	}
}
