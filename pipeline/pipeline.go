// Package pipeline runs the ingest batch: collect listing titles, classify
// them, aggregate kept posts, persist the audit JSON and store embeddings.
// Execution is strictly sequential; every failure mode is skip-and-log and
// shows up in the per-run summary.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hotissue/board"
	"hotissue/config"
	"hotissue/embedding"
	"hotissue/llm"
	"hotissue/pkg/qdrantdb"
)

// TitleLister yields listing rows. Satisfied by *board.Collector.
type TitleLister interface {
	ListTitles(ctx context.Context, pageNum, start, end int) ([]board.TitleEntry, error)
}

// TitleClassifier tags a batch. Satisfied by *llm.Classifier.
type TitleClassifier interface {
	Classify(ctx context.Context, entries []board.TitleEntry) []llm.ClassifiedTitle
}

// DocumentAggregator builds one document per kept title. Satisfied by
// *board.Aggregator.
type DocumentAggregator interface {
	Aggregate(ctx context.Context, entry board.TitleEntry, seq int) (*board.Document, error)
}

// VectorStore is the durable side. Satisfied by *qdrantdb.DocumentStore.
type VectorStore interface {
	EnsureCollection(ctx context.Context, dim int) error
	Upsert(ctx context.Context, records []qdrantdb.Record) error
}

// SeenFilter lets a caller skip links processed by earlier runs. The
// pipeline itself never dedups; a nil filter keeps that behavior.
type SeenFilter interface {
	Seen(link string) (bool, error)
	Mark(link string) error
}

// Summary is the per-run tally printed when a batch finishes.
type Summary struct {
	RunID      string
	Collected  int
	Kept       int
	Aggregated int
	Stored     int
	Errors     int
	File       string
}

// Pipeline wires the batch stages together.
type Pipeline struct {
	collector  TitleLister
	classifier TitleClassifier
	aggregator DocumentAggregator
	embedder   embedding.Client
	store      VectorStore
	seen       SeenFilter
	cfg        *config.Config
	logger     *zap.Logger
	sleep      func(time.Duration)
	now        func() time.Time
}

func New(
	collector TitleLister,
	classifier TitleClassifier,
	aggregator DocumentAggregator,
	embedder embedding.Client,
	store VectorStore,
	seen SeenFilter,
	cfg *config.Config,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		collector:  collector,
		classifier: classifier,
		aggregator: aggregator,
		embedder:   embedder,
		store:      store,
		seen:       seen,
		cfg:        cfg,
		logger:     logger,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// Run executes one full batch and returns its tally. Only empty collection
// or classification aborts the run; per-item failures are counted and
// skipped.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := p.logger.With(zap.String("run_id", summary.RunID))
	logger.Info("pipeline run started")

	entries := p.collectTitles(ctx, logger, summary)
	if len(entries) == 0 {
		return summary, fmt.Errorf("pipeline: no titles collected")
	}

	classified := p.classifier.Classify(ctx, entries)
	if len(classified) == 0 {
		return summary, fmt.Errorf("pipeline: title classification failed for the whole batch")
	}

	var kept []board.TitleEntry
	for _, item := range classified {
		if !item.Keep() {
			continue
		}
		if skip := p.alreadySeen(logger, item.Link); skip {
			continue
		}
		kept = append(kept, item.TitleEntry)
	}
	summary.Kept = len(kept)
	logger.Info("titles kept after classification", zap.Int("kept", len(kept)))

	var documents []board.Document
	for i, entry := range kept {
		doc, err := p.aggregator.Aggregate(ctx, entry, i+1)
		if err != nil {
			logger.Error("aggregation failed",
				zap.String("link", entry.Link),
				zap.Error(err))
			summary.Errors++
		} else {
			documents = append(documents, *doc)
			p.markSeen(logger, entry.Link)
			logger.Info("document assembled",
				zap.String("id", doc.ID),
				zap.Int("comments", doc.CommentsCount))
		}
		p.sleep(p.cfg.Board.ItemDelay.Std())
	}
	summary.Aggregated = len(documents)

	if len(documents) > 0 {
		path := filepath.Join(p.cfg.OutputDir, board.DocumentsFilename(p.now()))
		if err := board.SaveDocuments(path, documents); err != nil {
			logger.Error("audit file write failed", zap.Error(err))
			summary.Errors++
		} else {
			summary.File = path
		}

		stored, failed, err := p.Store(ctx, documents)
		summary.Stored = stored
		summary.Errors += failed
		if err != nil {
			logger.Error("vector store write failed", zap.Error(err))
			return summary, err
		}
	}

	logger.Info("pipeline run finished",
		zap.Int("collected", summary.Collected),
		zap.Int("kept", summary.Kept),
		zap.Int("aggregated", summary.Aggregated),
		zap.Int("stored", summary.Stored),
		zap.Int("errors", summary.Errors))
	return summary, nil
}

func (p *Pipeline) collectTitles(ctx context.Context, logger *zap.Logger, summary *Summary) []board.TitleEntry {
	bc := p.cfg.Board
	var entries []board.TitleEntry
	for page := bc.PageStart; page <= bc.PageEnd; page++ {
		rows, err := p.collector.ListTitles(ctx, page, bc.StartIdx, bc.EndIdx)
		if err != nil {
			logger.Error("listing page failed", zap.Int("page", page), zap.Error(err))
			summary.Errors++
		} else {
			entries = append(entries, rows...)
		}
		if page < bc.PageEnd {
			p.sleep(bc.PageDelay.Std())
		}
	}
	summary.Collected = len(entries)
	return entries
}

func (p *Pipeline) alreadySeen(logger *zap.Logger, link string) bool {
	if p.seen == nil {
		return false
	}
	seen, err := p.seen.Seen(link)
	if err != nil {
		logger.Warn("seen lookup failed", zap.String("link", link), zap.Error(err))
		return false
	}
	if seen {
		logger.Info("link already processed, skipping", zap.String("link", link))
	}
	return seen
}

func (p *Pipeline) markSeen(logger *zap.Logger, link string) {
	if p.seen == nil {
		return
	}
	if err := p.seen.Mark(link); err != nil {
		logger.Warn("seen mark failed", zap.String("link", link), zap.Error(err))
	}
}
