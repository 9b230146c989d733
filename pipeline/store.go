package pipeline

import (
	"context"

	"go.uber.org/zap"

	"hotissue/board"
	"hotissue/embedding"
	"hotissue/pkg/qdrantdb"
)

// Store embeds documents and upserts them into the vector store. It is the
// reload path for audit JSON files as well as the tail of Run. A document
// whose embedding fails integrity checks is skipped and counted, never
// stored.
func (p *Pipeline) Store(ctx context.Context, documents []board.Document) (stored, failed int, err error) {
	if len(documents) == 0 {
		return 0, 0, nil
	}

	dim := p.embedder.Dimension()
	if err := p.store.EnsureCollection(ctx, dim); err != nil {
		return 0, 0, err
	}

	records := make([]qdrantdb.Record, 0, len(documents))
	for _, doc := range documents {
		text := embedding.BuildText(&doc)
		vec, err := p.embedder.Embed(ctx, text)
		if err == nil {
			err = embedding.Validate(vec, dim)
		}
		if err != nil {
			p.logger.Warn("embedding rejected, document skipped",
				zap.String("id", doc.ID),
				zap.Error(err))
			failed++
			continue
		}
		records = append(records, qdrantdb.Record{
			Doc:    doc,
			Vector: vec,
			Model:  p.embedder.Model(),
		})
	}

	if len(records) == 0 {
		p.logger.Warn("no embeddable documents in batch", zap.Int("failed", failed))
		return 0, failed, nil
	}

	if err := p.store.Upsert(ctx, records); err != nil {
		return 0, failed, err
	}
	return len(records), failed, nil
}
