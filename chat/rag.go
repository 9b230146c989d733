// Package chat answers questions from stored board documents: embed the
// query, retrieve top-k similar documents, assemble a context block and ask
// the generation endpoint to answer only from that context. Each call is
// independent; there is no conversation memory.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"hotissue/embedding"
	"hotissue/llm"
	"hotissue/pkg/qdrantdb"
)

// Searcher is the vector search capability. Satisfied by
// *qdrantdb.DocumentStore.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]qdrantdb.SearchResult, error)
}

// Generator produces the final answer. Satisfied by *llm.Client.
type Generator interface {
	Complete(ctx context.Context, systemMsg, userMsg string, params llm.Params) (string, error)
}

const ragSystemPrompt = "당신은 theqoo 게시판의 정보를 바탕으로 질문에 답변하는 도우미입니다. " +
	"친근하고 자연스럽게 답변해주세요."

const (
	noResultsAnswer  = "죄송합니다. 관련된 문서를 찾을 수 없습니다."
	generationFailed = "응답 생성 중 오류가 발생했습니다: "
)

// Source identifies one supporting document of an answer.
type Source struct {
	Title string  `json:"title"`
	Link  string  `json:"link"`
	Score float32 `json:"score"`
}

// Chat is the retrieval-augmented read path. The embedder must be the same
// backend the collection was built with; a mismatched backend does not fail
// loudly, it silently degrades relevance.
type Chat struct {
	searcher  Searcher
	embedder  embedding.Client
	generator Generator
	logger    *zap.Logger
}

func New(searcher Searcher, embedder embedding.Client, generator Generator, logger *zap.Logger) *Chat {
	return &Chat{searcher: searcher, embedder: embedder, generator: generator, logger: logger}
}

// Ask answers one query from the top-k stored documents. Generation
// endpoint failures are surfaced as a displayed message string, not an
// error, so the interaction never crashes on them.
func (c *Chat) Ask(ctx context.Context, query string, k int) (string, []Source, error) {
	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("chat: embed query: %w", err)
	}

	results, err := c.searcher.Search(ctx, vec, k)
	if err != nil {
		return "", nil, fmt.Errorf("chat: search: %w", err)
	}
	if len(results) == 0 {
		return noResultsAnswer, nil, nil
	}

	sources := make([]Source, len(results))
	for i, r := range results {
		sources[i] = Source{Title: r.Doc.Title, Link: r.Doc.Link, Score: r.Score}
	}

	prompt := buildPrompt(query, BuildContext(results))
	answer, err := c.generator.Complete(ctx, ragSystemPrompt, prompt, llm.Params{})
	if err != nil {
		c.logger.Error("answer generation failed", zap.Error(err))
		return generationFailed + err.Error(), sources, nil
	}

	c.logger.Info("question answered",
		zap.Int("documents", len(results)),
		zap.Int("answer_length", len(answer)))
	return answer, sources, nil
}

// BuildContext renders the retrieved documents into the context block the
// generator answers from.
func BuildContext(results []qdrantdb.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, `
문서 %d (유사도 점수: %.3f):
제목: %s
링크: %s
작성일시: %s
내용: %s...
분석: %s...
댓글 수: %d개
---`,
			i+1, r.Score,
			r.Doc.Title,
			r.Doc.Link,
			orNA(r.Doc.PostDatetime),
			truncateRunes(r.Doc.Content, 300),
			truncateRunes(r.Doc.Analysis, 500),
			r.Doc.CommentsCount)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildPrompt(query, context string) string {
	return fmt.Sprintf(`
다음은 theqoo 게시판의 문서들입니다. 이 정보를 바탕으로 사용자의 질문에 답변해주세요.

=== 컨텍스트 ===
%s

=== 사용자 질문 ===
%s

위의 컨텍스트를 바탕으로 사용자의 질문에 친근하고 자연스럽게 답변해주세요.
답변할 때는 관련된 문서의 정보를 언급하고, 필요하면 링크도 제공해주세요.
한국어로 답변해주세요.
`, context, query)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
