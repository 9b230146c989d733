package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// AnalysisErrorPrefix marks an analysis string that reports an endpoint
// failure instead of real analysis. Callers store it as regular Document
// content; the prefix is the only way to tell the two apart.
const AnalysisErrorPrefix = "분석 중 오류 발생: "

const summarizerSystemPrompt = "상세한 설명과 함께 반드시 출처를 인용해 답변하세요."

const noCommentsPlaceholder = "댓글이 없습니다."

// Summarizer asks the generation endpoint for a cited, source-grounded
// summary of one post.
type Summarizer struct {
	client *Client
	logger *zap.Logger
}

func NewSummarizer(client *Client, logger *zap.Logger) *Summarizer {
	return &Summarizer{client: client, logger: logger}
}

// Summarize never returns an error: transport and endpoint failures come
// back as a human-readable string carrying AnalysisErrorPrefix, which the
// caller treats as valid analysis content.
func (s *Summarizer) Summarize(ctx context.Context, title, content string, comments []string) string {
	commentsText := noCommentsPlaceholder
	if len(comments) > 0 {
		commentsText = strings.Join(comments, "\n")
	}

	var full strings.Builder
	fmt.Fprintf(&full, "제목: %s\n\n", title)
	if content != "" {
		fmt.Fprintf(&full, "본문: %s\n\n", content)
	}
	fmt.Fprintf(&full, "댓글:\n%s", commentsText)

	user := "이 제목과 댓글을 읽고 최근에 관련 내용의 기사와 이벤트를 찾아서 요약 정리 해줘\n\n" + full.String()

	analysis, err := s.client.Complete(ctx, summarizerSystemPrompt, user, Params{
		MaxTokens:   800,
		Temperature: 0.5,
	})
	if err != nil {
		s.logger.Error("analysis failed",
			zap.String("title", truncate(title, 30)),
			zap.Error(err))
		return AnalysisErrorPrefix + err.Error()
	}
	return analysis
}
