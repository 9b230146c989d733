package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"hotissue/board"
)

// IsIssue values. The polarity is deliberate and must not be "fixed":
// Y marks humor/issue posts that are KEPT for processing, N marks political
// posts that are DISCARDED.
const (
	IssueKeep    = "Y"
	IssueDiscard = "N"
)

// ClassifiedTitle is a TitleEntry tagged by the remote classifier.
type ClassifiedTitle struct {
	board.TitleEntry
	IsIssue string `json:"is_issue"`
}

// Keep reports whether the title proceeds to aggregation.
func (c ClassifiedTitle) Keep() bool { return c.IsIssue == IssueKeep }

const classifierSystemPrompt = "당신은 정치 관련 여부를 분류하는 분류기입니다. " +
	"아래의 게시글 제목 리스트를 정치 관련이면 'N', 아니면 'Y'로 분류하고, " +
	"JSON 리스트만 반환하세요. 설명이나 기타 텍스트는 포함하지 마세요."

const classifierPromptHeader = "다음은 인터넷 게시판의 게시글 제목 목록입니다.\n" +
	"각 제목이 정치 관련(정치, 선거, 정당, 정부, 정치인 등) 게시글인지 아닌지 판단해주세요.\n" +
	"정치 관련이면 'N', 정치가 아니면 유머/이슈 등으로 'Y'로 표시해주세요.\n" +
	"아래와 같은 JSON 리스트 형태로 결과를 반환하세요:\n" +
	"[{\"title\": 제목, \"link\": 링크, \"is_issue\": \"Y 또는 N\"}, ...]\n\n" +
	"제목 목록:\n"

// Classifier tags a batch of titles in a single completion call.
type Classifier struct {
	client *Client
	logger *zap.Logger
}

func NewClassifier(client *Client, logger *zap.Logger) *Classifier {
	return &Classifier{client: client, logger: logger}
}

// Classify submits the whole batch as one prompt and parses the structured
// reply. A non-200 response or an unparseable body fails the whole batch;
// the empty result is the failure signal, not an error callers retry on.
// The remote model does not guarantee order, so results are re-associated
// with inputs by (title, link); fabricated entries are dropped, which also
// bounds the output length by the input length.
func (c *Classifier) Classify(ctx context.Context, entries []board.TitleEntry) []ClassifiedTitle {
	if len(entries) == 0 {
		return nil
	}

	var prompt strings.Builder
	prompt.WriteString(classifierPromptHeader)
	for _, e := range entries {
		fmt.Fprintf(&prompt, "- %s - %s\n", e.Title, e.Link)
	}

	raw, err := c.client.Complete(ctx, classifierSystemPrompt, prompt.String(), Params{})
	if err != nil {
		c.logger.Error("title classification failed", zap.Error(err))
		return nil
	}

	var tagged []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		IsIssue string `json:"is_issue"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &tagged); err != nil {
		c.logger.Error("classifier reply is not a JSON list",
			zap.Error(err),
			zap.String("reply", truncate(raw, 200)))
		return nil
	}

	byKey := make(map[[2]string]board.TitleEntry, len(entries))
	for _, e := range entries {
		byKey[[2]string{e.Title, e.Link}] = e
	}

	seen := make(map[[2]string]bool, len(tagged))
	var out []ClassifiedTitle
	for _, t := range tagged {
		key := [2]string{t.Title, t.Link}
		entry, ok := byKey[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ClassifiedTitle{TitleEntry: entry, IsIssue: t.IsIssue})
	}

	c.logger.Info("titles classified",
		zap.Int("input", len(entries)),
		zap.Int("classified", len(out)))
	return out
}

// stripCodeFence unwraps replies the model put inside a ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
