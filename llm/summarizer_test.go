package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSummarizer_PromptLayout(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "요약된 분석"}},
			},
		})
	}))
	defer srv.Close()

	s := NewSummarizer(NewClient(srv.URL, "sonar", "key"), zap.NewNop())
	got := s.Summarize(context.Background(), "제목입니다", "본문입니다", []string{"댓글1", "댓글2"})

	if got != "요약된 분석" {
		t.Errorf("analysis = %q", got)
	}

	var req struct {
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if req.MaxTokens != 800 {
		t.Errorf("max_tokens = %d, want 800", req.MaxTokens)
	}
	if req.Temperature != 0.5 {
		t.Errorf("temperature = %v, want 0.5", req.Temperature)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %d, want system+user", len(req.Messages))
	}
	user := req.Messages[1].Content
	for _, want := range []string{"제목: 제목입니다", "본문: 본문입니다", "댓글:\n댓글1\n댓글2"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestSummarizer_NoComments(t *testing.T) {
	var userPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		userPrompt = req.Messages[1].Content
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	s := NewSummarizer(NewClient(srv.URL, "sonar", "key"), zap.NewNop())
	s.Summarize(context.Background(), "제목", "", nil)

	if !strings.Contains(userPrompt, "댓글이 없습니다.") {
		t.Errorf("prompt should carry the no-comments placeholder, got %q", userPrompt)
	}
	if strings.Contains(userPrompt, "본문:") {
		t.Errorf("empty content should be omitted from the prompt")
	}
}

func TestSummarizer_ErrorBecomesAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewSummarizer(NewClient(srv.URL, "sonar", "key"), zap.NewNop())
	got := s.Summarize(context.Background(), "제목", "본문", nil)

	if !strings.HasPrefix(got, AnalysisErrorPrefix) {
		t.Errorf("failure analysis = %q, want %q prefix", got, AnalysisErrorPrefix)
	}
}
