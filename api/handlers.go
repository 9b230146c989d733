package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"hotissue/chat"
)

// ChatRequest asks one question against the stored documents. TopK falls
// back to the server default when omitted.
type ChatRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type ChatResponse struct {
	Answer  string        `json:"answer"`
	Sources []chat.Source `json:"sources"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	k := req.TopK
	if k <= 0 {
		k = s.defaultK
	}

	answer, sources, err := s.chat.Ask(r.Context(), req.Question, k)
	if err != nil {
		s.logger.Error("chat request failed", zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to answer question: %v", err), http.StatusInternalServerError)
		return
	}

	if sources == nil {
		sources = []chat.Source{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{Answer: answer, Sources: sources})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info, err := s.status.Info(r.Context())
	if err != nil {
		s.logger.Error("status request failed", zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to read collection info: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}
