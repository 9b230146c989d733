// Package api exposes the retrieval chat and collection status over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"hotissue/chat"
	"hotissue/pkg/qdrantdb"
)

// StatusReporter provides the stored-collection view for the status
// endpoint. Satisfied by *qdrantdb.DocumentStore.
type StatusReporter interface {
	Info(ctx context.Context) (*qdrantdb.CollectionInfo, error)
}

type Server struct {
	chat     *chat.Chat
	status   StatusReporter
	defaultK int
	port     string
	logger   *zap.Logger
}

func NewServer(c *chat.Chat, status StatusReporter, defaultK int, port string, logger *zap.Logger) *Server {
	return &Server{
		chat:     c,
		status:   status,
		defaultK: defaultK,
		port:     port,
		logger:   logger,
	}
}

// Start blocks serving HTTP until the listener fails.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", s.chatHandler)
	mux.HandleFunc("/api/status", s.statusHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:         ":" + s.port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	s.logger.Info("API server starting", zap.String("port", s.port))
	return srv.ListenAndServe()
}
