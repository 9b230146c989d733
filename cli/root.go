// Package cli wires the application together and exposes it as subcommands:
// one-shot and scheduled ingest, storage maintenance, the retrieval chat and
// the topic discovery helpers.
package cli

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hotissue/api"
	"hotissue/board"
	"hotissue/browser"
	"hotissue/chat"
	"hotissue/config"
	"hotissue/embedding"
	"hotissue/llm"
	"hotissue/pipeline"
	"hotissue/pkg/qdrantdb"
	"hotissue/pkg/seenstore"
)

var rootCmd = &cobra.Command{
	Use:           "hotissue",
	Short:         "Collect, analyze and search theqoo hot board posts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries the shared dependencies a command needs. Commands build only
// the parts they use via the build* helpers.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newApp() (*app, error) {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) close() {
	a.logger.Sync()
}

func (a *app) buildStore() (*qdrantdb.DocumentStore, error) {
	// =========
	// Qdrant vector
	// =========
	qc, err := qdrantdb.NewClient(a.cfg.QdrantHost, a.cfg.QdrantPort, a.cfg.QdrantAPIKey)
	if err != nil {
		return nil, fmt.Errorf("initialize qdrant client: %w", err)
	}
	return qdrantdb.NewDocumentStore(qc, a.cfg.CollectionName, a.logger), nil
}

func (a *app) buildEmbedder() embedding.Client {
	// =========
	// Embedding Client
	// =========
	if a.cfg.EmbeddingBackend == config.BackendMiniLM {
		return embedding.NewMiniLM(a.cfg.MiniLMURL)
	}
	return embedding.NewOpenAI("", a.cfg.OpenAIAPIKey)
}

func (a *app) buildLLM() *llm.Client {
	// =========
	// LLM Client
	// =========
	return llm.NewClient("", a.cfg.Chat.Model, a.cfg.PerplexityAPIKey)
}

func (a *app) buildPipeline(seen pipeline.SeenFilter) (*pipeline.Pipeline, error) {
	// =========
	// Chromedp
	// =========
	fetcher := browser.NewFetcher(a.logger)

	// =========
	// Board collect + aggregate
	// =========
	llmClient := a.buildLLM()
	collector := board.NewCollector(fetcher, a.cfg.Board, a.logger)
	summarizer := llm.NewSummarizer(llmClient, a.logger)
	aggregator := board.NewAggregator(fetcher, summarizer, a.cfg.Board.MaxComments, a.logger)
	classifier := llm.NewClassifier(llmClient, a.logger)

	store, err := a.buildStore()
	if err != nil {
		return nil, err
	}

	return pipeline.New(collector, classifier, aggregator,
		a.buildEmbedder(), store, seen, a.cfg, a.logger), nil
}

func (a *app) openSeenStore() (*seenstore.Store, error) {
	return seenstore.Open(a.cfg.SeenDBPath)
}

func (a *app) buildChat() (*chat.Chat, *qdrantdb.DocumentStore, error) {
	store, err := a.buildStore()
	if err != nil {
		return nil, nil, err
	}
	c := chat.New(store, a.buildEmbedder(), a.buildLLM(), a.logger)
	return c, store, nil
}

func (a *app) buildServer() (*api.Server, error) {
	c, store, err := a.buildChat()
	if err != nil {
		return nil, err
	}
	return api.NewServer(c, store, a.cfg.Chat.TopK, strconv.Itoa(a.cfg.APIPort), a.logger), nil
}
