package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const naverNewsURL = "https://openapi.naver.com/v1/search/news.json"

// NaverNewsClient searches Korean news through the Naver open API. Requires
// an application client id/secret pair.
type NaverNewsClient struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger
}

func NewNaverNewsClient(clientID, clientSecret string, logger *zap.Logger) *NaverNewsClient {
	return &NaverNewsClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

type naverNewsResponse struct {
	Total int          `json:"total"`
	Items []NewsResult `json:"items"`
}

// Search returns up to display news articles for the query, newest ranked
// by Naver's default relevance order.
func (n *NaverNewsClient) Search(ctx context.Context, query string, display int) ([]NewsResult, error) {
	params := url.Values{}
	params.Set("query", query)
	if display > 0 {
		params.Set("display", strconv.Itoa(display))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		naverNewsURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search: new naver request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", n.clientID)
	req.Header.Set("X-Naver-Client-Secret", n.clientSecret)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: naver request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: naver API returned status %d", resp.StatusCode)
	}

	var parsed naverNewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("search: decode naver response: %w", err)
	}

	n.logger.Info("naver news search finished",
		zap.String("query", query),
		zap.Int("total", parsed.Total),
		zap.Int("returned", len(parsed.Items)))
	return parsed.Items, nil
}
