package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	miniLMModel     = "all-MiniLM-L6-v2"
	miniLMDimension = 384
)

// MiniLM embeds through a local HuggingFace text-embeddings-inference
// service. The /embed contract takes a list of inputs and returns one
// vector per input.
type MiniLM struct {
	baseURL    string
	httpClient *http.Client
}

func NewMiniLM(baseURL string) *MiniLM {
	return &MiniLM{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (m *MiniLM) Dimension() int { return miniLMDimension }
func (m *MiniLM) Model() string  { return miniLMModel }

type miniLMRequest struct {
	Inputs []string `json:"inputs"`
}

func (m *MiniLM) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(miniLMRequest{Inputs: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("embedding: service returned %d: %s", resp.StatusCode, payload)
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding: response has no vectors")
	}

	vec := vectors[0]
	if err := Validate(vec, miniLMDimension); err != nil {
		return nil, err
	}
	return vec, nil
}
