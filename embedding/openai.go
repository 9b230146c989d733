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
	openAIDefaultURL = "https://api.openai.com/v1/embeddings"
	openAIModel      = "text-embedding-3-small"
	openAIDimension  = 1536
)

// OpenAI embeds through the hosted embeddings API.
type OpenAI struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewOpenAI(endpoint, apiKey string) *OpenAI {
	if endpoint == "" {
		endpoint = openAIDefaultURL
	}
	return &OpenAI{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (o *OpenAI) Dimension() int { return openAIDimension }
func (o *OpenAI) Model() string  { return openAIModel }

type openAIRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type openAIResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(openAIRequest{Input: text, Model: openAIModel})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("embedding: endpoint returned %d: %s", resp.StatusCode, payload)
	}

	var parsed openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embedding: response has no data")
	}

	vec := parsed.Data[0].Embedding
	if err := Validate(vec, openAIDimension); err != nil {
		return nil, err
	}
	return vec, nil
}
