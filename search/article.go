package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Article is the reader-view extraction of a news page.
type Article struct {
	Title   string `json:"title"`
	Byline  string `json:"byline,omitempty"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// ArticleExtractor fetches a news page and strips it down to the article
// text. News sites vary too much for fixed selectors, readability's scoring
// handles the variation.
type ArticleExtractor struct {
	httpClient *http.Client
}

func NewArticleExtractor() *ArticleExtractor {
	return &ArticleExtractor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *ArticleExtractor) Extract(ctx context.Context, rawURL string) (*Article, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("search: parse article url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("search: new article request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: article fetch returned status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, fmt.Errorf("search: extract article: %w", err)
	}

	return &Article{
		Title:   article.Title,
		Byline:  article.Byline,
		Content: article.TextContent,
		URL:     rawURL,
	}, nil
}
