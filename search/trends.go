package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"hotissue/browser"
)

// Google Trends renders its keyword list client-side, so this goes through
// the browser fetcher rather than a plain HTTP get.
const (
	trendsURL         = "https://trends.google.co.kr/trending?geo=KR&sort=recency"
	trendKeywordSel   = "div.mZ3RIc"
	trendsWaitTimeout = 15 * time.Second
)

type TrendsFetcher struct {
	fetcher *browser.Fetcher
	logger  *zap.Logger
}

func NewTrendsFetcher(fetcher *browser.Fetcher, logger *zap.Logger) *TrendsFetcher {
	return &TrendsFetcher{fetcher: fetcher, logger: logger}
}

// TrendingKeywords returns the currently trending search keywords for Korea,
// most recent first.
func (t *TrendsFetcher) TrendingKeywords(ctx context.Context) ([]string, error) {
	page, err := t.fetcher.Fetch(ctx, trendsURL,
		[]browser.Wait{{Selector: trendKeywordSel, Timeout: trendsWaitTimeout}},
		nil)
	if err != nil {
		return nil, fmt.Errorf("search: fetch trends page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("search: parse trends page: %w", err)
	}

	var keywords []string
	doc.Find(trendKeywordSel).Each(func(_ int, s *goquery.Selection) {
		if kw := strings.TrimSpace(s.Text()); kw != "" {
			keywords = append(keywords, kw)
		}
	})

	t.logger.Info("trending keywords fetched", zap.Int("count", len(keywords)))
	return keywords, nil
}
