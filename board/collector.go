package board

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"hotissue/browser"
	"hotissue/config"
)

// PageFetcher is the rendered-page capability the board packages consume.
// Satisfied by *browser.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, waits []browser.Wait, clicks []browser.Click) (*browser.RenderedPage, error)
}

const listingSelector = ".hide_notice"

// Collector walks the paginated hot listing and lifts (title, link) pairs.
type Collector struct {
	fetcher PageFetcher
	cfg     config.BoardConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewCollector(fetcher PageFetcher, cfg config.BoardConfig, logger *zap.Logger) *Collector {
	return &Collector{fetcher: fetcher, cfg: cfg, logger: logger, now: time.Now}
}

// ListTitles fetches one listing page and returns the rows in [start, end),
// clamped to the extracted row count. The .hide_notice container already
// excludes pinned notice rows; rows without an extractable title are skipped
// silently. Repeated calls may yield duplicates; dedup is the caller's
// business.
func (c *Collector) ListTitles(ctx context.Context, pageNum, start, end int) ([]TitleEntry, error) {
	listURL := fmt.Sprintf(c.cfg.ListURLTemplate, pageNum)
	page, err := c.fetcher.Fetch(ctx, listURL,
		[]browser.Wait{{Selector: listingSelector, Timeout: 10 * time.Second}}, nil)
	if err != nil {
		return nil, fmt.Errorf("board: fetch listing page %d: %w", pageNum, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("board: parse listing page %d: %w", pageNum, err)
	}

	base, err := url.Parse(listURL)
	if err != nil {
		return nil, fmt.Errorf("board: parse listing url: %w", err)
	}

	date := c.now().Format("2006-01-02")
	var entries []TitleEntry
	doc.Find(listingSelector + " tr").Each(func(_ int, tr *goquery.Selection) {
		a := tr.Find("td.title a").First()
		title := strings.TrimSpace(a.Text())
		href, ok := a.Attr("href")
		if title == "" || !ok {
			return
		}
		entries = append(entries, TitleEntry{
			Title:         title,
			Link:          resolveLink(base, href),
			PageNum:       pageNum,
			CollectedDate: date,
		})
	})

	c.logger.Info("listing collected",
		zap.Int("page", pageNum),
		zap.Int("rows", len(entries)))

	if start < 0 {
		start = 0
	}
	if end > len(entries) {
		end = len(entries)
	}
	if start >= end {
		return nil, nil
	}
	return entries[start:end], nil
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
