// Package browser fetches fully rendered pages through a headless Chrome
// session. The target board renders post bodies and comments with client-side
// scripts, so a plain HTTP fetch is not enough.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Wait blocks a fetch until Selector is visible or Timeout elapses. A timed
// out wait degrades to partial content instead of failing the fetch.
type Wait struct {
	Selector string
	Timeout  time.Duration
}

// Click expands lazily loaded sections (paginated comments). Wait bounds how
// long to look for the clickable element; Settle is the fixed delay after a
// successful click.
type Click struct {
	Selector string
	Wait     time.Duration
	Settle   time.Duration
}

// maxClicks caps comment expansion at two rounds per fetch.
const maxClicks = 2

// RenderedPage is the outer HTML of a page after navigation, waits and
// clicks have run.
type RenderedPage struct {
	URL  string
	HTML string
}

// Fetcher launches one browser process per Fetch call and tears it down
// afterwards. Expensive, but it keeps every fetch isolated from session
// state left behind by the previous one.
type Fetcher struct {
	logger      *zap.Logger
	options     []chromedp.ExecAllocatorOption
	navTimeout  time.Duration
	settleDelay time.Duration
}

// NewFetcher builds a Fetcher with headless options.
func NewFetcher(logger *zap.Logger) *Fetcher {
	return &Fetcher{
		logger: logger,
		options: append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.DisableGPU,
			chromedp.NoSandbox,
			chromedp.Headless,
			chromedp.WindowSize(1920, 1080),
			chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
		),
		navTimeout:  60 * time.Second,
		settleDelay: 3 * time.Second,
	}
}

// Fetch navigates to url, applies each wait and click in order and returns
// the rendered outer HTML. Navigation failure is the only hard error; wait
// and click failures are logged and skipped.
func (f *Fetcher) Fetch(ctx context.Context, url string, waits []Wait, clicks []Click) (*RenderedPage, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, f.options...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()
	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, f.navTimeout)
	defer timeoutCancel()

	if err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": "ko-KR,ko;q=0.9,en-US;q=0.8",
		}),
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(f.settleDelay),
	); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", url, err)
	}

	for _, w := range waits {
		waitCtx, cancel := context.WithTimeout(taskCtx, w.Timeout)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(w.Selector, chromedp.ByQuery))
		cancel()
		if err != nil {
			f.logger.Warn("wait timed out, continuing with partial content",
				zap.String("url", url),
				zap.String("selector", w.Selector),
				zap.Duration("timeout", w.Timeout))
		}
	}

	n := len(clicks)
	if n > maxClicks {
		n = maxClicks
	}
	for _, c := range clicks[:n] {
		clickCtx, cancel := context.WithTimeout(taskCtx, c.Wait)
		err := chromedp.Run(clickCtx,
			chromedp.WaitVisible(c.Selector, chromedp.ByQuery),
			chromedp.Click(c.Selector, chromedp.ByQuery),
		)
		cancel()
		if err != nil {
			f.logger.Debug("click skipped",
				zap.String("url", url),
				zap.String("selector", c.Selector),
				zap.Error(err))
			continue
		}
		if err := chromedp.Run(taskCtx, chromedp.Sleep(c.Settle)); err != nil {
			return nil, fmt.Errorf("browser: settle after click: %w", err)
		}
	}

	var html string
	if err := chromedp.Run(taskCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("browser: read DOM %s: %w", url, err)
	}

	f.logger.Info("page fetched",
		zap.String("url", url),
		zap.Int("dom_length", len(html)))

	return &RenderedPage{URL: url, HTML: html}, nil
}
