package board

import (
	"context"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"hotissue/browser"
)

const (
	datetimeSelector   = "div.side.fr"
	contentSelector    = ".xe_content"
	moreButtonSelector = ".show_more"
	commentSelector    = "ul.fdb_lst_ul > li"

	// Comments carrying this marker are guest placeholders, not content.
	guestMarker = "비회원"
)

// Summarizer turns a post into free-text analysis. Satisfied by
// *llm.Summarizer. The returned string is always valid Document content,
// even when it reports an upstream error.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string, comments []string) string
}

// Aggregator assembles a Document per kept title: timestamp fetch, body and
// comment fetch, then summarization.
type Aggregator struct {
	fetcher     PageFetcher
	summarizer  Summarizer
	maxComments int
	logger      *zap.Logger
}

func NewAggregator(fetcher PageFetcher, summarizer Summarizer, maxComments int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		summarizer:  summarizer,
		maxComments: maxComments,
		logger:      logger,
	}
}

// Aggregate builds the Document for one classified title. Field-level
// extraction failures degrade to empty values; only a failed page fetch for
// the body aborts the item. seq feeds the generated document id.
func (a *Aggregator) Aggregate(ctx context.Context, entry TitleEntry, seq int) (*Document, error) {
	postDatetime := a.fetchPostDatetime(ctx, entry.Link)

	content, comments, err := a.fetchContentAndComments(ctx, entry.Link)
	if err != nil {
		return nil, err
	}

	analysis := a.summarizer.Summarize(ctx, entry.Title, content, comments)

	date := entry.CollectedDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	return &Document{
		ID:            DocumentID(date, seq),
		Title:         entry.Title,
		Link:          entry.Link,
		PageNum:       entry.PageNum,
		PostDatetime:  postDatetime,
		Content:       content,
		Comments:      comments,
		CommentsCount: len(comments),
		Analysis:      analysis,
		CollectedDate: date,
	}, nil
}

// fetchPostDatetime reads the free-form timestamp next to the post header.
// Any failure degrades to "".
func (a *Aggregator) fetchPostDatetime(ctx context.Context, link string) string {
	page, err := a.fetcher.Fetch(ctx, link,
		[]browser.Wait{{Selector: datetimeSelector, Timeout: 10 * time.Second}}, nil)
	if err != nil {
		a.logger.Warn("post datetime fetch failed", zap.String("link", link), zap.Error(err))
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		a.logger.Warn("post datetime parse failed", zap.String("link", link), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(doc.Find(datetimeSelector + " span").First().Text())
}

// fetchContentAndComments renders the post with two comment-expansion click
// rounds and extracts body markdown plus comment texts.
func (a *Aggregator) fetchContentAndComments(ctx context.Context, link string) (string, []string, error) {
	page, err := a.fetcher.Fetch(ctx, link,
		[]browser.Wait{{Selector: contentSelector, Timeout: 10 * time.Second}},
		[]browser.Click{
			{Selector: moreButtonSelector, Wait: 3 * time.Second, Settle: time.Second},
			{Selector: moreButtonSelector, Wait: 2 * time.Second, Settle: time.Second},
		})
	if err != nil {
		return "", nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		a.logger.Warn("post parse failed", zap.String("link", link), zap.Error(err))
		return "", nil, nil
	}

	content := a.extractBody(doc, link)
	comments := a.extractComments(doc)
	return content, comments, nil
}

// extractBody converts the article HTML to markdown so the summarizer sees
// structure instead of collapsed text. Falls back to plain text when the
// conversion fails.
func (a *Aggregator) extractBody(doc *goquery.Document, link string) string {
	body := doc.Find(contentSelector).First()
	if body.Length() == 0 {
		a.logger.Warn("post body not found", zap.String("link", link))
		return ""
	}
	html, err := body.Html()
	if err != nil {
		return strings.TrimSpace(body.Text())
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		a.logger.Debug("markdown conversion failed, using plain text",
			zap.String("link", link), zap.Error(err))
		return strings.TrimSpace(body.Text())
	}
	return strings.TrimSpace(md)
}

// extractComments keeps extraction order, drops guest placeholders and
// truncates at the configured maximum.
func (a *Aggregator) extractComments(doc *goquery.Document) []string {
	var comments []string
	doc.Find(commentSelector).EachWithBreak(func(_ int, li *goquery.Selection) bool {
		text := strings.TrimSpace(li.Find("div" + contentSelector).First().Text())
		if text != "" && !strings.Contains(text, guestMarker) {
			comments = append(comments, text)
		}
		return len(comments) < a.maxComments
	})
	return comments
}
