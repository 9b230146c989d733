// Package search finds related material for a trending topic outside the
// board itself: YouTube videos and shorts, Google Trends keywords, Naver news
// articles and full article text. These feeds are inputs for manual topic
// research, they do not feed the ingest pipeline.
package search

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// VideoResult is one YouTube search hit. Type is "video" or "shorts".
type VideoResult struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Href  string `json:"href"`
}

// NewsResult is one Naver news API hit. Title and Description may carry the
// API's <b> highlight tags.
type NewsResult struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}
