package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// YouTube search results are rendered client-side, but the initial result
// set ships embedded in the page as the ytInitialData script variable, so a
// plain HTTP fetch is enough.
const (
	youtubeSearchURL = "https://www.youtube.com/results?search_query=%s&sp=EgQIAhAB"
	ytDataMarker     = "var ytInitialData = "
)

type YouTubeSearcher struct {
	logger *zap.Logger
}

func NewYouTubeSearcher(logger *zap.Logger) *YouTubeSearcher {
	return &YouTubeSearcher{logger: logger}
}

// Search returns up to limit videos and shorts for the keyword, in the order
// YouTube ranks them. Items whose renderer shape is unknown are skipped.
func (y *YouTubeSearcher) Search(ctx context.Context, keyword string, limit int) ([]VideoResult, error) {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)

	var (
		results  []VideoResult
		parseErr error
	)
	c.OnResponse(func(r *colly.Response) {
		results, parseErr = parseInitialData(r.Body)
	})

	target := fmt.Sprintf(youtubeSearchURL, url.QueryEscape(keyword))
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("search: fetch youtube results: %w", err)
	}
	c.Wait()
	if parseErr != nil {
		return nil, fmt.Errorf("search: parse youtube results: %w", parseErr)
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	y.logger.Info("youtube search finished",
		zap.String("keyword", keyword),
		zap.Int("results", len(results)))
	return results, nil
}

type ytInitialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer struct {
							Contents []json.RawMessage `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

type ytResultItem struct {
	VideoRenderer *struct {
		VideoID string `json:"videoId"`
		Title   struct {
			Runs []struct {
				Text string `json:"text"`
			} `json:"runs"`
		} `json:"title"`
	} `json:"videoRenderer"`
	ReelWatchEndpoint *struct {
		VideoID  string `json:"videoId"`
		Headline struct {
			SimpleText string `json:"simpleText"`
		} `json:"headline"`
	} `json:"reelWatchEndpoint"`
}

func parseInitialData(body []byte) ([]VideoResult, error) {
	raw, err := extractInitialData(string(body))
	if err != nil {
		return nil, err
	}

	var data ytInitialData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decode ytInitialData: %w", err)
	}

	var results []VideoResult
	for _, section := range data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents {
		for _, rawItem := range section.ItemSectionRenderer.Contents {
			var item ytResultItem
			if err := json.Unmarshal(rawItem, &item); err != nil {
				continue
			}
			switch {
			case item.VideoRenderer != nil && len(item.VideoRenderer.Title.Runs) > 0:
				results = append(results, VideoResult{
					Type:  "video",
					Title: item.VideoRenderer.Title.Runs[0].Text,
					Href:  "https://www.youtube.com/watch?v=" + item.VideoRenderer.VideoID,
				})
			case item.ReelWatchEndpoint != nil:
				results = append(results, VideoResult{
					Type:  "shorts",
					Title: item.ReelWatchEndpoint.Headline.SimpleText,
					Href:  "https://www.youtube.com/shorts/" + item.ReelWatchEndpoint.VideoID,
				})
			}
		}
	}
	return results, nil
}

// extractInitialData pulls the JSON object assigned to ytInitialData out of
// the page source. The object ends at the first "};" after the marker.
func extractInitialData(page string) (string, error) {
	start := strings.Index(page, ytDataMarker)
	if start < 0 {
		return "", fmt.Errorf("ytInitialData not found in page")
	}
	rest := page[start+len(ytDataMarker):]
	end := strings.Index(rest, "};")
	if end < 0 {
		return "", fmt.Errorf("ytInitialData is not terminated")
	}
	return rest[:end+1], nil
}
