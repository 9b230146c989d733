package cli

import (
	"github.com/spf13/cobra"

	"hotissue/browser"
	"hotissue/search"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Research a topic outside the board",
}

var (
	youtubeLimit int
	newsLimit    int
)

var youtubeCmd = &cobra.Command{
	Use:   "youtube [keyword]",
	Short: "Search YouTube videos and shorts for a keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runYouTube,
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "List currently trending Google search keywords for Korea",
	RunE:  runTrends,
}

var newsCmd = &cobra.Command{
	Use:   "news [query]",
	Short: "Search Korean news through the Naver open API",
	Args:  cobra.ExactArgs(1),
	RunE:  runNews,
}

var articleCmd = &cobra.Command{
	Use:   "article [url]",
	Short: "Extract the article text from a news page",
	Args:  cobra.ExactArgs(1),
	RunE:  runArticle,
}

func init() {
	youtubeCmd.Flags().IntVarP(&youtubeLimit, "limit", "n", 30, "maximum number of results")
	newsCmd.Flags().IntVarP(&newsLimit, "limit", "n", 10, "maximum number of articles")
	discoverCmd.AddCommand(youtubeCmd)
	discoverCmd.AddCommand(trendsCmd)
	discoverCmd.AddCommand(newsCmd)
	discoverCmd.AddCommand(articleCmd)
	rootCmd.AddCommand(discoverCmd)
}

func runYouTube(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	results, err := search.NewYouTubeSearcher(a.logger).Search(cmd.Context(), args[0], youtubeLimit)
	if err != nil {
		return err
	}

	for _, r := range results {
		cmd.Printf("- [%s] %s\n  %s\n", r.Type, r.Title, r.Href)
	}
	return nil
}

func runTrends(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	fetcher := search.NewTrendsFetcher(browser.NewFetcher(a.logger), a.logger)
	keywords, err := fetcher.TrendingKeywords(cmd.Context())
	if err != nil {
		return err
	}

	for i, kw := range keywords {
		cmd.Printf("%d. %s\n", i+1, kw)
	}
	return nil
}

func runNews(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	client := search.NewNaverNewsClient(a.cfg.NaverClientID, a.cfg.NaverClientSecret, a.logger)
	items, err := client.Search(cmd.Context(), args[0], newsLimit)
	if err != nil {
		return err
	}

	for i, item := range items {
		cmd.Printf("%d. %s\n   %s (%s)\n", i+1, item.Title, item.Link, item.PubDate)
	}
	return nil
}

func runArticle(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	article, err := search.NewArticleExtractor().Extract(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Println(article.Title)
	if article.Byline != "" {
		cmd.Println(article.Byline)
	}
	cmd.Println()
	cmd.Println(article.Content)
	return nil
}
