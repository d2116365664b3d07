package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tanya-123182/digest-microsite/internal/cache"
	"github.com/Tanya-123182/digest-microsite/internal/config"
	"github.com/Tanya-123182/digest-microsite/internal/interest"
	"github.com/Tanya-123182/digest-microsite/internal/news"
	"github.com/Tanya-123182/digest-microsite/internal/store"
)

var (
	flagFetchInterests []string
	flagFetchFrequency string
	flagFetchSummarize bool

	flagHeadlinesCountry  string
	flagHeadlinesCategory string

	flagSourcesCategory string
)

// batchDelay spaces out generative-backend calls during enrichment.
const batchDelay = time.Second

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch articles matching your interests",
	Long: `Fetch pulls fresh articles for each of your interests over the configured
window (daily or weekly), tags them, and stores them in the local article
cache. Interests and frequency come from saved preferences, then the config
file, then flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		client, err := newNewsClient()
		if err != nil {
			return err
		}

		interests, freq, err := resolveFetchScope(cfg, s)
		if err != nil {
			return err
		}
		if len(interests) == 0 {
			return fmt.Errorf("no interests selected; set them with `digest prefs --interests ...`")
		}

		articles := client.FetchByInterests(cmd.Context(), interests, freq)
		if len(articles) == 0 {
			fmt.Println("No articles found. The provider may be unavailable; try again later.")
			return nil
		}

		if flagFetchSummarize {
			summarizer, err := newSummarizer()
			if err != nil {
				return err
			}
			fmt.Printf("Summarizing %d article(s)...\n", len(articles))
			articles = summarizer.BatchSummarize(cmd.Context(), articles, batchDelay)
		}

		db, _, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.UpsertArticles(articles, time.Now()); err != nil {
			return fmt.Errorf("caching articles: %w", err)
		}
		if err := db.SetLastRefresh(); err != nil {
			return fmt.Errorf("recording refresh: %w", err)
		}

		s.AppendEvent("fetch", map[string]any{
			"interests": interests,
			"frequency": string(freq),
			"articles":  len(articles),
		})

		printArticles(articles)
		return nil
	},
}

// resolveFetchScope picks interests and frequency: flags win, then saved
// preferences, then the config file.
func resolveFetchScope(cfg *config.Config, s *store.Store) ([]string, interest.Frequency, error) {
	names := flagFetchInterests
	freqInput := flagFetchFrequency

	if len(names) == 0 || freqInput == "" {
		prefs := s.LoadPreferences()
		if len(names) == 0 {
			names = prefs.Interests
		}
		if freqInput == "" {
			freqInput = prefs.Frequency
		}
	}
	if len(names) == 0 {
		names = cfg.Interests
	}
	if freqInput == "" {
		freqInput = cfg.Frequency
	}

	freq, err := interest.ParseFrequency(freqInput)
	if err != nil {
		return nil, "", err
	}

	resolved := make([]string, 0, len(names))
	for _, name := range names {
		cat, err := interest.Resolve(name)
		if err != nil {
			return nil, "", err
		}
		resolved = append(resolved, cat)
	}
	return resolved, freq, nil
}

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Show top headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newNewsClient()
		if err != nil {
			return err
		}

		country := flagHeadlinesCountry
		if country == "" {
			country = cfg.Country
		}
		articles, err := client.TopHeadlines(cmd.Context(), news.HeadlinesParams{
			Country:  country,
			Category: flagHeadlinesCategory,
		})
		if err != nil {
			fmt.Println(faintStyle.Render("Headlines unavailable: " + err.Error()))
			return nil
		}
		printArticles(articles)
		return nil
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available news sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newNewsClient()
		if err != nil {
			return err
		}

		sources, err := client.Sources(cmd.Context(), news.SourceParams{
			Category: flagSourcesCategory,
			Language: cfg.Language,
			Country:  cfg.Country,
		})
		if err != nil {
			fmt.Println(faintStyle.Render("Sources unavailable: " + err.Error()))
			return nil
		}
		for _, src := range sources {
			fmt.Printf("%s %s\n", labelStyle.Render(src.Name), faintStyle.Render("("+src.Category+")"))
			if src.Description != "" {
				fmt.Println("  " + src.Description)
			}
		}
		return nil
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarize the latest fetch into a short digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		summarizer, err := newSummarizer()
		if err != nil {
			return err
		}
		db, _, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		articles, err := db.Articles(cache.QueryOpts{Limit: 10})
		if err != nil {
			return fmt.Errorf("reading article cache: %w", err)
		}

		fmt.Println(headingStyle.Render("Today's digest"))
		fmt.Println(summarizer.DigestSummary(cmd.Context(), articles))
		return nil
	},
}

func printArticles(articles []news.Article) {
	for _, a := range articles {
		fmt.Println(labelStyle.Render(a.Title))
		meta := a.Source
		if a.Category != "" {
			meta += " · " + tagStyle.Render(a.Category)
		}
		if a.ReadingTime > 0 {
			meta += fmt.Sprintf(" · %d min", a.ReadingTime)
		}
		fmt.Println("  " + meta)
		if a.AISummary != "" {
			fmt.Println("  " + a.AISummary)
		} else if a.Description != "" {
			fmt.Println("  " + a.Description)
		}
		points := a.KeyPoints
		if len(points) > 3 {
			points = points[:3]
		}
		for _, p := range points {
			fmt.Println("    - " + p)
		}
		fmt.Println("  " + faintStyle.Render(a.URL))
		fmt.Println()
	}
	fmt.Printf("%d article(s)\n", len(articles))
}

func init() {
	fetchCmd.Flags().StringSliceVar(&flagFetchInterests, "interests", nil, "interests to fetch (default: saved preferences)")
	fetchCmd.Flags().StringVar(&flagFetchFrequency, "frequency", "", "fetch window: daily or weekly")
	fetchCmd.Flags().BoolVar(&flagFetchSummarize, "summarize", false, "enrich articles with AI summaries")

	headlinesCmd.Flags().StringVar(&flagHeadlinesCountry, "country", "", "two-letter country code")
	headlinesCmd.Flags().StringVar(&flagHeadlinesCategory, "category", "", "provider headline category")

	sourcesCmd.Flags().StringVar(&flagSourcesCategory, "category", "", "provider source category")
}
