package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tanya-123182/digest-microsite/internal/cache"
	"github.com/Tanya-123182/digest-microsite/internal/interest"
)

var (
	flagBrowseCategory string
	flagBrowseSearch   string
	flagBrowseLimit    int

	flagPruneOlderThan string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse previously fetched articles",
	Long:  "Browse reads from the local article cache, so it works offline and never spends provider quota.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		opts := cache.QueryOpts{Search: flagBrowseSearch, Limit: flagBrowseLimit}
		if flagBrowseCategory != "" {
			cat, err := interest.Resolve(flagBrowseCategory)
			if err != nil {
				return err
			}
			opts.Category = cat
		}

		articles, err := db.Articles(opts)
		if err != nil {
			return fmt.Errorf("reading article cache: %w", err)
		}
		if len(articles) == 0 {
			fmt.Println("Nothing cached yet. Run `digest fetch` first.")
			return nil
		}
		printArticles(articles)
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old articles from the local cache",
	Long: `Delete cached articles older than the retention period.

Uses the retention value from config (default: 30d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, _, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseDays(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d article(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

// parseDays accepts "30d" day syntax on top of time.ParseDuration.
func parseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func init() {
	browseCmd.Flags().StringVar(&flagBrowseCategory, "category", "", "filter by interest category")
	browseCmd.Flags().StringVar(&flagBrowseSearch, "search", "", "filter by title/description substring")
	browseCmd.Flags().IntVar(&flagBrowseLimit, "limit", 0, "maximum articles to show")

	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
}
