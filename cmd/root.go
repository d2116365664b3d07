// Package cmd wires the command surface: fetching news, browsing the local
// article cache, saving and rating articles, and managing user data.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tanya-123182/digest-microsite/internal/cache"
	"github.com/Tanya-123182/digest-microsite/internal/config"
	"github.com/Tanya-123182/digest-microsite/internal/news"
	"github.com/Tanya-123182/digest-microsite/internal/store"
	"github.com/Tanya-123182/digest-microsite/internal/summarize"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagDataDir string
)

var rootCmd = &cobra.Command{
	Use:   "digest",
	Short: "Personal news digest with AI summaries",
	Long: `digest pulls articles matching your interests from NewsAPI, optionally
enriches them with Gemini summaries, and keeps your saved articles, ratings,
and preferences as local files.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the user data directory")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(headlinesCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(unsaveCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(ratingsCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dataCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("digest %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	config.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.New(cfg.ResolvedDataDir())
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}
	return s, nil
}

func openCache() (*cache.Cache, string, error) {
	dbPath := config.CachePath()
	db, err := cache.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening article cache: %w", err)
	}
	return db, dbPath, nil
}

func newNewsClient() (*news.Client, error) {
	return news.NewClient(config.NewsAPIKey())
}

func newSummarizer() (*summarize.Client, error) {
	return summarize.NewClient(config.GeminiAPIKey())
}
