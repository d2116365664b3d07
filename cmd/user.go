package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tanya-123182/digest-microsite/internal/interest"
)

var (
	flagRateComment string

	flagPrefsInterests     []string
	flagPrefsFrequency     string
	flagPrefsTheme         string
	flagPrefsNotifications string
)

var saveCmd = &cobra.Command{
	Use:   "save <url>",
	Short: "Save a fetched article for later",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		db, _, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		url := args[0]
		article, ok, err := db.Get(url)
		if err != nil {
			return fmt.Errorf("reading article cache: %w", err)
		}
		if !ok {
			return fmt.Errorf("article %s is not in the cache; fetch it first", url)
		}

		if !s.SaveArticle(article) {
			fmt.Println("Already saved.")
			return nil
		}
		s.AppendEvent("save", map[string]any{"url": url, "category": article.Category})
		fmt.Printf("Saved %q.\n", article.Title)
		return nil
	},
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List saved articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}

		saved := s.SavedArticles()
		if len(saved) == 0 {
			fmt.Println("No saved articles.")
			return nil
		}
		for _, a := range saved {
			fmt.Println(labelStyle.Render(a.Title))
			meta := a.Source
			if a.Category != "" {
				meta += " · " + tagStyle.Render(a.Category)
			}
			if r, ok := s.Rating(a.URL); ok {
				meta += fmt.Sprintf(" · %s", strings.Repeat("★", r.Rating))
			}
			fmt.Println("  " + meta)
			fmt.Println("  " + faintStyle.Render(a.URL))
		}
		fmt.Printf("%d saved article(s)\n", len(saved))
		return nil
	},
}

var unsaveCmd = &cobra.Command{
	Use:   "unsave <url>",
	Short: "Remove an article from the saved list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		if !s.RemoveSavedArticle(args[0]) {
			return fmt.Errorf("could not update the saved list")
		}
		fmt.Println("Removed.")
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <url> <1-5>",
	Short: "Rate an article",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}

		rating, err := strconv.Atoi(args[1])
		if err != nil || rating < 1 || rating > 5 {
			return fmt.Errorf("rating must be an integer from 1 to 5")
		}
		if !s.SaveRating(args[0], rating, flagRateComment) {
			return fmt.Errorf("could not save the rating")
		}
		s.AppendEvent("rate", map[string]any{"url": args[0], "rating": rating})
		fmt.Printf("Rated %s %s.\n", args[0], strings.Repeat("★", rating))
		return nil
	},
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "List article ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}

		ratings := s.Ratings()
		if len(ratings) == 0 {
			fmt.Println("No ratings yet.")
			return nil
		}
		for url, r := range ratings {
			line := fmt.Sprintf("%s  %s", strings.Repeat("★", r.Rating), url)
			if r.Comment != "" {
				line += faintStyle.Render("  — " + r.Comment)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or update preferences",
	Long: `Without flags, prefs prints the current preferences. With flags it
replaces the stored record wholesale, keeping unspecified fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}

		prefs := s.LoadPreferences()
		changed := false

		if cmd.Flags().Changed("interests") {
			resolved := make([]string, 0, len(flagPrefsInterests))
			for _, name := range flagPrefsInterests {
				cat, err := interest.Resolve(name)
				if err != nil {
					return err
				}
				resolved = append(resolved, cat)
			}
			prefs.Interests = resolved
			changed = true
		}
		if cmd.Flags().Changed("frequency") {
			freq, err := interest.ParseFrequency(flagPrefsFrequency)
			if err != nil {
				return err
			}
			prefs.Frequency = string(freq)
			changed = true
		}
		if cmd.Flags().Changed("theme") {
			prefs.Theme = flagPrefsTheme
			changed = true
		}
		if cmd.Flags().Changed("notifications") {
			on, err := strconv.ParseBool(flagPrefsNotifications)
			if err != nil {
				return fmt.Errorf("notifications must be true or false")
			}
			prefs.Notifications = on
			changed = true
		}

		if changed {
			if !s.SavePreferences(prefs) {
				return fmt.Errorf("could not save preferences")
			}
			prefs = s.LoadPreferences()
		}

		fmt.Println(headingStyle.Render("Preferences"))
		fmt.Printf("%s %s\n", labelStyle.Render("Interests:"), strings.Join(prefs.Interests, ", "))
		fmt.Printf("%s %s\n", labelStyle.Render("Frequency:"), prefs.Frequency)
		fmt.Printf("%s %s\n", labelStyle.Render("Theme:"), prefs.Theme)
		fmt.Printf("%s %v\n", labelStyle.Render("Notifications:"), prefs.Notifications)
		if prefs.LastUpdated != "" {
			fmt.Println(faintStyle.Render("Updated " + prefs.LastUpdated))
		}
		return nil
	},
}

func init() {
	rateCmd.Flags().StringVar(&flagRateComment, "comment", "", "optional comment")

	prefsCmd.Flags().StringSliceVar(&flagPrefsInterests, "interests", nil, "interest categories")
	prefsCmd.Flags().StringVar(&flagPrefsFrequency, "frequency", "", "daily or weekly")
	prefsCmd.Flags().StringVar(&flagPrefsTheme, "theme", "", "display theme tag")
	prefsCmd.Flags().StringVar(&flagPrefsNotifications, "notifications", "", "true or false")
}
