package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show reading statistics and storage usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}

		stats := s.UserStats()
		fmt.Println(headingStyle.Render("Your stats"))
		fmt.Printf("%s %d\n", labelStyle.Render("Saved articles:"), stats.TotalSavedArticles)
		fmt.Printf("%s %d (avg %.1f)\n", labelStyle.Render("Ratings:"), stats.TotalRatings, stats.AverageRating)
		fmt.Printf("%s %s\n", labelStyle.Render("Favorite category:"), stats.FavoriteCategory)
		fmt.Printf("%s %s (%s)\n", labelStyle.Render("Interests:"), strings.Join(stats.Interests, ", "), stats.Frequency)
		if stats.LastActivity != "" {
			fmt.Println(faintStyle.Render("Last activity " + stats.LastActivity))
		}

		fmt.Println()
		fmt.Println(headingStyle.Render("Storage"))
		for name, size := range s.DataSizes() {
			fmt.Printf("%-16s %s\n", name, formatBytes(size))
		}
		if db, dbPath, err := openCache(); err == nil {
			defer db.Close()
			if count, size, err := db.Stats(dbPath); err == nil {
				fmt.Printf("%-16s %s (%d articles)\n", "article cache", formatBytes(size), count)
			}
		}
		return nil
	},
}

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export, import, or clear user data",
}

var dataExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export all user data to a JSON file",
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
		if !s.ExportAll(args[0]) {
			return fmt.Errorf("export failed")
		}
		fmt.Printf("Exported to %s.\n", args[0])
		return nil
	},
}

var dataImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import user data from an export file",
	Long: `Import replaces preferences, saved articles, and ratings from an export
document. Analytics is never imported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		if !s.ImportAll(args[0]) {
			return fmt.Errorf("import failed: %s is missing required sections or unreadable", args[0])
		}
		fmt.Println("Imported.")
		return nil
	},
	Args: cobra.ExactArgs(1),
}

var dataClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all user data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		if !s.ClearAll() {
			return fmt.Errorf("some data files could not be removed")
		}
		fmt.Println("All user data cleared.")
		return nil
	},
}

func init() {
	dataCmd.AddCommand(dataExportCmd)
	dataCmd.AddCommand(dataImportCmd)
	dataCmd.AddCommand(dataClearCmd)
}
