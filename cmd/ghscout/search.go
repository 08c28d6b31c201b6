package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLanguage   string
	searchMaxResults int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for code patterns on GitHub",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchLanguage, "language", "l", "", "Programming language filter")
	searchCmd.Flags().IntVarP(&searchMaxResults, "max", "n", 10, "Maximum number of results (1-30)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.toolset.Searcher.Search(cmd.Context(), args[0], searchLanguage, searchMaxResults)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d results for: %s\n", len(results), args[0])
	for i, r := range results {
		fmt.Println("\n" + strings.Repeat("=", 60))
		fmt.Printf("Result %d: %s\n", i+1, r.Repo)
		fmt.Printf("File: %s\n", r.Path)
		fmt.Printf("URL: %s\n", r.URL)
		fmt.Printf("Score: %.2f\n", r.Score)
		fmt.Println("\nContent:\n" + strings.Repeat("-", 60))
		fmt.Println(r.Content)
	}
	return nil
}
