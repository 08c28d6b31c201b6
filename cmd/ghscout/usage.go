package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	usageLanguage   string
	usageContext    string
	usageMaxResults int
)

var usageCmd = &cobra.Command{
	Use:   "usage <function-or-library>",
	Short: "Find real-world usage examples of a function or library",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.Flags().StringVarP(&usageLanguage, "language", "l", "", "Programming language filter")
	usageCmd.Flags().StringVarP(&usageContext, "context", "c", "", "Additional context (e.g. 'authentication')")
	usageCmd.Flags().IntVarP(&usageMaxResults, "max", "n", 5, "Maximum results")
}

func runUsage(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	examples, err := a.toolset.Usage.FindUsage(cmd.Context(), args[0], usageLanguage, usageContext, usageMaxResults)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d usage examples for %s\n", len(examples), args[0])
	for i, ex := range examples {
		fmt.Println("\n" + strings.Repeat("=", 60))
		fmt.Printf("Example %d: %s (score %d/100)\n", i+1, ex.Repo, ex.UsageScore)
		fmt.Printf("File: %s\n", ex.Path)
		fmt.Printf("URL: %s\n", ex.URL)
		if len(ex.UsagePatterns) > 0 {
			fmt.Printf("Patterns: %s\n", strings.Join(ex.UsagePatterns, ", "))
		}
		fmt.Println(strings.Repeat("-", 60))
		fmt.Println(ex.Content)
	}
	return nil
}
