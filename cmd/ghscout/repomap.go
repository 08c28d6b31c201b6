package main

import (
	"fmt"
	"strings"

	"ghscout/internal/errors"

	"github.com/spf13/cobra"
)

var repomapMaxSymbols int

var repomapCmd = &cobra.Command{
	Use:   "repomap <owner>/<repo>",
	Short: "Map a repository's most important symbols",
	Long: `Generate a repository map: functions and classes ranked by importance.

Importance comes from PageRank over the symbol dependency graph (calls,
imports, containment), boosted for exported names, entry points, and
classes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepomap,
}

func init() {
	rootCmd.AddCommand(repomapCmd)
	repomapCmd.Flags().IntVarP(&repomapMaxSymbols, "max-symbols", "n", 0, "Maximum symbols to display (default from config)")
}

func runRepomap(cmd *cobra.Command, args []string) error {
	owner, repo, ok := splitRepoArg(args[0])
	if !ok {
		return errors.NewInvalidParameter("repository", "expected <owner>/<repo>")
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.toolset.Mapper.BuildMap(cmd.Context(), owner, repo, repomapMaxSymbols)
	if err != nil {
		return err
	}

	fmt.Printf("Repository: %s\n", result.Repo)
	fmt.Printf("Files analyzed: %d\n", result.FilesAnalyzed)
	fmt.Printf("Total symbols: %d\n", result.TotalSymbols)
	fmt.Printf("Displayed symbols: %d\n", result.DisplayedSymbols)
	if result.FromCache {
		fmt.Println("(served from cache)")
	}
	fmt.Println()
	fmt.Println(result.Map)
	return nil
}

func splitRepoArg(arg string) (owner, repo string, ok bool) {
	parts := strings.SplitN(arg, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
