package main

import (
	"fmt"

	"ghscout/internal/errors"
	"ghscout/internal/license"

	"github.com/spf13/cobra"
)

var licenseCmd = &cobra.Command{
	Use:   "license <owner>/<repo>",
	Short: "Check a repository's license",
	Long: `Check a repository's license and categorize it as SAFE_TO_USE,
VIRAL_LICENSE_WARNING, or REVIEW_REQUIRED. The GitHub API verdict is
preferred; license files are pattern-matched as a fallback.`,
	Args: cobra.ExactArgs(1),
	RunE: runLicense,
}

func init() {
	rootCmd.AddCommand(licenseCmd)
}

func runLicense(cmd *cobra.Command, args []string) error {
	owner, repo, ok := splitRepoArg(args[0])
	if !ok {
		return errors.NewInvalidParameter("repository", "expected <owner>/<repo>")
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	verdict, err := a.toolset.Licenses.Check(cmd.Context(), owner, repo)
	if err != nil {
		return err
	}

	fmt.Printf("Repository: %s\n", verdict.Repo)
	fmt.Printf("License: %s\n", verdict.License)
	fmt.Printf("Safety: %s\n", verdict.Safety)
	fmt.Printf("Source: %s\n", verdict.Source)
	if verdict.Details != "" {
		fmt.Printf("Details: %s\n", verdict.Details)
	}
	fmt.Println()
	fmt.Println(license.Advice(verdict.Safety))
	return nil
}
