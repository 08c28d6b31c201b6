package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	validateLanguage    string
	validateSkipSecrets bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a code snippet from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateLanguage, "language", "l", "", "Programming language")
	validateCmd.Flags().BoolVar(&validateSkipSecrets, "skip-secrets", false, "Skip the secret scan")
}

func runValidate(cmd *cobra.Command, args []string) error {
	var code []byte
	var err error
	if len(args) == 1 {
		code, err = os.ReadFile(args[0])
	} else {
		code, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.toolset.Validator.Validate(string(code), validateLanguage, !validateSkipSecrets)

	fmt.Printf("Status: %s\n", result.Status)
	fmt.Printf("Score: %d/100\n", result.Score)
	if result.Valid {
		fmt.Println("Valid: yes")
	} else {
		fmt.Println("Valid: no")
	}
	fmt.Printf("Summary: %s\n", result.Summary)

	for _, issue := range result.Issues {
		fmt.Printf("\n[%s] %s\n", issue.Severity, issue.Message)
		if issue.Fix != "" {
			fmt.Printf("  fix: %s\n", issue.Fix)
		}
	}
	for _, w := range result.Warnings {
		fmt.Printf("\n[%s] %s\n", w.Severity, w.Message)
	}
	for _, s := range result.Suggestions {
		fmt.Printf("\n- %s\n", s.Message)
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}
