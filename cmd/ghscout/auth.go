package main

import (
	"fmt"

	"ghscout/internal/github"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Validate the configured GitHub token",
	RunE:  runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	login, err := a.client.ValidateToken(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("GitHub authentication successful: %s\n", login)
	fmt.Printf("Core quota remaining: %d/hour\n", a.limiter.Remaining(github.TierCore))
	fmt.Printf("Search quota remaining: %d/minute\n", a.limiter.Remaining(github.TierSearch))
	return nil
}
