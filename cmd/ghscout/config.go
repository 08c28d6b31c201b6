package main

import (
	"encoding/json"
	"fmt"
	"os"

	"ghscout/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ghscout configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .ghscout/config.json in the current directory",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cwd + "/.ghscout/config.json"); err == nil {
		return fmt.Errorf("config already exists at %s/.ghscout/config.json", cwd)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(cwd); err != nil {
		return err
	}
	fmt.Printf("Wrote %s/.ghscout/config.json\n", cwd)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return err
	}

	// Never print credentials
	cfg.GitHub.Token = ""

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
