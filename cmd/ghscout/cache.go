package main

import (
	"fmt"

	"ghscout/internal/storage"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and sizes per tier",
	RunE:  runCacheStats,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired cache entries",
	RunE:  runCacheCleanup,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [tier]",
	Short: "Clear the cache, or just one tier (search, repomap, license, content)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheCleanupCmd, cacheClearCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.cache.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Cache: %s\n\n", a.db.Path())
	for _, tier := range []storage.CacheTier{storage.SearchCache, storage.RepoMapCache, storage.LicenseCache, storage.ContentCache} {
		s := stats[string(tier)]
		fmt.Printf("%-10s %6d entries  %10d bytes\n", tier, s["entries"], s["sizeBytes"])
	}
	return nil
}

func runCacheCleanup(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.cache.CleanupExpired()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired entries\n", removed)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		if err := a.cache.InvalidateAll(); err != nil {
			return err
		}
		fmt.Println("Cache cleared")
		return nil
	}

	tier, err := tierByName(args[0])
	if err != nil {
		return err
	}
	if err := a.cache.Invalidate(tier); err != nil {
		return err
	}
	fmt.Printf("Cleared %s cache\n", tier)
	return nil
}

func tierByName(name string) (storage.CacheTier, error) {
	switch name {
	case "search":
		return storage.SearchCache, nil
	case "repomap":
		return storage.RepoMapCache, nil
	case "license":
		return storage.LicenseCache, nil
	case "content":
		return storage.ContentCache, nil
	}
	return "", fmt.Errorf("unknown cache tier %q (valid: search, repomap, license, content)", name)
}
