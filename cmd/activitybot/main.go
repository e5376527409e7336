package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	runNow     bool

	rootCmd = &cobra.Command{
		Use:   "activitybot",
		Short: "Scheduled repository activity bot",
		Long: `activitybot periodically creates innocuous activity on one repository:
it mutates a few files, commits them on a fresh branch, opens a pull
request, waits a while, squash-merges it and cleans up.

By default it installs a cron scheduler and runs until terminated.
With --now it performs exactly one run and exits with its status.`,
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "config file path")
	rootCmd.Flags().BoolVar(&runNow, "now", false, "run once immediately and exit")
}

func main() {
	// Optional .env next to the binary; the token may come from there
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
