package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

var (
	baseURL   string
	tokenPath string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "readdit",
	Short: "Command line client for the readdit API",
	Long: `readdit searches the book catalog and asks the API for recommendations.

Example usage:
  readdit session new                      # start an anonymous session
  readdit search "dune"                    # find a work
  readdit recommend --work /works/OL893415W --title Dune --author OL79034A
  readdit prefs set --genres scifi,classics --pace 30
  readdit watch --title Dune               # stream the live work view`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "api", envOr("READDIT_API", defaultBaseURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token", defaultTokenPath(), "token file path")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
