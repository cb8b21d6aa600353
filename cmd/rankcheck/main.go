package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rankcheck",
	Short: "Keyword rank checker for Google and Baidu",
	Long: `rankcheck finds the position of a domain in the organic results of
Google or Baidu for a keyword. It drives a headless Chromium, walks the
result pages in order and reports the 1-based rank of the first result
whose URL contains the domain, with a highlighted screenshot of the match.

Available commands:
  serve  - run the HTTP API and the web form
  check  - run one check from the command line

Configuration is read from RANKCHECK_* environment variables.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
