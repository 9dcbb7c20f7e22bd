package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for gemsearch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gemsearch",
		Short: "Search engine for the Gemini protocol",
		Long: `gemsearch crawls Gemini capsules, indexes the documents it fetches and
answers multi-term queries. A document matches a query only if it contains
every term.

Pages and crawl history are stored in SQLite and the inverted index in
Badger, both under the data directory (default: the XDG data directory).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .gemsearch in current or home directory)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory for the page store and index (default: XDG data directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewProxyCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
