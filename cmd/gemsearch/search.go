package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/gemsearch/internal/config"
	"github.com/nao1215/gemsearch/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term...>",
		Short: "Search the index",
		Long: `Search returns the documents that contain every query term. Terms are
split on whitespace and compared case-insensitively.

Examples:
  gemsearch search happy fox
  gemsearch search --json gemini protocol
  gemsearch search --html -o results.html tinylog`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().IntP("max-results", "n", config.DefaultMaxResults, "Maximum number of results")
	addOutputFlags(cmd)

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.MaxResults, err = cmd.Flags().GetInt("max-results"); err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	st, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	resolver := search.NewResolver(st.index, st.pages,
		search.WithMaxResults(cfg.MaxResults),
		search.WithLogger(logger),
	)

	query := strings.Join(args, " ")
	results, err := resolver.Search(ctx, query)
	if err != nil {
		if errors.Is(err, search.ErrQueryRequired) {
			return err
		}
		return fmt.Errorf("search failed: %w", err)
	}

	w, closeOutput, err := openWriter(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	_, writeErr := w.WriteResults(query, results)
	return errors.Join(writeErr, closeOutput())
}
