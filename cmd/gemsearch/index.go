package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/gemsearch/internal/indexer"
	"github.com/nao1215/gemsearch/internal/pipeline"
)

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the inverted index from stored pages",
		Long: `Index tokenizes every stored page and records one index entry per
distinct (term, url) pair. Entries already present are left alone, so
re-running over unchanged pages adds nothing.

Use --rebuild after a recrawl to drop terms that pages no longer contain.`,
		Args: cobra.NoArgs,
		RunE: runIndexCmd,
	}

	cmd.Flags().Bool("rebuild", false, "Drop the index before building")
	cmd.Flags().IntP("workers", "w", 0, "Number of tokenization workers (0: one per CPU)")

	return cmd
}

// runIndexCmd executes the index command.
func runIndexCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rebuild, err := cmd.Flags().GetBool("rebuild")
	if err != nil {
		return err
	}
	if cfg.IndexWorkers, err = cmd.Flags().GetInt("workers"); err != nil {
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

	ix := indexer.New(st.pages, st.index,
		indexer.WithWorkers(cfg.IndexWorkers),
		indexer.WithLogger(logger),
	)

	var result pipeline.Result
	step := pipeline.NewIndexStep(ix, pipeline.WithRebuild(rebuild), pipeline.WithIndexLogger(logger))
	if err := step.Do(ctx, &result); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	entries, err := st.index.Count(ctx)
	if err != nil {
		return err
	}
	pages, err := st.pages.CountPages(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d new entries (%d total) from %d stored pages\n",
		result.IndexEntries, entries, pages)
	return nil
}
