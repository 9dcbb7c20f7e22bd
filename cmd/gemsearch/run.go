package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/gemsearch/internal/indexer"
	"github.com/nao1215/gemsearch/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [seed...]",
		Short: "Crawl, then rebuild the index",
		Long: `Run refreshes the search engine end to end: it crawls like "gemsearch
crawl" and then rebuilds the index from the page store, so terms that
recrawled pages no longer contain stop matching.

An interrupted crawl is still recorded, but the index is left as it was.`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	addCrawlFlags(cmd)
	cmd.Flags().IntP("workers", "w", 0, "Number of tokenization workers (0: one per CPU)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, args, cfg); err != nil {
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

	client, err := newGeminiClient(cfg)
	if err != nil {
		return err
	}

	st, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	p := pipeline.DefaultPipeline(
		newCrawler(cfg, client, st.pages, logger, nil),
		st.pages,
		indexer.New(st.pages, st.index,
			indexer.WithWorkers(cfg.IndexWorkers),
			indexer.WithLogger(logger),
		),
		pipeline.WithLogger(logger),
	)

	result, err := p.Execute(ctx)
	if result.CrawlRun != nil {
		printRunSummary(cmd.OutOrStdout(), result.CrawlRun)
	}
	if err != nil {
		return fmt.Errorf("run stopped: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Index rebuilt with %d entries\n", result.IndexEntries)
	return nil
}
