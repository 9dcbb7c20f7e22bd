package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/gemsearch/internal/config"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crawl runs",
		Long: `History lists recorded crawl runs, most recent first, with their
counters and whether they were interrupted.

Examples:
  gemsearch history
  gemsearch history -l 5 --markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", config.DefaultHistoryLimit, "Maximum number of runs to list")
	addOutputFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("invalid limit %d: must be positive", limit)
	}

	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	newLogger(cfg, cmd.ErrOrStderr())

	pages, err := openPages(cfg)
	if err != nil {
		return err
	}
	defer pages.Close()

	runs, err := pages.ListCrawlRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w, closeOutput, err := openWriter(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	_, writeErr := w.WriteHistory(runs)
	return errors.Join(writeErr, closeOutput())
}
