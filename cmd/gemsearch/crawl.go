package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nao1215/gemsearch/internal/config"
	"github.com/nao1215/gemsearch/internal/crawler"
	"github.com/nao1215/gemsearch/internal/model"
	"github.com/nao1215/gemsearch/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed...]",
		Short: "Crawl Gemini capsules and store the fetched documents",
		Long: `Crawl fetches documents breadth-first starting from the seeds, follows
gemini:// links and redirects, and stores every successful response in the
page store. Each run is recorded and can be listed with "gemsearch history".

Seeds given as arguments replace the seeds from the config file. Without
either, the crawl starts at ` + crawler.DefaultSeed + `.

Examples:
  # Crawl from the default seed
  gemsearch crawl

  # Crawl two capsules, at most 200 URLs
  gemsearch crawl -p 200 gemini://a.example/ gemini://b.example/

  # Crawl through a SOCKS5 proxy without pausing between fetches
  gemsearch crawl --proxy 127.0.0.1:9050 --delay 0 --jitter 0`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)
	cmd.Flags().BoolP("quiet", "q", false, "Hide the progress bar")

	return cmd
}

// addCrawlFlags registers the flags shared by crawl and run.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of URLs processed per run")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Fixed pause after each fetch")
	cmd.Flags().Duration("jitter", config.DefaultCrawlJitter,
		"Upper bound of a random pause added to --delay")
	cmd.Flags().Duration("host-interval", 0,
		"Minimum interval between requests to one host (0 disables)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connect and read timeout for each request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response size in bytes")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("ignore-robots", false,
		"Do not obey robots.txt")
	cmd.Flags().String("robots-agent", config.DefaultRobotsAgent,
		"User agent matched against robots.txt rules")
}

// applyCrawlFlags copies the crawl flags and seed arguments into cfg.
func applyCrawlFlags(cmd *cobra.Command, args []string, cfg *config.Config) error {
	var err error
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return err
	}
	if cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return err
	}
	if cfg.CrawlJitter, err = cmd.Flags().GetDuration("jitter"); err != nil {
		return err
	}
	if cfg.HostInterval, err = cmd.Flags().GetDuration("host-interval"); err != nil {
		return err
	}
	if err := applyFetchFlags(cmd, cfg); err != nil {
		return err
	}

	ignoreRobots, err := cmd.Flags().GetBool("ignore-robots")
	if err != nil {
		return err
	}
	cfg.RespectRobots = !ignoreRobots

	if cfg.RobotsAgent, err = cmd.Flags().GetString("robots-agent"); err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Seeds = args
	}
	return nil
}

// applyFetchFlags copies the protocol client flags into cfg.
func applyFetchFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size"); err != nil {
		return err
	}
	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	return err
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, args, cfg); err != nil {
		return err
	}
	if cfg.Quiet, err = cmd.Flags().GetBool("quiet"); err != nil {
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

	pages, err := openPages(cfg)
	if err != nil {
		return err
	}
	defer pages.Close()

	var bar *progressbar.ProgressBar
	var progress crawler.ProgressFunc
	if !cfg.Quiet {
		bar = newCrawlProgressBar(cmd.ErrOrStderr(), cfg.MaxPages)
		progress = func(stats model.CrawlStats) {
			_ = bar.Set(stats.Visited) //nolint:errcheck // Progress display only
		}
	}

	c := newCrawler(cfg, client, pages, logger, progress)

	step := pipeline.NewCrawlStep(c,
		pipeline.WithRunRecorder(pages),
		pipeline.WithCrawlLogger(logger),
	)

	var result pipeline.Result
	crawlErr := step.Do(ctx, &result)
	if bar != nil {
		_ = bar.Finish() //nolint:errcheck // Progress display only
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	if result.CrawlRun != nil {
		printRunSummary(cmd.OutOrStdout(), result.CrawlRun)
	}
	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}

// newCrawler wires a Crawler from cfg.
func newCrawler(cfg *config.Config, fetcher crawler.Fetcher, store crawler.PageStore, logger *slog.Logger, progress crawler.ProgressFunc) *crawler.Crawler {
	opts := []crawler.Option{
		crawler.WithSeeds(cfg.CrawlSeeds()...),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDelay(cfg.CrawlDelay, cfg.CrawlJitter),
		crawler.WithHostRules(cfg.Hosts.Rules()),
		crawler.WithLogger(logger),
	}

	if cfg.RespectRobots {
		opts = append(opts, crawler.WithRobots(cfg.RobotsAgent))
	}
	if limiter := crawler.NewHostLimiter(cfg.HostInterval, 1); limiter != nil {
		opts = append(opts, crawler.WithHostLimiter(limiter))
	}
	if progress != nil {
		opts = append(opts, crawler.WithProgress(progress))
	}

	return crawler.New(fetcher, store, opts...)
}

// newCrawlProgressBar creates a bar sized to the page cap. A crawl may end
// early when the frontier runs dry.
func newCrawlProgressBar(w io.Writer, maxPages int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxPages,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("crawling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("urls"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// printRunSummary writes a short report of one crawl run.
func printRunSummary(w io.Writer, run *model.CrawlRun) {
	status := "completed"
	if run.Cancelled {
		status = "cancelled"
	}
	fmt.Fprintf(w, "Crawl %s in %s (run %s)\n", status, run.Duration().Round(1e6), run.ID)
	fmt.Fprintf(w, "  visited:    %d\n", run.Stats.Visited)
	fmt.Fprintf(w, "  stored:     %d\n", run.Stats.Stored)
	if run.Stats.Unchanged > 0 {
		fmt.Fprintf(w, "  unchanged:  %d\n", run.Stats.Unchanged)
	}
	fmt.Fprintf(w, "  redirected: %d\n", run.Stats.Redirected)
	fmt.Fprintf(w, "  skipped:    %d\n", run.Stats.Skipped)
	fmt.Fprintf(w, "  failed:     %d\n", run.Stats.Failed)
	if run.Stats.StorageErrors > 0 {
		fmt.Fprintf(w, "  not saved:  %d\n", run.Stats.StorageErrors)
	}
	if run.Stats.Remaining > 0 {
		fmt.Fprintf(w, "  unvisited:  %d\n", run.Stats.Remaining)
	}
}
