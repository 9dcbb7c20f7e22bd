package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/gemsearch/internal/config"
	"github.com/nao1215/gemsearch/internal/database"
	"github.com/nao1215/gemsearch/internal/gemini"
	"github.com/nao1215/gemsearch/internal/index"
	gslog "github.com/nao1215/gemsearch/internal/log"
	"github.com/nao1215/gemsearch/internal/report"
)

// loadConfig builds a Config from the global flags and the config file.
// Command-specific flags are applied by the caller before Validate.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.Verbose, err = cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	cfg.JSONLogs, err = cmd.Flags().GetBool("json-logs")
	if err != nil {
		return nil, err
	}

	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given config file must exist. Without one, a missing
	// file means no seeds and no host rules.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Hosts, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// newLogger creates the process logger and installs it as the default.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var logger *slog.Logger
	if cfg.JSONLogs {
		logger = gslog.NewJSONLogger(w, cfg.Verbose)
	} else {
		logger = gslog.NewLogger(w, cfg.Verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// geminiPort overrides the port the client dials. Zero keeps
// gemini.DefaultPort; only tests against a local capsule set it.
var geminiPort int

// newGeminiClient creates the protocol client, dialing through the SOCKS5
// proxy when one is configured.
func newGeminiClient(cfg *config.Config) (*gemini.Client, error) {
	opts := []gemini.Option{
		gemini.WithTimeout(cfg.Timeout),
		gemini.WithMaxBodySize(cfg.MaxBodySize),
	}
	if geminiPort > 0 {
		opts = append(opts, gemini.WithPort(geminiPort))
	}

	if cfg.ProxyAddress != "" {
		dialer, err := gemini.NewSOCKS5Dialer(cfg.ProxyAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to configure proxy: %w", err)
		}
		opts = append(opts, gemini.WithDialer(dialer))
	}

	return gemini.NewClient(opts...), nil
}

// stores holds the open page store and index store.
type stores struct {
	pages *database.CrawlDB
	index *index.Store
}

// openPages opens only the page store.
func openPages(cfg *config.Config) (*database.CrawlDB, error) {
	db, err := database.Open(cfg.DataDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open page store: %w", err)
	}
	return db, nil
}

// openStores opens the page store and the index store.
func openStores(cfg *config.Config, logger *slog.Logger) (*stores, error) {
	pages, err := openPages(cfg)
	if err != nil {
		return nil, err
	}

	idx, err := index.Open(cfg.IndexDir(), index.WithLogger(logger))
	if err != nil {
		_ = pages.Close() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	return &stores{pages: pages, index: idx}, nil
}

// Close closes both stores.
func (s *stores) Close() error {
	return errors.Join(s.index.Close(), s.pages.Close())
}

// addOutputFlags registers the output format flags. HTML is only offered
// by commands that render documents or lists a browser can show.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown")
	cmd.Flags().Bool("html", false, "Output a standalone HTML page")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
}

// applyOutputFlags copies the output flags into cfg.
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.HTMLOutput, err = cmd.Flags().GetBool("html"); err != nil {
		return err
	}
	cfg.OutputFile, err = cmd.Flags().GetString("output")
	return err
}

// outputFormat returns the format selected in cfg.
func outputFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONOutput:
		return report.FormatJSON
	case cfg.MarkdownOutput:
		return report.FormatMarkdown
	case cfg.HTMLOutput:
		return report.FormatHTML
	default:
		return report.FormatText
	}
}

// openWriter returns the writer for the selected format and destination.
// The returned close function must be called when output is complete.
func openWriter(cfg *config.Config, stdout io.Writer) (report.Writer, func() error, error) {
	output := stdout
	closeFn := func() error { return nil }

	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		output = f
		closeFn = f.Close
	}

	w, err := report.NewWriter(outputFormat(cfg), output)
	if err != nil {
		_ = closeFn() //nolint:errcheck // Best effort cleanup
		return nil, nil, err
	}

	return w, closeFn, nil
}
