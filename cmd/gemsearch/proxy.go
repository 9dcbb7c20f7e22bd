package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/gemsearch/internal/config"
	"github.com/nao1215/gemsearch/internal/proxy"
)

// NewProxyCmd creates the proxy command.
func NewProxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy <gemini-url>",
		Short: "Render a Gemini document",
		Long: `Proxy renders one Gemini document for reading. A stored copy is used
when the page store has one; otherwise the document is fetched live and
not stored. Links to other gemini:// documents are routed back through
the proxy in HTML output.

Examples:
  gemsearch proxy gemini://gemini.circumlunar.space/
  gemsearch proxy --html -o page.html gemini://example.org/docs`,
		Args: cobra.ExactArgs(1),
		RunE: runProxyCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connect and read timeout for a live fetch")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response size in bytes")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	addOutputFlags(cmd)

	return cmd
}

// runProxyCmd executes the proxy command.
func runProxyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFetchFlags(cmd, cfg); err != nil {
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

	client, err := newGeminiClient(cfg)
	if err != nil {
		return err
	}

	pages, err := openPages(cfg)
	if err != nil {
		return err
	}
	defer pages.Close()

	renderer := proxy.NewRenderer(pages, client, proxy.WithLogger(logger))

	doc, err := renderer.Render(ctx, args[0])
	if err != nil {
		return err
	}

	w, closeOutput, err := openWriter(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	_, writeErr := w.WriteDocument(doc)
	return errors.Join(writeErr, closeOutput())
}
