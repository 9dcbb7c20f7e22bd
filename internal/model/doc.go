// Package model defines the core data structures shared across gemsearch.
//
// This package contains the following main types:
//   - Page: A Gemini document stored by the crawler, keyed by its URL
//   - SearchResult: One enriched hit returned by the query resolver
//   - CrawlStats: Per-run counters maintained by the crawler
//   - CrawlRun: A persisted summary of one crawl run
//
// Models live in their own package so that the crawler, indexer, search,
// proxy and storage packages can share them without import cycles.
// All types serialize to JSON for CLI output and database storage.
package model
