// Package database provides the SQLite-based page store for gemsearch.
//
// This package implements the CrawlDB, which stores:
//   - Fetched Gemini documents keyed by their normalized URL
//   - A summary of every crawl run for the history command
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. UPSERT gives the overwrite-on-recrawl semantics pages need
// 4. WAL mode lets the search and proxy commands read during a crawl
//
// The inverted index lives in a separate store (internal/index) because it
// is a derived view that is dropped and rebuilt as a whole.
package database
