package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/gemsearch/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "gemsearch.db"

// ErrStorage wraps every read or write failure of the page store.
var ErrStorage = errors.New("page store failure")

// CrawlDB provides SQLite-based storage for fetched pages and crawl runs.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: A page row is keyed by URL alone. A re-crawl of the
// same URL overwrites the row, so the store always holds the latest copy
// and never a history of versions.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	logger *slog.Logger
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool

	// Logger receives reports of unreadable rows. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite takes the open mode as a URI parameter.
	// mode=rw refuses to create a missing file.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the path of the database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Pages hold the latest fetched copy of each document
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL,
		content_hash TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_pages_fetched_at ON pages(fetched_at);

	-- Crawl runs store one summary row per crawl
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		stats TEXT NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON crawl_runs(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// UpsertPage inserts a page or replaces the stored copy with the same URL.
// It reports whether the content differs from the stored copy, comparing
// content hashes; a new page counts as changed. The write runs in its own
// transaction, which is rolled back on failure. Errors wrap ErrStorage.
func (cdb *CrawlDB) UpsertPage(ctx context.Context, page *model.Page) (changed bool, err error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: failed to begin transaction: %w", ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // the write error is what matters
		}
	}()

	var previousHash string
	err = tx.QueryRowContext(ctx, `SELECT content_hash FROM pages WHERE url = ?`, page.URL).Scan(&previousHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		changed = true
	case err != nil:
		return false, fmt.Errorf("%w: failed to read page %s: %w", ErrStorage, page.URL, err)
	default:
		changed = previousHash != page.Hash
	}

	query := `
	INSERT INTO pages (url, title, content, fetched_at, content_hash)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		content = excluded.content,
		fetched_at = excluded.fetched_at,
		content_hash = excluded.content_hash
	`

	if _, err = tx.ExecContext(ctx, query,
		page.URL,
		page.Title,
		page.Content,
		formatTimestamp(page.FetchedAt),
		page.Hash,
	); err != nil {
		return false, fmt.Errorf("%w: failed to upsert page %s: %w", ErrStorage, page.URL, err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: failed to commit page %s: %w", ErrStorage, page.URL, err)
	}
	return changed, nil
}

// GetPage retrieves a page by URL. It returns nil and no error when the
// page is not stored.
func (cdb *CrawlDB) GetPage(ctx context.Context, url string) (*model.Page, error) {
	query := `
	SELECT url, title, content, fetched_at, content_hash
	FROM pages
	WHERE url = ?
	`

	page, err := scanPage(cdb.db.QueryRowContext(ctx, query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get page %s: %w", ErrStorage, url, err)
	}
	return page, nil
}

// ScanPages iterates over every stored page ordered by URL.
// Iteration stops at the first error, which is yielded with a nil page.
// The iterator holds the only connection; callers must not write to the
// CrawlDB until the loop ends.
func (cdb *CrawlDB) ScanPages(ctx context.Context) iter.Seq2[*model.Page, error] {
	return func(yield func(*model.Page, error) bool) {
		query := `
		SELECT url, title, content, fetched_at, content_hash
		FROM pages
		ORDER BY url
		`

		rows, err := cdb.db.QueryContext(ctx, query)
		if err != nil {
			yield(nil, fmt.Errorf("%w: failed to scan pages: %w", ErrStorage, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			page, err := scanPage(rows)
			if err != nil {
				yield(nil, fmt.Errorf("%w: failed to read page: %w", ErrStorage, err))
				return
			}
			if !yield(page, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("%w: failed to scan pages: %w", ErrStorage, err))
		}
	}
}

// CountPages returns the number of stored pages.
func (cdb *CrawlDB) CountPages(ctx context.Context) (int, error) {
	var count int
	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count pages: %w", ErrStorage, err)
	}
	return count, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*model.Page, error) {
	var page model.Page
	var fetchedAt string

	if err := row.Scan(
		&page.URL,
		&page.Title,
		&page.Content,
		&fetchedAt,
		&page.Hash,
	); err != nil {
		return nil, err
	}

	page.FetchedAt = parseTimestamp(fetchedAt)
	return &page, nil
}

// SaveCrawlRun stores the summary of a finished crawl run.
func (cdb *CrawlDB) SaveCrawlRun(ctx context.Context, run *model.CrawlRun) error {
	seedsJSON, err := json.Marshal(run.Seeds)
	if err != nil {
		return fmt.Errorf("failed to serialize seeds: %w", err)
	}
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("failed to serialize stats: %w", err)
	}

	query := `
	INSERT INTO crawl_runs (id, seeds, started_at, finished_at, stats, cancelled)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		finished_at = excluded.finished_at,
		stats = excluded.stats,
		cancelled = excluded.cancelled
	`

	_, err = cdb.db.ExecContext(ctx, query,
		run.ID,
		string(seedsJSON),
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		string(statsJSON),
		run.Cancelled,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to save crawl run: %w", ErrStorage, err)
	}

	return nil
}

// ListCrawlRuns returns up to limit crawl runs, most recent first.
// A limit of zero or less returns every run. Rows whose seeds or stats
// cannot be decoded are logged and left out.
func (cdb *CrawlDB) ListCrawlRuns(ctx context.Context, limit int) ([]model.CrawlRun, error) {
	query := `
	SELECT id, seeds, started_at, finished_at, stats, cancelled
	FROM crawl_runs
	ORDER BY started_at DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list crawl runs: %w", ErrStorage, err)
	}
	defer rows.Close()

	var runs []model.CrawlRun
	for rows.Next() {
		var run model.CrawlRun
		var seedsJSON, statsJSON, startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &seedsJSON, &startedAt, &finishedAt, &statsJSON, &run.Cancelled); err != nil {
			return nil, fmt.Errorf("%w: failed to scan crawl run: %w", ErrStorage, err)
		}

		run.StartedAt = parseTimestamp(startedAt)
		run.FinishedAt = parseTimestamp(finishedAt)

		if err := json.Unmarshal([]byte(seedsJSON), &run.Seeds); err != nil {
			cdb.logger.Warn("skipping crawl run with malformed seeds", "run_id", run.ID, "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
			cdb.logger.Warn("skipping crawl run with malformed stats", "run_id", run.ID, "error", err)
			continue
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// formatTimestamp stores times in UTC so that text ordering matches
// chronological ordering.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format written by formatTimestamp
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
