package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// ErrStorage wraps every read or write failure of the index store.
var ErrStorage = errors.New("index store failure")

// ErrTermTooLong is returned by InsertIfAbsent for a term longer than
// MaxTermLength or an entry key Badger would reject.
var ErrTermTooLong = errors.New("index term too long")

// MaxTermLength is the longest term, in bytes, the index stores.
// Longer tokens are base64 blobs and similar noise nobody searches for.
const MaxTermLength = 1024

const (
	termPrefix = "t:"
	separator  = 0x00

	// maxKeySize is Badger's limit on key length.
	maxKeySize = 65000
)

// Store is the inverted index backed by BadgerDB.
// It is safe for concurrent use; callers that need a consistent insert
// count should still funnel writes through one goroutine.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// storeOptions holds settings applied by Option.
type storeOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*storeOptions)

// WithInMemory keeps the index in memory only. The directory argument of
// Open is ignored.
func WithInMemory() Option {
	return func(o *storeOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger for the store and for Badger itself.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
// Badger's info output is noisy, so it is demoted to debug.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens the index stored in dir, creating the directory if needed.
func Open(dir string, opts ...Option) (*Store, error) {
	o := storeOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var bopts badger.Options
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to check index directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		bopts = badger.DefaultOptions(dir)
	}

	bopts.Logger = &badgerLoggerAdapter{logger: o.logger}
	bopts.Compression = options.None

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open index: %w", ErrStorage, err)
	}

	return &Store{db: db, logger: o.logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns every url indexed under term, in url order.
// An unknown term yields an empty slice.
func (s *Store) Lookup(ctx context.Context, term string) ([]string, error) {
	prefix := termKeyPrefix(term)
	urls := []string{}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(keyOnlyOptions(prefix))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().Key()
			urls = append(urls, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to look up %q: %w", ErrStorage, term, err)
	}
	return urls, nil
}

// InsertIfAbsent adds the (term, url) entry unless it already exists.
// It reports whether an entry was written.
func (s *Store) InsertIfAbsent(ctx context.Context, term, url string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key, ok := storableKey(term, url)
	if !ok {
		return false, fmt.Errorf("%w: %d bytes", ErrTermTooLong, len(term))
	}

	inserted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		inserted, err = setIfAbsent(txn, key)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%w: failed to insert (%q, %s): %w", ErrStorage, term, url, err)
	}
	return inserted, nil
}

// InsertTerms adds an entry for every term under url and returns how many
// were new. Terms are written in as few transactions as Badger allows.
// Terms longer than MaxTermLength are skipped.
func (s *Store) InsertTerms(ctx context.Context, url string, terms []string) (int, error) {
	inserted := 0

	txn := s.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		key, ok := storableKey(term, url)
		if !ok {
			s.logger.Debug("skipping over-long term", "url", url, "bytes", len(term))
			continue
		}

		added, err := setIfAbsent(txn, key)
		if errors.Is(err, badger.ErrTxnTooBig) {
			if err := txn.Commit(); err != nil {
				return inserted, fmt.Errorf("%w: failed to commit terms for %s: %w", ErrStorage, url, err)
			}
			txn = s.db.NewTransaction(true)
			added, err = setIfAbsent(txn, key)
		}
		if err != nil {
			return inserted, fmt.Errorf("%w: failed to insert terms for %s: %w", ErrStorage, url, err)
		}
		if added {
			inserted++
		}
	}

	if err := txn.Commit(); err != nil {
		return inserted, fmt.Errorf("%w: failed to commit terms for %s: %w", ErrStorage, url, err)
	}
	return inserted, nil
}

// Count returns the total number of entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(keyOnlyOptions([]byte(termPrefix)))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count entries: %w", ErrStorage, err)
	}
	return count, nil
}

// Drop removes every entry.
func (s *Store) Drop() error {
	if err := s.db.DropPrefix([]byte(termPrefix)); err != nil {
		return fmt.Errorf("%w: failed to drop index: %w", ErrStorage, err)
	}
	s.logger.Debug("index dropped")
	return nil
}

func setIfAbsent(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return false, err
	}
	if err := txn.Set(key, nil); err != nil {
		return false, err
	}
	return true, nil
}

func keyOnlyOptions(prefix []byte) badger.IteratorOptions {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	return opts
}

// termKeyPrefix returns "t:<term>\x00".
func termKeyPrefix(term string) []byte {
	buf := make([]byte, 0, len(termPrefix)+len(term)+1)
	buf = append(buf, termPrefix...)
	buf = append(buf, term...)
	return append(buf, separator)
}

// storableKey returns the entry key for (term, url), or false when the
// term or the key is too long to store.
func storableKey(term, url string) ([]byte, bool) {
	if len(term) > MaxTermLength {
		return nil, false
	}
	key := entryKey(term, url)
	if len(key) > maxKeySize {
		return nil, false
	}
	return key, true
}

// entryKey returns "t:<term>\x00<url>".
func entryKey(term, url string) []byte {
	return append(termKeyPrefix(term), url...)
}
