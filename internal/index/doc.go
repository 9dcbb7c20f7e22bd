// Package index provides the inverted index store: a BadgerDB keyspace of
// (term, url) membership markers.
//
// Each entry is a key with an empty value:
//
//	t:<term>\x00<url>
//
// Badger keeps keys sorted, so all urls for a term are one prefix scan and
// come back in url order. Entries are never updated; they are inserted if
// absent and removed only by dropping the whole index.
package index
