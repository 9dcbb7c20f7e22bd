// Package indexer builds the inverted index from the page store.
//
// BuildIndex is a full pass: every stored page is read once, tokenized, and
// each distinct term is recorded against the page URL with insert-if-absent
// semantics. Running it again over unchanged pages writes nothing.
//
// Tokenization runs on a bounded worker pool; all index writes go through a
// single goroutine so the reported insert count is exact.
package indexer
