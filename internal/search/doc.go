// Package search resolves multi-term queries against the inverted index.
//
// Matching is strict AND: a page matches only when every query term is
// indexed for it. There is no ranking. Results keep the order in which the
// index returns urls for the first term and are capped before the page
// store is consulted, which bounds the work per query.
package search
