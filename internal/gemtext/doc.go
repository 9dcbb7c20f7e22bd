// Package gemtext implements the text/gemini markup operations used by the
// crawler, the indexer and the proxy.
//
// Every function is pure: it takes document text and returns derived data
// without touching the network or any store.
//
// The grammar is line oriented:
//
//	=> <url> [<label>]   link line
//	# / ## / ###         heading lines
//	anything else        body text
//
// Display documents carry text exactly as it appears in the source. Callers
// rendering them into a markup-interpreting surface such as HTML must escape
// the text themselves; internal/report does so for its HTML writer.
package gemtext
