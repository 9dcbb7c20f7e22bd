// Package main provides the entry point for the gemsearch CLI.
//
// gemsearch is a small search engine for the Gemini protocol. It crawls
// capsules over TLS, indexes the fetched gemtext documents and answers
// multi-term queries against the index.
//
// Usage:
//
//	gemsearch crawl [seed...]
//	gemsearch index
//	gemsearch search <term...>
//	gemsearch proxy <gemini-url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
