// Package crawler provides the Gemini crawler.
//
// # Architecture
//
// The Crawler drives a single-threaded loop over a Frontier of pending
// URLs. Each URL taken from the frontier ends in exactly one outcome:
// stored, redirected, skipped or failed. Redirect targets and links found in
// stored documents go back into the frontier unless they were seen before.
//
// Design decision: The loop is sequential. Gemini capsules are mostly small
// personal servers and one request at a time is the polite default. The
// VisitedSet still offers an atomic check-and-insert so the loop can be
// parallelized without changing its semantics.
//
// # Components
//
//   - Crawler: coordinates the crawl and writes pages to a PageStore
//   - Frontier: FIFO queue with a seen set keyed by normalized URL
//   - VisitedSet: URLs already processed in this run
//   - RobotsAgent: robots.txt rules fetched over Gemini, cached per host
//   - HostLimiter: per-host request rate limit
//
// # Politeness
//
//   - Fixed delay plus random jitter between fetches
//   - Optional per-host rate limit
//   - robots.txt for the "indexer" virtual agent (configurable)
//   - Per-host ignore and follow patterns, or skipping a host entirely
//
// # Usage
//
//	c := crawler.New(gemini.NewClient(), db,
//		crawler.WithSeeds("gemini://gemini.circumlunar.space/"),
//		crawler.WithMaxPages(100))
//	run, err := c.Run(ctx)
//
// # Failure Handling
//
// No per-document failure stops a run: transport and protocol failures,
// non-success statuses and storage errors are logged and counted, and the
// loop moves on. Run returns an error only when its context ends.
package crawler
