// Package pipeline provides a framework for executing build steps in sequence.
//
// The pipeline pattern is used to refresh the search engine end to end:
// crawl the capsules reachable from the seeds, then rebuild the inverted
// index from the page store. Each stage is implemented as a Step that
// receives the shared Result and records what it did.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running crawls
package pipeline
