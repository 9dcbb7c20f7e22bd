// Package proxy renders a single Gemini document for display on demand.
//
// The page store is consulted first and its copy is used as is, however
// old. Only documents the crawler never stored are fetched live. A live
// fetch must answer with status 20; anything else is reported to the
// caller as a FetchFailedError carrying the status.
package proxy
