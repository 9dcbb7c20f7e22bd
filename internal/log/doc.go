// Package log provides logging with automatic redaction of user input and
// credentials, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Redaction of the query part of gemini URLs
//   - Masking of proxy credentials and secret-named attributes
//   - Configurable log levels with verbose mode support
//
// # Redaction
//
// A Gemini URL query carries what a user typed in answer to an input
// prompt, which for status 11 is explicitly sensitive. The proxy renders
// such URLs on request, and the crawler follows links that may carry them,
// so the RedactingHandler replaces any query in a gemini URL value:
//
//	gemini://example.org/login?hunter2  ->  gemini://example.org/login?***REDACTED***
//
// SOCKS5 proxy addresses keep their host but lose any user:password part.
// Attributes whose key names a secret are masked whole.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Info("fetching", "url", "gemini://example.org/search?my+query")
//	slog.SetDefault(logger)
package log
