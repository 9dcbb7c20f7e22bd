package gemini

import (
	"errors"
	"fmt"
)

// Fetch failure kinds.
// A *FetchError always wraps exactly one of these so callers can use
// errors.Is to tell the kind apart, although the crawler treats both alike.
var (
	// ErrTransport is returned for connect, TLS handshake, timeout and read
	// failures.
	ErrTransport = errors.New("gemini transport failure")

	// ErrProtocol is returned when the response header is malformed or the
	// status is not a two-digit number.
	ErrProtocol = errors.New("gemini protocol failure")

	// ErrResponseTooLarge is returned when a response exceeds the configured
	// maximum size. It is reported as a transport failure.
	ErrResponseTooLarge = errors.New("response exceeds maximum size")

	// ErrNotGeminiURL is returned when the request URL is not an absolute
	// gemini:// URL with a host.
	ErrNotGeminiURL = errors.New("not an absolute gemini URL")
)

// FetchError describes a failed fetch.
type FetchError struct {
	// URL is the requested URL.
	URL string

	// Kind is ErrTransport or ErrProtocol.
	Kind error

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns both the kind and the cause so errors.Is matches either.
func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func transportError(url string, err error) error {
	return &FetchError{URL: url, Kind: ErrTransport, Err: err}
}

func protocolError(url string, err error) error {
	return &FetchError{URL: url, Kind: ErrProtocol, Err: err}
}
