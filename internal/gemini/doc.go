// Package gemini implements the client side of the Gemini protocol.
//
// # Architecture
//
// The Client opens a TLS connection to port 1965 of the document host,
// sends the absolute URL followed by CRLF, reads until the server closes
// the connection and splits the response into a header line and a body.
// No other package touches raw sockets.
//
// Design decision: Certificate verification is disabled. Gemini capsules
// are almost always served with self-signed certificates and there is no
// public CA infrastructure to validate against; documents are fetched
// best-effort.
//
// # Response Framing
//
// A response is "<status> <meta>\r\n<body until close>". The status is a
// two-digit integer whose leading digit is the StatusClass:
//
//	1x  input required
//	2x  success (meta is a MIME type)
//	3x  redirect (meta is the target URL)
//	4x  temporary failure
//	5x  permanent failure
//	6x  client certificate required
//
// # Failures
//
// Every connection, handshake, timeout or read problem is reported as a
// *FetchError wrapping ErrTransport; a malformed header wraps ErrProtocol.
// Callers are expected to treat both the same way: skip the URL and move on.
//
// # Proxying
//
// Connections are made through a golang.org/x/net/proxy Dialer. The
// default is a direct connection; NewSOCKS5Dialer routes through a SOCKS5
// proxy such as a local Tor daemon.
package gemini
