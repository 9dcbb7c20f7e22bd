package gemini

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Client defaults.
const (
	// DefaultPort is the Gemini port. It is used regardless of any port in
	// the request URL.
	DefaultPort = 1965

	// DefaultTimeout bounds connect, handshake and read for one fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a response is buffered.
	// Gemini documents are small; 5MB is far above anything real.
	DefaultMaxBodySize = 5 * 1024 * 1024
)

// Response is a parsed Gemini response.
type Response struct {
	// Status is the two-digit status code.
	Status int

	// Meta is the free text after the status: a MIME type on success, a
	// target URL on redirect, or an error message otherwise.
	Meta string

	// Body is the response body decoded as UTF-8, with invalid bytes dropped.
	Body string
}

// Class returns the status class of the response.
func (r *Response) Class() StatusClass {
	return ClassOf(r.Status)
}

// Client fetches documents over the Gemini protocol.
// A Client holds no per-request state and is safe for concurrent use.
type Client struct {
	// dialer opens the TCP connection. proxy.Direct unless a proxy is set.
	dialer proxy.Dialer

	// port overrides DefaultPort. Only tests should need this.
	port int

	// timeout bounds a whole fetch.
	timeout time.Duration

	// maxBodySize limits the buffered response size.
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithDialer sets the dialer used to open connections.
func WithDialer(d proxy.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPort overrides the port every request connects to.
func WithPort(port int) Option {
	return func(c *Client) {
		if port > 0 {
			c.port = port
		}
	}
}

// WithMaxBodySize sets the maximum response size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		dialer:      proxy.Direct,
		port:        DefaultPort,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewSOCKS5Dialer returns a dialer that connects through the SOCKS5 proxy
// at address ("host:port").
func NewSOCKS5Dialer(address string) (proxy.Dialer, error) {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, fmt.Errorf("invalid proxy address %q: %w", address, err)
	}

	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	return dialer, nil
}

// Fetch requests rawURL and returns the parsed response.
// Any failure is returned as a *FetchError; no partial response is returned.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Scheme, Scheme) || u.Hostname() == "" {
		return nil, transportError(rawURL, ErrNotGeminiURL)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	host := u.Hostname()
	address := net.JoinHostPort(host, strconv.Itoa(c.port))

	conn, err := c.dialContext(ctx, address)
	if err != nil {
		return nil, transportError(rawURL, err)
	}
	defer conn.Close()

	// Unblock reads if the context is cancelled mid-response.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close() //nolint:errcheck // best effort unblock
	})
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, transportError(rawURL, err)
		}
	}

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: true, //nolint:gosec // capsules use self-signed certificates
		MinVersion:         tls.VersionTLS12,
	})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, transportError(rawURL, err)
	}

	if _, err := io.WriteString(tlsConn, rawURL+"\r\n"); err != nil {
		return nil, transportError(rawURL, err)
	}

	raw, err := c.readAll(tlsConn)
	if err != nil {
		return nil, transportError(rawURL, err)
	}

	resp, err := ParseResponse(raw)
	if err != nil {
		return nil, protocolError(rawURL, err)
	}
	return resp, nil
}

// readAll reads until the peer closes the connection.
func (c *Client) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBodySize+1))
	if err != nil {
		// Many servers close the TCP connection without a TLS close_notify.
		if !errors.Is(err, io.ErrUnexpectedEOF) || len(data) == 0 {
			return nil, err
		}
	}
	if int64(len(data)) > c.maxBodySize {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}

// dialContext dials address honoring ctx, also for dialers that do not
// implement proxy.ContextDialer.
func (c *Client) dialContext(ctx context.Context, address string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}

	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := c.dialer.Dial("tcp", address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-resultCh; r.conn != nil {
				_ = r.conn.Close() //nolint:errcheck // abandoned connection
			}
		}()
		return nil, ctx.Err()
	case result := <-resultCh:
		return result.conn, result.err
	}
}

// ParseResponse splits a raw response at the first CRLF into the header
// and the body and parses the header.
func ParseResponse(raw []byte) (*Response, error) {
	header, body, _ := bytes.Cut(raw, []byte("\r\n"))

	status, meta, err := parseHeader(string(header))
	if err != nil {
		return nil, err
	}

	return &Response{
		Status: status,
		Meta:   meta,
		Body:   strings.ToValidUTF8(string(body), ""),
	}, nil
}

// parseHeader parses "<status> <meta>".
func parseHeader(header string) (int, string, error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return 0, "", errors.New("empty response header")
	}

	code := fields[0]
	if len(code) != 2 {
		return 0, "", fmt.Errorf("status %q is not two digits", code)
	}
	status, err := strconv.Atoi(code)
	if err != nil || status < 10 {
		return 0, "", fmt.Errorf("status %q is not two digits", code)
	}

	return status, strings.Join(fields[1:], " "), nil
}
