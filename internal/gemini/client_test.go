package gemini

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

func TestClientFetch(t *testing.T) {
	t.Parallel()

	t.Run("parses status, meta and body", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, func(string) string {
			return "20 text/gemini; lang=en\r\n# Hello\n=> /next Next\n"
		})
		client := NewClient(WithPort(srv.port()), WithTimeout(5*time.Second))

		resp, err := client.Fetch(context.Background(), "gemini://localhost/index.gmi")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if resp.Status != StatusSuccess {
			t.Errorf("expected status 20, got %d", resp.Status)
		}
		if resp.Meta != "text/gemini; lang=en" {
			t.Errorf("unexpected meta %q", resp.Meta)
		}
		if resp.Body != "# Hello\n=> /next Next\n" {
			t.Errorf("unexpected body %q", resp.Body)
		}
		if resp.Class() != ClassSuccess {
			t.Errorf("expected success class, got %s", resp.Class())
		}
	})

	t.Run("sends the url followed by CRLF", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, func(string) string {
			return "51 Not found\r\n"
		})
		client := NewClient(WithPort(srv.port()), WithTimeout(5*time.Second))

		resp, err := client.Fetch(context.Background(), "gemini://localhost/missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status != StatusNotFound || resp.Meta != "Not found" {
			t.Errorf("unexpected response %+v", resp)
		}

		select {
		case req := <-srv.requests:
			if req != "gemini://localhost/missing" {
				t.Errorf("unexpected request line %q", req)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not receive a request")
		}
	})

	t.Run("redirect meta is the target", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, func(string) string {
			return "31 /new\r\n"
		})
		client := NewClient(WithPort(srv.port()), WithTimeout(5*time.Second))

		resp, err := client.Fetch(context.Background(), "gemini://localhost/old")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !IsRedirect(resp.Status) || resp.Meta != "/new" {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("malformed header is a protocol failure", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, func(string) string {
			return "OK text/gemini\r\nbody"
		})
		client := NewClient(WithPort(srv.port()), WithTimeout(5*time.Second))

		resp, err := client.Fetch(context.Background(), "gemini://localhost/")
		if !errors.Is(err, ErrProtocol) {
			t.Fatalf("expected ErrProtocol, got %v", err)
		}
		if resp != nil {
			t.Error("expected no response on failure")
		}

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || fetchErr.URL != "gemini://localhost/" {
			t.Errorf("expected FetchError for the request URL, got %v", err)
		}
	})

	t.Run("oversized response is a transport failure", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, func(string) string {
			return "20 text/gemini\r\n" + strings.Repeat("x", 1024)
		})
		client := NewClient(WithPort(srv.port()), WithTimeout(5*time.Second), WithMaxBodySize(64))

		_, err := client.Fetch(context.Background(), "gemini://localhost/")
		if !errors.Is(err, ErrTransport) || !errors.Is(err, ErrResponseTooLarge) {
			t.Errorf("expected transport failure for oversized body, got %v", err)
		}
	})

	t.Run("refused connection is a transport failure", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		port := listener.Addr().(*net.TCPAddr).Port
		_ = listener.Close()

		client := NewClient(WithPort(port), WithTimeout(2*time.Second))
		_, err = client.Fetch(context.Background(), "gemini://127.0.0.1/")
		if !errors.Is(err, ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("non-gemini url is rejected", func(t *testing.T) {
		t.Parallel()

		client := NewClient()
		_, err := client.Fetch(context.Background(), "https://example.com/")
		if !errors.Is(err, ErrNotGeminiURL) {
			t.Errorf("expected ErrNotGeminiURL, got %v", err)
		}
	})

	t.Run("cancelled context stops the fetch", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		srv := newTestServer(t, func(string) string { return "20 text/gemini\r\n" })
		client := NewClient(WithPort(srv.port()))

		if _, err := client.Fetch(ctx, "gemini://localhost/"); !errors.Is(err, ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		wantStatus int
		wantMeta   string
		wantBody   string
		wantErr    bool
	}{
		{name: "success", raw: "20 text/gemini\r\nhello", wantStatus: 20, wantMeta: "text/gemini", wantBody: "hello"},
		{name: "no body", raw: "51 Not found\r\n", wantStatus: 51, wantMeta: "Not found"},
		{name: "header without CRLF", raw: "40 busy", wantStatus: 40, wantMeta: "busy"},
		{name: "status only", raw: "20\r\n", wantStatus: 20},
		{name: "invalid utf-8 dropped", raw: "20 text/gemini\r\nab\xffc", wantStatus: 20, wantMeta: "text/gemini", wantBody: "abc"},
		{name: "empty", raw: "", wantErr: true},
		{name: "non-numeric status", raw: "OK\r\n", wantErr: true},
		{name: "three digit status", raw: "200 OK\r\n", wantErr: true},
		{name: "one digit status", raw: "2 OK\r\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := ParseResponse([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", resp)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Status != tt.wantStatus || resp.Meta != tt.wantMeta || resp.Body != tt.wantBody {
				t.Errorf("got (%d, %q, %q), want (%d, %q, %q)",
					resp.Status, resp.Meta, resp.Body, tt.wantStatus, tt.wantMeta, tt.wantBody)
			}
		})
	}
}

func TestNewSOCKS5Dialer(t *testing.T) {
	t.Parallel()

	if _, err := NewSOCKS5Dialer("127.0.0.1:9050"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewSOCKS5Dialer("no-port"); err == nil {
		t.Error("expected error for address without port")
	}
}
