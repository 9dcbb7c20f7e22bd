package gemini

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Scheme is the URL scheme of Gemini documents.
const Scheme = "gemini"

// IsGeminiURL reports whether raw is an absolute gemini:// URL with a host.
func IsGeminiURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, Scheme) && u.Hostname() != ""
}

// Resolve resolves ref against base using standard relative URL resolution.
func Resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

// Normalize returns the canonical form of a URL used for deduplication and
// as the document identity.
//
// Normalization lower-cases the scheme and host, drops the fragment and the
// default port, turns an empty path into "/" and removes trailing slashes
// from every path except the root.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	u.RawFragment = ""

	host := strings.ToLower(u.Host)
	if h, p, err := net.SplitHostPort(host); err == nil && p == strconv.Itoa(DefaultPort) {
		host = h
		if strings.Contains(h, ":") {
			host = "[" + h + "]"
		}
	}
	u.Host = host

	path := u.Path
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	if path != u.Path {
		u.Path = path
		u.RawPath = ""
	}

	return u.String(), nil
}

// ResolveNormalized resolves ref against base and normalizes the result.
func ResolveNormalized(base, ref string) (string, error) {
	resolved, err := Resolve(base, ref)
	if err != nil {
		return "", err
	}
	return Normalize(resolved)
}
