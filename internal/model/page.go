package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// UntitledDocument is the placeholder title for documents without a
// top-level heading.
const UntitledDocument = "Untitled Document"

// MaxContentSize is the maximum size of document content stored per page.
// Gemini documents are small; anything larger is truncated before storage.
const MaxContentSize = 5 * 1024 * 1024 // 5 MB

// Page represents a fetched Gemini document.
// The URL is the single global identity of a document; there is no
// separate internal id.
type Page struct {
	// URL is the absolute, normalized gemini:// URL of the document.
	URL string `json:"url"`

	// Title is derived from the first level-one heading, or
	// UntitledDocument when none exists.
	Title string `json:"title"`

	// Content is the raw gemtext body as received.
	Content string `json:"content"`

	// FetchedAt is when the crawler last fetched the document.
	FetchedAt time.Time `json:"fetched_at"`

	// Hash is the SHA-256 hash of Content, hex encoded.
	Hash string `json:"hash,omitempty"`
}

// NewPage creates a Page fetched at the given time with its hash computed
// and content truncated to MaxContentSize.
func NewPage(url, title, content string, fetchedAt time.Time) *Page {
	p := &Page{
		URL:       url,
		Title:     title,
		Content:   content,
		FetchedAt: fetchedAt,
	}
	p.TruncateContent()
	p.ComputeHash()
	return p
}

// ComputeHash calculates and sets the SHA-256 hash of the page content.
func (p *Page) ComputeHash() {
	if p.Content == "" {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256([]byte(p.Content))
	p.Hash = hex.EncodeToString(hash[:])
}

// TruncateContent ensures the content doesn't exceed MaxContentSize.
func (p *Page) TruncateContent() {
	if len(p.Content) > MaxContentSize {
		p.Content = p.Content[:MaxContentSize]
	}
}

// DisplayTitle returns the stored title, or the URL when the title is empty.
func (p *Page) DisplayTitle() string {
	if p.Title == "" {
		return p.URL
	}
	return p.Title
}
