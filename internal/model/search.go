package model

// SearchResult is one document matching every term of a query.
type SearchResult struct {
	// URL is the matching document's URL.
	URL string `json:"url"`

	// Title is the stored title, or the URL when the stored title is empty.
	Title string `json:"title"`

	// Snippet is the leading words of the document followed by an ellipsis.
	Snippet string `json:"snippet"`
}
