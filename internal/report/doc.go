// Package report provides output writers for search results, display
// documents and crawl history.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown for notes and sharing
//   - HTMLWriter: Standalone HTML pages
//
// Design decision: Display documents carry unescaped text. Escaping is the
// job of the writer for each output surface; HTMLWriter builds a node tree
// and lets golang.org/x/net/html escape text and attributes on render, so
// no document content can inject markup.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
