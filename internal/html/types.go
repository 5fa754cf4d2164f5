package html

import "golang.org/x/net/html"

// Node represents an HTML element in the DOM tree
// This interface can be implemented by any HTML parsing library
type Node interface {
	// Core node information
	TagName() string
	Attr(name string) (string, bool)

	// Content access
	Text() string

	// Raw returns the underlying tree node; it identifies the element
	// across separate queries.
	Raw() *html.Node

	// Modification
	SetAttribute(name, value string)
	SetText(content string)
	Remove()
}

// Matcher resolves a selector to the matching elements in document order.
// It fails for selectors it cannot translate.
type Matcher interface {
	Match(selector string) ([]Node, error)
}

// Document represents the complete HTML document
type Document interface {
	Matcher

	// StyleTags returns all <style> elements
	StyleTags() []Node

	// StylesheetLinks returns <link> elements referencing stylesheets
	StylesheetLinks() []Node

	// RemoveAttributes drops the named attributes from every element
	RemoveAttributes(names ...string)

	// Render serializes the document
	Render(mode OutputMode) (string, error)
}

// Parser handles parsing HTML documents
type Parser interface {
	Parse(html string) (Document, error)
}

// OutputMode selects the serialization syntax
type OutputMode int

const (
	// OutputHTML writes HTML syntax, void elements without a closing slash
	OutputHTML OutputMode = iota
	// OutputXHTML writes XML syntax, void elements self-closed
	OutputXHTML
)

func (m OutputMode) String() string {
	switch m {
	case OutputXHTML:
		return "xhtml"
	default:
		return "html"
	}
}
