package html

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// GoQueryDocument wraps goquery.Document to implement our Document interface
type GoQueryDocument struct {
	doc *goquery.Document

	// wrappers written in the source markup; the parser implies the rest
	explicitHTML bool
	explicitHead bool
	explicitBody bool
}

// GoQueryNode wraps a single-element goquery.Selection to implement our Node interface
type GoQueryNode struct {
	selection *goquery.Selection
}

// GoQueryParser implements our Parser interface using goquery
type GoQueryParser struct{}

// NewParser creates a new GoQuery-based HTML parser
func NewParser() *GoQueryParser {
	return &GoQueryParser{}
}

// Parse parses HTML string into a Document
func (p *GoQueryParser) Parse(htmlStr string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	d := &GoQueryDocument{doc: doc}
	d.explicitHTML, d.explicitHead, d.explicitBody = explicitWrappers(htmlStr)
	return d, nil
}

// explicitWrappers reports which of the html/head/body start tags appear in
// the markup. Tags inside comments, attribute values and raw text elements
// are not counted.
func explicitWrappers(markup string) (htmlTag, head, body bool) {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "html":
				htmlTag = true
			case "head":
				head = true
			case "body":
				body = true
			}
		}
	}
}

// Document implementation

// Match returns all elements matching the selector in document order
func (d *GoQueryDocument) Match(selector string) ([]Node, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("unsupported selector %q: %w", selector, err)
	}
	return wrap(d.doc.FindMatcher(matcher)), nil
}

// StyleTags returns all <style> elements
func (d *GoQueryDocument) StyleTags() []Node {
	return wrap(d.doc.Find("style"))
}

// StylesheetLinks returns <link> elements with an href whose rel is either
// missing or names a stylesheet
func (d *GoQueryDocument) StylesheetLinks() []Node {
	links := d.doc.Find("link[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		rel, exists := s.Attr("rel")
		if !exists {
			return true
		}
		for _, r := range strings.Fields(strings.ToLower(rel)) {
			if r == "stylesheet" {
				return true
			}
		}
		return false
	})
	return wrap(links)
}

// RemoveAttributes drops the named attributes from every element
func (d *GoQueryDocument) RemoveAttributes(names ...string) {
	for _, name := range names {
		d.doc.Find("[" + name + "]").RemoveAttr(name)
	}
}

// Render serializes the document, leaving out html/head/body wrappers the
// source markup did not contain
func (d *GoQueryDocument) Render(mode OutputMode) (string, error) {
	var buf strings.Builder

	r := &renderer{
		w:    &buf,
		mode: mode,
		implied: func(n *html.Node) bool {
			if n.Type != html.ElementNode || n.Parent == nil {
				return false
			}
			switch n.Data {
			case "html":
				return !d.explicitHTML && n.Parent.Type == html.DocumentNode
			case "head":
				return !d.explicitHead && n.Parent.Data == "html"
			case "body":
				return !d.explicitBody && n.Parent.Data == "html"
			}
			return false
		},
	}

	for _, root := range d.doc.Nodes {
		if err := r.render(root); err != nil {
			return "", fmt.Errorf("failed to serialize HTML: %w", err)
		}
	}
	return buf.String(), nil
}

// Node implementation

func wrap(selection *goquery.Selection) []Node {
	nodes := make([]Node, selection.Length())

	selection.Each(func(i int, s *goquery.Selection) {
		nodes[i] = &GoQueryNode{selection: s}
	})

	return nodes
}

// TagName returns the element's tag name
func (n *GoQueryNode) TagName() string {
	return goquery.NodeName(n.selection)
}

// Attr returns the value of an attribute and whether it is present
func (n *GoQueryNode) Attr(name string) (string, bool) {
	return n.selection.Attr(name)
}

// Text returns the text content
func (n *GoQueryNode) Text() string {
	return n.selection.Text()
}

// Raw returns the underlying tree node
func (n *GoQueryNode) Raw() *html.Node {
	return n.selection.Get(0)
}

// SetAttribute sets an attribute on the element
func (n *GoQueryNode) SetAttribute(name, value string) {
	n.selection.SetAttr(name, value)
}

// SetText replaces the element's children with a single text node. The
// content is stored as is, escaping happens on render.
func (n *GoQueryNode) SetText(content string) {
	n.selection.Empty()
	for _, node := range n.selection.Nodes {
		node.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	}
}

// Remove detaches the element from the tree
func (n *GoQueryNode) Remove() {
	n.selection.Remove()
}
