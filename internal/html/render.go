package html

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// voidElements never have content or a closing tag
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// rawTextElements have their text children written unescaped
var rawTextElements = map[string]bool{
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"noscript":  true,
	"plaintext": true,
	"script":    true,
	"style":     true,
	"xmp":       true,
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

// renderer serializes a node tree.
//
// Escaping convention: text content escapes &, < and >; attribute values are
// always double quoted and escape & and ". Raw text elements (style, script,
// ...) are written verbatim.
type renderer struct {
	w    *strings.Builder
	mode OutputMode

	// implied reports wrapper elements that are written as their children only
	implied func(n *html.Node) bool
}

func (r *renderer) render(n *html.Node) error {
	switch n.Type {
	case html.ErrorNode:
		return errors.New("cannot render an ErrorNode")
	case html.DocumentNode:
		return r.renderChildren(n)
	case html.TextNode:
		if n.Parent != nil && n.Parent.Type == html.ElementNode && rawTextElements[n.Parent.Data] {
			r.w.WriteString(n.Data)
		} else {
			textEscaper.WriteString(r.w, n.Data)
		}
		return nil
	case html.CommentNode:
		if r.mode == OutputXHTML && strings.HasPrefix(n.Data, "?xml") {
			return nil
		}
		r.w.WriteString("<!--")
		r.w.WriteString(n.Data)
		r.w.WriteString("-->")
		return nil
	case html.DoctypeNode:
		r.renderDoctype(n)
		return nil
	case html.RawNode:
		r.w.WriteString(n.Data)
		return nil
	case html.ElementNode:
		// handled below
	default:
		return errors.New("unknown node type")
	}

	if r.implied != nil && r.implied(n) {
		return r.renderChildren(n)
	}

	r.w.WriteByte('<')
	r.w.WriteString(n.Data)
	for _, a := range n.Attr {
		r.w.WriteByte(' ')
		if a.Namespace != "" {
			r.w.WriteString(a.Namespace)
			r.w.WriteByte(':')
		}
		r.w.WriteString(a.Key)
		r.w.WriteString(`="`)
		attrEscaper.WriteString(r.w, a.Val)
		r.w.WriteByte('"')
	}

	if voidElements[n.Data] && n.Namespace == "" {
		if n.FirstChild != nil {
			return errors.New("void element <" + n.Data + "> has child nodes")
		}
		if r.mode == OutputXHTML {
			r.w.WriteString(" />")
		} else {
			r.w.WriteByte('>')
		}
		return nil
	}
	r.w.WriteByte('>')

	if err := r.renderChildren(n); err != nil {
		return err
	}

	r.w.WriteString("</")
	r.w.WriteString(n.Data)
	r.w.WriteByte('>')
	return nil
}

func (r *renderer) renderChildren(n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := r.render(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderDoctype(n *html.Node) {
	r.w.WriteString("<!DOCTYPE ")
	r.w.WriteString(n.Data)

	var public, system string
	for _, a := range n.Attr {
		switch a.Key {
		case "public":
			public = a.Val
		case "system":
			system = a.Val
		}
	}

	if public != "" {
		r.w.WriteString(` PUBLIC "`)
		r.w.WriteString(public)
		r.w.WriteByte('"')
		if system != "" {
			r.w.WriteString(` "`)
			r.w.WriteString(system)
			r.w.WriteByte('"')
		}
	} else if system != "" {
		r.w.WriteString(` SYSTEM "`)
		r.w.WriteString(system)
		r.w.WriteByte('"')
	}
	r.w.WriteByte('>')
}
