package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed page exposing the queries the extractor needs.
type Document interface {
	// ElementsByTag returns every element with the given tag name in
	// document order.
	ElementsByTag(tag string) []Element

	// Text returns the visible text of the document, whitespace-normalized.
	Text() string
}

// Element is a single element of a Document.
type Element interface {
	// Attribute returns the value of the named attribute.
	Attribute(name string) (string, bool)

	// ElementsByTag returns descendants with the given tag name.
	ElementsByTag(tag string) []Element
}

// ParseDocument parses markup into a Document. The HTML5 parser recovers
// from malformed markup, so an error means the input could not be read at all.
func ParseDocument(markup string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return &queryDocument{doc: doc}, nil
}

// queryDocument adapts a goquery document to Document.
type queryDocument struct {
	doc *goquery.Document
}

func (d *queryDocument) ElementsByTag(tag string) []Element {
	return collect(d.doc.Find(tag))
}

func (d *queryDocument) Text() string {
	var sb strings.Builder
	for _, n := range d.doc.Nodes {
		visibleText(n, &sb)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// queryElement adapts a goquery selection of one node to Element.
type queryElement struct {
	sel *goquery.Selection
}

func (e *queryElement) Attribute(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *queryElement) ElementsByTag(tag string) []Element {
	return collect(e.sel.Find(tag))
}

func collect(sel *goquery.Selection) []Element {
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &queryElement{sel: s})
	})
	return elements
}

// hiddenElements hold text that is never rendered.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// visibleText appends the text nodes under n, skipping hidden elements.
// Text nodes are separated by a space so adjacent blocks don't merge.
func visibleText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
	case html.CommentNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(c, sb)
	}
}
