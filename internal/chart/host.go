package chart

import (
	_ "embed"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/i474232898/todays-weather/internal/weather"
)

//go:embed index.html
var indexHTML string

// FindByID returns the first element under n whose id is id.
func FindByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		if v, ok := attr(n, "id"); ok && v == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// ReplaceContent removes every child of n, then appends content.
func ReplaceContent(n *html.Node, content ...*html.Node) {
	for n.LastChild != nil {
		n.RemoveChild(n.LastChild)
	}
	appendAll(n, content...)
}

func htmlElement(a atom.Atom, class string, content string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	if content != "" {
		n.AppendChild(textNode(content))
	}
	return n
}

// ErrorMessage returns a paragraph describing err.
func ErrorMessage(err error) *html.Node {
	return htmlElement(atom.P, "error", "Unable to draw the forecast: "+err.Error())
}

// NarrativeNodes renders regional forecast paragraphs as headed blocks.
func NarrativeNodes(paragraphs []weather.Paragraph) []*html.Node {
	var out []*html.Node
	for _, p := range paragraphs {
		if p.Title != "" {
			out = append(out, htmlElement(atom.H3, "", p.Title))
		}
		out = append(out, htmlElement(atom.P, "", p.Text))
	}
	return out
}

// WritePage renders the host page with graph as the sole content of the
// #graph container and narrative in the #narrative container.
func WritePage(w io.Writer, graph []*html.Node, narrative []*html.Node) error {
	doc, err := html.Parse(strings.NewReader(indexHTML))
	if err != nil {
		return err
	}

	target := FindByID(doc, "graph")
	if target == nil {
		return errors.New("host page has no #graph container")
	}
	ReplaceContent(target, graph...)

	if text := FindByID(doc, "narrative"); text != nil {
		ReplaceContent(text, narrative...)
	}

	return html.Render(w, doc)
}
