package chart

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// element builds an SVG node from alternating attribute names and values.
func element(tag string, kv ...string) *html.Node {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("chart: attributes for <%s> must come in pairs", tag))
	}
	n := &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		DataAtom:  atom.Lookup([]byte(tag)),
		Namespace: "svg",
	}
	for i := 0; i < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

// appendAll adds children to parent in order.
func appendAll(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// path builds a <path> with the given path data.
func path(d string, kv ...string) *html.Node {
	return element("path", append([]string{"d", d}, kv...)...)
}

// text builds a <text> holding content.
func text(content string, kv ...string) *html.Node {
	return appendAll(element("text", kv...), textNode(content))
}

// use builds a <use> referencing the element with id.
func use(id string, kv ...string) *html.Node {
	return element("use", append([]string{"href", "#" + id}, kv...)...)
}

// textPath builds text whose glyphs follow the element with id.
func textPath(id, content string, kv ...string) *html.Node {
	return appendAll(element("text", kv...),
		appendAll(element("textPath", "href", "#"+id), textNode(content)))
}

// attr returns the value of key on n.
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Render writes n and its subtree as markup.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}
