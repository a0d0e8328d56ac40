package resolver

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultPlaceholder is the literal token replaced during resolution.
const DefaultPlaceholder = "<hash>"

// Substitute replaces every occurrence of placeholder in text with value. An
// empty placeholder leaves text untouched.
func Substitute(text, placeholder, value string) string {
	if placeholder == "" {
		return text
	}
	return strings.ReplaceAll(text, placeholder, value)
}

// newWrapper builds the code block container the docs stylesheet expects:
//
//	<div class="highlight"><pre><span></span><code>TEXT</code></pre></div>
func newWrapper(text string) *html.Node {
	div := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr:     []html.Attribute{{Key: "class", Val: "highlight"}},
	}
	pre := &html.Node{Type: html.ElementNode, DataAtom: atom.Pre, Data: "pre"}
	span := &html.Node{Type: html.ElementNode, DataAtom: atom.Span, Data: "span"}
	code := &html.Node{Type: html.ElementNode, DataAtom: atom.Code, Data: "code"}
	code.AppendChild(&html.Node{Type: html.TextNode, Data: text})

	pre.AppendChild(span)
	pre.AppendChild(code)
	div.AppendChild(pre)
	return div
}

// RenderHTML returns the serialized wrapper around text.
func RenderHTML(text string) string {
	var sb strings.Builder
	// Rendering into a strings.Builder cannot fail.
	_ = html.Render(&sb, newWrapper(text))
	return sb.String()
}
