// Package binding finds the declarative binding targets in HTML and markdown
// documents and resolves them with one independent task per target.
//
// A binding target is any element carrying both the manifest attribute and
// the key attribute:
//
//	<div data-manifest-url="https://example.org/hashes.json"
//	     data-manifest-key="service/valory/hello_world/0.1.0">
//	  <pre><code>autonomy fetch valory/hello_world:0.1.0:&lt;hash&gt;</code></pre>
//	</div>
//
// Targets are located by byte offsets in the source, and a rewrite replaces
// only the content of targets that were rendered. Every other byte of the
// document is copied through unchanged.
package binding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jlrickert/hashdoc/pkg/resolver"
)

const (
	DefaultManifestAttr = "data-manifest-url"
	DefaultKeyAttr      = "data-manifest-key"
)

// ErrUnclosedBinding is recorded for a binding element whose end tag never
// appears in the document. Nothing is rendered for it.
var ErrUnclosedBinding = errors.New("binding: element is never closed")

// Attrs names the attributes that declare a binding.
type Attrs struct {
	Manifest string
	Key      string
}

// DefaultAttrs returns the stock attribute names.
func DefaultAttrs() Attrs {
	return Attrs{Manifest: DefaultManifestAttr, Key: DefaultKeyAttr}
}

// withDefaults fills empty names and lowercases the rest, since the
// tokenizer reports attribute keys in lower case.
func (a Attrs) withDefaults() Attrs {
	if a.Manifest == "" {
		a.Manifest = DefaultManifestAttr
	}
	if a.Key == "" {
		a.Key = DefaultKeyAttr
	}
	a.Manifest = strings.ToLower(a.Manifest)
	a.Key = strings.ToLower(a.Key)
	return a
}

// Binding is an element declaring a manifest URL and lookup key. It
// implements resolver.Target over the element's content.
type Binding struct {
	ManifestURL string
	Key         string

	// Offset is the byte offset of the element's start tag in the source.
	Offset int

	tag        string
	innerStart int
	innerStop  int
	closed     bool

	// A literal body is markdown source sitting between raw HTML blocks. It
	// is read and written as plain text instead of markup.
	literal bool

	text     string
	rendered []byte
	done     bool
}

var _ resolver.Target = (*Binding)(nil)

// Text returns the element's text content: the DOM textContent for markup
// bodies, the source text for literal bodies.
func (b *Binding) Text() string { return b.text }

// Render replaces the element's content. Markup bodies get the code block
// wrapper; literal bodies take the updated text as is.
func (b *Binding) Render(updated string) {
	b.text = updated
	if b.literal {
		b.rendered = []byte(updated)
	} else {
		b.rendered = []byte(resolver.RenderHTML(updated))
	}
	b.done = true
}

func (b *Binding) err() error {
	if b.closed {
		return nil
	}
	return fmt.Errorf("%w: <%s> at byte %d", ErrUnclosedBinding, b.tag, b.Offset)
}

func (b *Binding) load(src []byte) {
	inner := src[b.innerStart:b.innerStop]
	if b.literal {
		b.text = string(inner)
		return
	}
	b.text = textContent(b.tag, inner)
}

// Discover returns the bindings of an HTML source in document order. An
// element nested inside a binding is part of the outer binding's content,
// not a binding of its own.
func Discover(src []byte, attrs Attrs) []*Binding {
	s := newScanner(attrs)
	s.feed(src, 0)
	return s.finish(src)
}

// textContent parses inner in the context of a tag element and returns the
// concatenated text nodes, with entities decoded.
func textContent(tag string, inner []byte) string {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	nodes, err := html.ParseFragment(bytes.NewReader(inner), context)
	if err != nil {
		return string(inner)
	}
	var sb strings.Builder
	for _, n := range nodes {
		collectText(n, &sb)
	}
	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
	case html.ElementNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectText(c, sb)
		}
	}
}

// splice returns src with the content of every rendered binding replaced.
// When nothing was rendered src itself is returned.
func splice(src []byte, bindings []*Binding) []byte {
	var out bytes.Buffer
	last := 0
	changed := false
	for _, b := range bindings {
		if !b.done {
			continue
		}
		out.Write(src[last:b.innerStart])
		out.Write(b.rendered)
		last = b.innerStop
		changed = true
	}
	if !changed {
		return src
	}
	out.Write(src[last:])
	return out.Bytes()
}
