package binding

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// scanner locates binding elements by tokenizing one or more runs of HTML
// taken from a single document. Offsets are document offsets.
type scanner struct {
	attrs Attrs

	open     *Binding
	depth    int
	runs     int
	openedIn int

	found []*Binding
}

func newScanner(attrs Attrs) *scanner {
	return &scanner{attrs: attrs.withDefaults()}
}

// feed tokenizes run, which starts at byte base of the document. A binding
// left open at the end of a run may be closed by a later run; its content is
// then the literal source between the two tags.
func (s *scanner) feed(run []byte, base int) {
	s.runs++
	z := html.NewTokenizer(bytes.NewReader(run))
	off := base
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return
		}
		start := off
		off += len(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if s.open != nil {
				if tt == html.StartTagToken && tag == s.open.tag {
					s.depth++
				}
				continue
			}
			url, key, ok := s.bindingAttrs(z, hasAttr)
			if !ok {
				continue
			}
			b := &Binding{
				ManifestURL: url,
				Key:         key,
				Offset:      start,
				tag:         tag,
				innerStart:  off,
			}
			if tt == html.SelfClosingTagToken || isVoid(tag) {
				b.innerStop, b.closed = off, true
				s.found = append(s.found, b)
				continue
			}
			s.open, s.depth, s.openedIn = b, 0, s.runs
		case html.EndTagToken:
			if s.open == nil {
				continue
			}
			name, _ := z.TagName()
			if string(name) != s.open.tag {
				continue
			}
			if s.depth > 0 {
				s.depth--
				continue
			}
			s.open.innerStop, s.open.closed = start, true
			s.open.literal = s.runs != s.openedIn
			s.found = append(s.found, s.open)
			s.open = nil
		}
	}
}

// finish records a binding still open at the end of the document as
// unclosed and loads the text of the others.
func (s *scanner) finish(src []byte) []*Binding {
	if s.open != nil {
		s.open.innerStop = len(src)
		s.found = append(s.found, s.open)
		s.open = nil
	}
	for _, b := range s.found {
		if b.closed {
			b.load(src)
		}
	}
	return s.found
}

// bindingAttrs reads the remaining attributes of the current tag. The first
// occurrence of an attribute wins, as in the HTML parser.
func (s *scanner) bindingAttrs(z *html.Tokenizer, more bool) (url, key string, ok bool) {
	var hasURL, hasKey bool
	for more {
		var k, v []byte
		k, v, more = z.TagAttr()
		switch string(k) {
		case s.attrs.Manifest:
			if !hasURL {
				url, hasURL = strings.TrimSpace(string(v)), true
			}
		case s.attrs.Key:
			if !hasKey {
				key, hasKey = strings.TrimSpace(string(v)), true
			}
		}
	}
	return url, key, hasURL && hasKey
}

func isVoid(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
