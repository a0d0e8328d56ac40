package binding

import (
	"context"
	"sort"

	"github.com/yuin/goldmark"
	gm_ast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jlrickert/hashdoc/pkg/log"
)

// blockRange is a raw HTML block located in a markdown source.
type blockRange struct {
	start, stop int
}

// RewriteMarkdown resolves bindings declared in the raw HTML blocks of a
// markdown document. A binding opened in one block and closed in a later one
// owns the markdown in between, which is rewritten as plain text. A binding
// that is never closed is reported as failed.
func RewriteMarkdown(ctx context.Context, r Resolver, src []byte, opts Options) ([]byte, Report, error) {
	s := newScanner(opts.Attrs)
	blocks := findHTMLBlocks(ctx, src)
	for _, b := range blocks {
		s.feed(src[b.start:b.stop], b.start)
	}
	bindings := s.finish(src)
	if len(bindings) == 0 {
		return src, Report{}, nil
	}
	log.FromContext(ctx).Debug("bindings discovered", "count", len(bindings), "blocks", len(blocks))

	report := ResolveAll(ctx, r, bindings, opts.Concurrency)
	return splice(src, bindings), report, nil
}

// findHTMLBlocks returns the byte ranges of raw HTML blocks in source order.
// Blocks whose lines are not contiguous in the source (inside block quotes,
// for example) are skipped.
func findHTMLBlocks(ctx context.Context, src []byte) []blockRange {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var out []blockRange
	_ = gm_ast.Walk(doc, func(n gm_ast.Node, entering bool) (gm_ast.WalkStatus, error) {
		if !entering || n.Kind() != gm_ast.KindHTMLBlock {
			return gm_ast.WalkContinue, nil
		}
		hb, ok := n.(*gm_ast.HTMLBlock)
		if !ok {
			return gm_ast.WalkContinue, nil
		}
		lines := hb.Lines()
		if lines.Len() == 0 {
			return gm_ast.WalkSkipChildren, nil
		}

		start := lines.At(0).Start
		stop := lines.At(0).Stop
		for i := 1; i < lines.Len(); i++ {
			seg := lines.At(i)
			if seg.Start != stop {
				log.FromContext(ctx).Debug("skipping non-contiguous html block", "offset", start)
				return gm_ast.WalkSkipChildren, nil
			}
			stop = seg.Stop
		}
		if hb.HasClosure() && hb.ClosureLine.Start >= stop {
			stop = hb.ClosureLine.Stop
		}
		out = append(out, blockRange{start: start, stop: stop})
		return gm_ast.WalkSkipChildren, nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}
