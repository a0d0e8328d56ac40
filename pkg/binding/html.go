package binding

import (
	"context"

	"github.com/jlrickert/hashdoc/pkg/log"
)

// Options configures a document rewrite.
type Options struct {
	Attrs Attrs

	// Concurrency bounds in-flight resolutions. Zero means unbounded.
	Concurrency int
}

// RewriteHTML resolves every binding in an HTML document. Only the content
// of rendered bindings changes; when nothing was rendered the source is
// returned as is.
func RewriteHTML(ctx context.Context, r Resolver, src []byte, opts Options) ([]byte, Report, error) {
	bindings := Discover(src, opts.Attrs)
	if len(bindings) == 0 {
		return src, Report{}, nil
	}
	log.FromContext(ctx).Debug("bindings discovered", "count", len(bindings))

	report := ResolveAll(ctx, r, bindings, opts.Concurrency)
	return splice(src, bindings), report, nil
}
