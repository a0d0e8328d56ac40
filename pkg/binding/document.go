package binding

import (
	"context"
	"path/filepath"
	"strings"
)

// IsMarkdown reports whether path names a markdown document.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return true
	}
	return false
}

// Rewrite dispatches on the file name: markdown documents go through
// RewriteMarkdown, everything else is treated as HTML.
func Rewrite(ctx context.Context, r Resolver, path string, src []byte, opts Options) ([]byte, Report, error) {
	if IsMarkdown(path) {
		return RewriteMarkdown(ctx, r, src, opts)
	}
	return RewriteHTML(ctx, r, src, opts)
}
