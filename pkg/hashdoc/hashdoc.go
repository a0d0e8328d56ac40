package hashdoc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/hashdoc/pkg/binding"
	"github.com/jlrickert/hashdoc/pkg/config"
	"github.com/jlrickert/hashdoc/pkg/log"
	"github.com/jlrickert/hashdoc/pkg/resolver"
)

// Hashdoc ties the resolver to documents on disk.
type Hashdoc struct {
	Config   *config.Config
	Resolver binding.Resolver

	// Runtime carries every file read and write. Rewritten documents are
	// replaced atomically.
	Runtime *toolkit.Runtime
}

type Options struct {
	Config *config.Config
	Client *http.Client

	// Runtime defaults to the host runtime.
	Runtime *toolkit.Runtime
}

func New(opts Options) (*Hashdoc, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ropts := cfg.ResolverOptions()
	ropts.Client = opts.Client

	rt := opts.Runtime
	if rt == nil {
		var err error
		if rt, err = toolkit.NewRuntime(); err != nil {
			return nil, fmt.Errorf("runtime: %w", err)
		}
	}

	return &Hashdoc{
		Config:   cfg,
		Resolver: resolver.New(ropts),
		Runtime:  rt,
	}, nil
}

// BindingOptions returns the document rewrite options derived from config.
func (h *Hashdoc) BindingOptions() binding.Options {
	return binding.Options{
		Attrs: binding.Attrs{
			Manifest: h.Config.Attributes.Manifest,
			Key:      h.Config.Attributes.Key,
		},
		Concurrency: h.Config.Concurrency,
	}
}

// ResolveText resolves a single text block outside of any document.
func (h *Hashdoc) ResolveText(ctx context.Context, manifestURL, key, text string) (*resolver.TextBlock, resolver.Result, error) {
	block := resolver.NewTextBlock(text)
	res, err := h.Resolver.Resolve(ctx, manifestURL, key, block)
	return block, res, err
}

// RewriteBytes rewrites an in-memory document. name selects HTML or
// markdown handling by extension.
func (h *Hashdoc) RewriteBytes(ctx context.Context, name string, src []byte) ([]byte, binding.Report, error) {
	return binding.Rewrite(ctx, h.Resolver, name, src, h.BindingOptions())
}

// FileResult is the outcome of rewriting one file.
type FileResult struct {
	Path    string
	Output  []byte
	Changed bool
	Written bool
	Report  binding.Report
}

// RewriteFile rewrites the document at path. With write set, changed output
// replaces the file; unchanged files are never touched.
func (h *Hashdoc) RewriteFile(ctx context.Context, path string, write bool) (*FileResult, error) {
	lg := log.FromContext(ctx).With("path", path)

	info, err := h.Runtime.Stat(path, true)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	src, err := h.Runtime.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out, report, err := h.RewriteBytes(log.ContextWithLogger(ctx, lg), path, src)
	if err != nil {
		return nil, fmt.Errorf("rewrite %s: %w", path, err)
	}

	res := &FileResult{
		Path:    path,
		Output:  out,
		Changed: string(out) != string(src),
		Report:  report,
	}
	if write && res.Changed {
		if err := h.Runtime.AtomicWriteFile(path, out, info.Mode().Perm()); err != nil {
			lg.Error("failed to write rewritten document", "err", err)
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		res.Written = true
		lg.Info("document rewritten", "bindings", report.Len())
	}
	return res, nil
}
