package binding

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jlrickert/hashdoc/pkg/log"
	"github.com/jlrickert/hashdoc/pkg/resolver"
)

// Resolver resolves a single target. *resolver.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, manifestURL, key string, target resolver.Target) (resolver.Result, error)
}

// Outcome is the result of resolving one binding.
type Outcome struct {
	ManifestURL string
	Key         string
	Result      resolver.Result
	Err         error
}

// Report collects the outcomes of one pass over a document, in binding
// order.
type Report struct {
	Outcomes []Outcome
}

// Len returns the number of bindings seen.
func (r Report) Len() int { return len(r.Outcomes) }

// Failed returns outcomes that hit a fetch or parse failure, or whose
// element was never closed.
func (r Report) Failed() []Outcome {
	return r.filter(func(o Outcome) bool { return o.Err != nil })
}

// Missing returns outcomes whose key was absent from the manifest.
func (r Report) Missing() []Outcome {
	return r.filter(func(o Outcome) bool { return o.Err == nil && !o.Result.Found })
}

// Resolved returns outcomes whose key was found.
func (r Report) Resolved() []Outcome {
	return r.filter(func(o Outcome) bool { return o.Err == nil && o.Result.Found })
}

func (r Report) filter(pred func(Outcome) bool) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}

// ResolveAll runs one task per binding. A limit above zero bounds the number
// of tasks in flight. A failing binding is recorded in the report and never
// cancels its siblings; each task writes only its own outcome slot. Unclosed
// bindings fail without a fetch.
func ResolveAll(ctx context.Context, r Resolver, bindings []*Binding, limit int) Report {
	lg := log.FromContext(ctx)
	outcomes := make([]Outcome, len(bindings))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, b := range bindings {
		if err := b.err(); err != nil {
			lg.Error("unable to resolve hash", "url", b.ManifestURL, "key", b.Key, "err", err)
			outcomes[i] = Outcome{ManifestURL: b.ManifestURL, Key: b.Key, Err: err}
			continue
		}
		g.Go(func() error {
			res, err := r.Resolve(ctx, b.ManifestURL, b.Key, b)
			outcomes[i] = Outcome{
				ManifestURL: b.ManifestURL,
				Key:         b.Key,
				Result:      res,
				Err:         err,
			}
			return nil
		})
	}
	_ = g.Wait()

	return Report{Outcomes: outcomes}
}
