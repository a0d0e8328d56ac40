// Package resolver rewrites a placeholder token inside a block of displayed
// text with a hash looked up from a remotely fetched manifest.
//
// A resolution is a single linear pipeline: fetch, parse, lookup, substitute,
// render. It touches exactly one Target and holds no state between calls, so
// any number of resolutions may run concurrently.
package resolver

import (
	"context"
	"net/http"

	"github.com/jlrickert/hashdoc/pkg/log"
	"github.com/jlrickert/hashdoc/pkg/manifest"
)

// Target is a displayable text block whose content is rewritten. The
// resolver does not own it; it only reads its literal text and replaces its
// displayed content.
type Target interface {
	// Text returns the literal text content, not rendered markup.
	Text() string

	// Render replaces the displayed content with the wrapper around updated.
	Render(updated string)
}

// Options configures a Resolver. Zero values fall back to defaults.
type Options struct {
	Client      *http.Client
	Channel     string
	Placeholder string
}

type Resolver struct {
	client      *http.Client
	channel     string
	placeholder string
}

// Result describes one successful resolution.
type Result struct {
	ManifestURL string
	Key         string

	// Value is the substituted value: the manifest entry, or the placeholder
	// itself when Found is false.
	Value string
	Found bool

	Before string
	After  string
}

// Changed reports whether the substitution altered the text.
func (r Result) Changed() bool { return r.Before != r.After }

func New(opts Options) *Resolver {
	r := &Resolver{
		client:      opts.Client,
		channel:     opts.Channel,
		placeholder: opts.Placeholder,
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	if r.channel == "" {
		r.channel = manifest.DefaultChannel
	}
	if r.placeholder == "" {
		r.placeholder = DefaultPlaceholder
	}
	return r
}

// Resolve fetches manifestURL, looks up key and rewrites target. On a fetch
// or parse failure the error is logged and returned and target is left
// untouched. A key missing from the manifest is not an error.
func (r *Resolver) Resolve(ctx context.Context, manifestURL, key string, target Target) (Result, error) {
	lg := log.FromContext(ctx).With("url", manifestURL, "key", key)

	m, err := manifest.Fetch(ctx, r.client, manifestURL)
	if err != nil {
		lg.Error("unable to resolve hash", "err", err)
		return Result{}, err
	}

	// An absent key substitutes the placeholder for itself, leaving the
	// text unchanged.
	value, found := m.Lookup(r.channel, key)
	if !found {
		value = r.placeholder
		lg.Debug("key not in manifest", "channel", r.channel)
	}

	before := target.Text()
	after := Substitute(before, r.placeholder, value)
	lg.Debug("hash resolved", "value", value, "before", before, "after", after)

	target.Render(after)
	return Result{
		ManifestURL: manifestURL,
		Key:         key,
		Value:       value,
		Found:       found,
		Before:      before,
		After:       after,
	}, nil
}

// Channel returns the manifest channel lookups are made against.
func (r *Resolver) Channel() string { return r.channel }
