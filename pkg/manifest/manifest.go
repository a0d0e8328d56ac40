package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jlrickert/hashdoc/pkg/log"
)

// DefaultChannel is the release channel looked up when none is configured.
const DefaultChannel = "dev"

// Manifest is the parsed response of a single fetch. It maps release channels
// to key -> hash tables, but any JSON document is accepted; lookups against
// an unexpected shape simply miss.
type Manifest struct {
	data any
}

// Parse decodes raw JSON into a Manifest.
func Parse(b []byte) (*Manifest, error) {
	var data any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return &Manifest{data: data}, nil
}

// Lookup returns data[channel][key] when it is a non-empty string.
func (m *Manifest) Lookup(channel, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	root, ok := m.data.(map[string]any)
	if !ok {
		return "", false
	}
	table, ok := root[channel].(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := table[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Fetch performs one GET of url and parses the body. Transport errors and
// non-2xx responses yield a *FetchError; undecodable bodies a *ParseError.
// There is no retry.
func Fetch(ctx context.Context, client *http.Client, url string) (*Manifest, error) {
	lg := log.FromContext(ctx)
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	m, err := Parse(body)
	if err != nil {
		return nil, &ParseError{URL: url, Err: err}
	}
	lg.Debug("manifest fetched", "url", url, "bytes", len(body))
	return m, nil
}
