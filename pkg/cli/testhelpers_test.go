package cli_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	tu "github.com/jlrickert/cli-toolkit/sandbox"
	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/hashdoc/pkg/cli"
)

const helloKey = "service/valory/hello_world/0.1.0"

func NewSandbox(t *testing.T, opts ...tu.Option) *tu.Sandbox {
	return tu.NewSandbox(t, &tu.Options{
		Home: "/home/testuser",
		User: "testuser",
	}, opts...)
}

func NewProcess(t *testing.T, args ...string) *tu.Process {
	return tu.NewProcess(func(ctx context.Context, rt *toolkit.Runtime) (int, error) {
		return cli.Run(ctx, rt, args)
	}, false)
}

// NewManifestServer serves a dev manifest at /hashes.json, a prod manifest
// at /prod.json and a failing endpoint at /broken.json.
func NewManifestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hashes.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dev": {"` + helloKey + `": "bafybeigh"}}`))
	})
	mux.HandleFunc("/prod.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dev": {"` + helloKey + `": "bafydev"}, "prod": {"` + helloKey + `": "bafyprod"}}`))
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func bindingPage(manifestURL, key string) []byte {
	return []byte(`<div data-manifest-url="` + manifestURL + `" data-manifest-key="` + key + `">` +
		`<pre><code>autonomy fetch valory/hello_world:0.1.0:&lt;hash&gt; --service</code></pre></div>` + "\n")
}
