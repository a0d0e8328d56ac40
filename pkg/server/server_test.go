package server_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tu "github.com/jlrickert/cli-toolkit/sandbox"
	"github.com/jlrickert/hashdoc/pkg/eventlog"
	"github.com/jlrickert/hashdoc/pkg/hashdoc"
	"github.com/jlrickert/hashdoc/pkg/log"
	"github.com/jlrickert/hashdoc/pkg/server"
	"github.com/stretchr/testify/require"
)

const helloKey = "service/valory/hello_world/0.1.0"

func setup(t *testing.T) (*httptest.Server, *tu.Sandbox) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hashes.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dev": {"` + helloKey + `": "bafybeigh"}}`))
	})
	manifests := httptest.NewServer(mux)
	t.Cleanup(manifests.Close)

	sb := tu.NewSandbox(t, &tu.Options{Home: "/home/testuser", User: "testuser"})
	page := `<html><body><div data-manifest-url="` + manifests.URL + `/hashes.json" data-manifest-key="` + helloKey + `">` +
		`<pre><code>autonomy fetch valory/hello_world:0.1.0:&lt;hash&gt; --service</code></pre></div>` +
		`<div data-manifest-url="` + manifests.URL + `/hashes.json" data-manifest-key="nope">&lt;hash&gt;</div>` +
		`</body></html>`
	sb.MustWriteFile("site/index.html", []byte(page), 0o644)
	sb.MustWriteFile("site/style.css", []byte("body{}"), 0o644)
	return manifests, sb
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestServer(t *testing.T) {
	manifests, sb := setup(t)
	docs, err := hashdoc.New(hashdoc.Options{Client: manifests.Client(), Runtime: sb.Runtime()})
	require.NoError(t, err)

	events := eventlog.New(10)
	lg, _ := log.NewTestLogger(t)
	s := server.New(lg, "site", docs, events)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	t.Run("html is resolved on the fly", func(t *testing.T) {
		resp, body := get(t, srv, "/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
		require.Contains(t, body,
			`<div class="highlight"><pre><span></span><code>autonomy fetch valory/hello_world:0.1.0:bafybeigh --service</code></pre></div>`)

		// The source file is never modified.
		require.Contains(t, string(sb.MustReadFile("site/index.html")), "&lt;hash&gt; --service")
	})

	t.Run("static files pass through", func(t *testing.T) {
		resp, body := get(t, srv, "/style.css")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "body{}", body)
	})

	t.Run("head is answered", func(t *testing.T) {
		for _, p := range []string{"/", "/style.css", server.RecentPath} {
			resp, err := srv.Client().Head(srv.URL + p)
			require.NoError(t, err)
			_ = resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode, p)
		}
	})

	t.Run("missing files 404", func(t *testing.T) {
		resp, _ := get(t, srv, "/nope.html")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("traversal stays inside root", func(t *testing.T) {
		resp, _ := get(t, srv, "/../../etc/passwd")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("recent events", func(t *testing.T) {
		resp, body := get(t, srv, server.RecentPath)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "["+helloKey+"] resolved bafybeigh")
		require.Contains(t, body, "[nope] missing from manifest")
	})
}
