package mcptool_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jlrickert/hashdoc/pkg/hashdoc"
	"github.com/jlrickert/hashdoc/pkg/mcptool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

const helloKey = "service/valory/hello_world/0.1.0"

var testImpl = &mcp.Implementation{Name: "hashdoc-test", Version: "0.1.0"}

func session(t *testing.T) (*mcp.ClientSession, string) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hashes.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dev": {"` + helloKey + `": "bafybeigh"}}`))
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	manifests := httptest.NewServer(mux)
	t.Cleanup(manifests.Close)

	docs, err := hashdoc.New(hashdoc.Options{Client: manifests.Client()})
	require.NoError(t, err)
	srv := mcptool.NewServer(docs, "test")

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs, manifests.URL
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return tc.Text, res.IsError
}

func TestResolveTool(t *testing.T) {
	cs, base := session(t)

	text, isErr := callTool(t, cs, mcptool.ToolResolve, map[string]any{
		"url":  base + "/hashes.json",
		"key":  helloKey,
		"text": "autonomy fetch valory/hello_world:0.1.0:<hash> --service",
	})
	require.False(t, isErr, text)

	var resp struct {
		Text  string `json:"text"`
		HTML  string `json:"html"`
		Value string `json:"value"`
		Found bool   `json:"found"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Equal(t, "autonomy fetch valory/hello_world:0.1.0:bafybeigh --service", resp.Text)
	require.Equal(t, "bafybeigh", resp.Value)
	require.True(t, resp.Found)
	require.Equal(t,
		`<div class="highlight"><pre><span></span><code>autonomy fetch valory/hello_world:0.1.0:bafybeigh --service</code></pre></div>`,
		resp.HTML)
}

func TestResolveTool_FetchFailure(t *testing.T) {
	cs, base := session(t)
	text, isErr := callTool(t, cs, mcptool.ToolResolve, map[string]any{
		"url":  base + "/broken.json",
		"key":  helloKey,
		"text": "<hash>",
	})
	require.True(t, isErr)
	require.Contains(t, text, "500")
}

func TestRewriteHTMLTool(t *testing.T) {
	cs, base := session(t)
	doc := `<div data-manifest-url="` + base + `/hashes.json" data-manifest-key="` + helloKey + `">&lt;hash&gt;</div>` +
		`<div data-manifest-url="` + base + `/hashes.json" data-manifest-key="nope">&lt;hash&gt;</div>`

	text, isErr := callTool(t, cs, mcptool.ToolRewriteHTML, map[string]any{"html": doc})
	require.False(t, isErr, text)

	var resp struct {
		HTML     string `json:"html"`
		Bindings int    `json:"bindings"`
		Resolved int    `json:"resolved"`
		Missing  int    `json:"missing"`
		Failed   int    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Equal(t, 2, resp.Bindings)
	require.Equal(t, 1, resp.Resolved)
	require.Equal(t, 1, resp.Missing)
	require.Equal(t, 0, resp.Failed)
	require.Contains(t, resp.HTML, "<code>bafybeigh</code>")
}
