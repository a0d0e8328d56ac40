// Package mcptool exposes hash resolution as MCP tools.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jlrickert/hashdoc/pkg/hashdoc"
)

const (
	ToolResolve     = "hashdoc_resolve"
	ToolRewriteHTML = "hashdoc_rewrite_html"
)

// NewServer returns an MCP server with the hashdoc tools registered.
func NewServer(docs *hashdoc.Hashdoc, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "hashdoc", Version: version}, nil)
	Register(srv, docs)
	return srv
}

// Serve runs the tools over stdio until ctx is done or the client hangs up.
func Serve(ctx context.Context, docs *hashdoc.Hashdoc, version string) error {
	return NewServer(docs, version).Run(ctx, &mcp.StdioTransport{})
}

// Register adds the hashdoc tools to srv.
func Register(srv *mcp.Server, docs *hashdoc.Hashdoc) {
	registerResolveTool(srv, docs)
	registerRewriteHTMLTool(srv, docs)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- resolve ---

type resolveReq struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Text string `json:"text"`
}

type resolveResp struct {
	Text  string `json:"text"`
	HTML  string `json:"html"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

func registerResolveTool(srv *mcp.Server, docs *hashdoc.Hashdoc) {
	tool := &mcp.Tool{
		Name:        ToolResolve,
		Description: "Replace every <hash> placeholder in a text block with the hash looked up from a JSON manifest.",
		InputSchema: inputSchema(map[string]any{
			"url":  map[string]any{"type": "string", "description": "Manifest URL"},
			"key":  map[string]any{"type": "string", "description": "Lookup key in the manifest's channel table"},
			"text": map[string]any{"type": "string", "description": "Text containing the placeholder"},
		}, []string{"url", "key", "text"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r resolveReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		block, res, err := docs.ResolveText(ctx, r.URL, r.Key, r.Text)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(resolveResp{
			Text:  block.Text(),
			HTML:  block.HTML(),
			Value: res.Value,
			Found: res.Found,
		})
	})
}

// --- rewrite html ---

type rewriteReq struct {
	HTML string `json:"html"`
}

type rewriteResp struct {
	HTML     string `json:"html"`
	Bindings int    `json:"bindings"`
	Resolved int    `json:"resolved"`
	Missing  int    `json:"missing"`
	Failed   int    `json:"failed"`
}

func registerRewriteHTMLTool(srv *mcp.Server, docs *hashdoc.Hashdoc) {
	tool := &mcp.Tool{
		Name:        ToolRewriteHTML,
		Description: "Resolve every hash binding declared in an HTML document and return the rewritten document.",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "HTML document"},
		}, []string{"html"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r rewriteReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		out, report, err := docs.RewriteBytes(ctx, "document.html", []byte(r.HTML))
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(rewriteResp{
			HTML:     string(out),
			Bindings: report.Len(),
			Resolved: len(report.Resolved()),
			Missing:  len(report.Missing()),
			Failed:   len(report.Failed()),
		})
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Errorf("marshal: %w", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
