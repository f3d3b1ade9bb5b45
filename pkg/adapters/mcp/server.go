package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/internal/logging"
	"github.com/aretw0/clevrprog/pkg/catalog"
	"github.com/aretw0/clevrprog/pkg/corpus"
	"github.com/aretw0/clevrprog/pkg/ports"
	"github.com/aretw0/clevrprog/pkg/sexpr"
)

// CatalogURI is the resource listing the type catalog.
const CatalogURI = "clevrprog://catalog"

// ConvertResponse is the structured result of the conversion tools.
type ConvertResponse struct {
	Input  string      `json:"input"`
	Output string      `json:"output"`
	Tree   *sexpr.Node `json:"tree,omitempty"`
}

// convertOutputSchema describes ConvertResponse. It is written by hand
// because the tree is recursive and cannot be reflected inline.
const convertOutputSchema = `{
  "type": "object",
  "properties": {
    "input": {"type": "string", "description": "The expression that was converted"},
    "output": {"type": "string", "description": "The typed, filter-reversed expression"},
    "tree": {"$ref": "#/$defs/node", "description": "The converted tree, when requested"}
  },
  "required": ["input", "output"],
  "$defs": {
    "node": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "type": {"type": "string"},
        "children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
      },
      "required": ["name"]
    }
  }
}`

// convertArgs are the arguments of convert_program.
type convertArgs struct {
	Expr string `mapstructure:"expr"`
	Tree bool   `mapstructure:"tree"`
}

// programArgs are the arguments of convert_clevr_program.
type programArgs struct {
	Program string `mapstructure:"program"`
	Tree    bool   `mapstructure:"tree"`
}

// Server exposes a converter as an MCP server.
type Server struct {
	conv      ports.Converter
	types     *catalog.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. types backs the catalog
// resource and may be nil.
func NewServer(conv ports.Converter, types *catalog.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		conv:      conv,
		types:     types,
		logger:    logger,
		mcpServer: server.NewMCPServer("clevrprog-mcp", strings.TrimSpace(clevrprog.Version)),
	}
	s.registerTools()
	if types != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	convertTool := mcp.NewTool("convert_program",
		mcp.WithDescription("Convert a CLEVR program s-expression: reverse filter chains and annotate every symbol with its type."),
		mcp.WithString("expr", mcp.Required(), mcp.Description("Program expression, e.g. (count (filter_color scene red))")),
		mcp.WithBoolean("tree", mcp.Description("Also return the converted tree as JSON")),
		mcp.WithRawOutputSchema(json.RawMessage(convertOutputSchema)),
	)
	s.mcpServer.AddTool(convertTool, mcp.NewStructuredToolHandler(s.handleConvert))

	programTool := mcp.NewTool("convert_clevr_program",
		mcp.WithDescription("Convert a CLEVR question program given as its JSON list of function steps."),
		mcp.WithString("program", mcp.Required(), mcp.Description(`JSON array of steps, e.g. [{"function":"scene","inputs":[]},{"function":"count","inputs":[0]}]`)),
		mcp.WithBoolean("tree", mcp.Description("Also return the converted tree as JSON")),
		mcp.WithRawOutputSchema(json.RawMessage(convertOutputSchema)),
	)
	s.mcpServer.AddTool(programTool, mcp.NewStructuredToolHandler(s.handleConvertProgram))
}

func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ConvertResponse, error) {
	var in convertArgs
	if err := mapstructure.WeakDecode(args, &in); err != nil {
		return ConvertResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(in.Expr) == "" {
		return ConvertResponse{}, errors.New("expr is required")
	}
	return s.convert(ctx, in.Expr, in.Tree)
}

func (s *Server) handleConvertProgram(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ConvertResponse, error) {
	var in programArgs
	if err := mapstructure.WeakDecode(args, &in); err != nil {
		return ConvertResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	var raw []any
	if err := json.Unmarshal([]byte(in.Program), &raw); err != nil {
		return ConvertResponse{}, fmt.Errorf("program is not a JSON array: %w", err)
	}
	steps, err := corpus.DecodeProgram(raw)
	if err != nil {
		return ConvertResponse{}, err
	}
	expr, err := corpus.ProgramToSexpr(steps)
	if err != nil {
		return ConvertResponse{}, err
	}
	return s.convert(ctx, expr, in.Tree)
}

func (s *Server) convert(ctx context.Context, expr string, withTree bool) (ConvertResponse, error) {
	out, err := s.conv.ProcessContext(ctx, expr)
	if err != nil {
		s.logger.Debug("MCP Convert: Rejected", "expr", expr, "err", err)
		return ConvertResponse{}, fmt.Errorf("conversion failed: %w", err)
	}

	resp := ConvertResponse{Input: expr, Output: out}
	if withTree {
		if resp.Tree, err = sexpr.ParseTyped(out); err != nil {
			return ConvertResponse{}, err
		}
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Type Catalog",
		mcp.WithResourceDescription("symbol:type entries used to annotate programs"),
		mcp.WithMIMEType("text/plain"),
	), s.handleCatalog)
}

func (s *Server) handleCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var buf bytes.Buffer
	if _, err := s.types.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "text/plain",
			Text:     buf.String(),
		},
	}, nil
}
