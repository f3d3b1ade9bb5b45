package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/clevrprog/internal/cli"
	"github.com/aretw0/clevrprog/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes program conversion to AI agents as MCP tools (convert_program,
convert_clevr_program) and the type catalog as the clevrprog://catalog resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		p, types, closeCache, err := buildPipeline(sc)
		if err != nil {
			return err
		}
		defer closeCache()

		srv := mcp.NewServer(p, types, app.logger)

		switch transport {
		case "stdio":
			// Stdout carries JSON-RPC.
			log.SetOutput(os.Stderr)
			app.logger.Info("Starting clevrprog MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			app.logger.Info("Starting clevrprog MCP Server (SSE)", "port", app.cfg.HTTP.Port)
			if err := srv.ServeSSE(sc, app.cfg.HTTP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			app.logger.Info("MCP Server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 0, "Port to listen on, only for SSE (default from config: 8080)")
}
