package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/geotech-hub/geoaudit/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve the streamable HTTP transport instead. The HTTP transport binds to
127.0.0.1 unless --host says otherwise: audit_document reads files from this
machine and sends their text to the LLM.

Tools:
  audit_document    run the audit pipeline on a local file
  match_standards   normative context for project parameters
  ask_engineer      engineering chat (requires the LLM endpoint)

Resources:
  geoaudit://audits             recent audits made over MCP
  geoaudit://audits/{clientId}  recent audits for a client

Examples:
  # Stdio mode
  geoaudit mcp

  # HTTP mode (for MCP Inspector)
  geoaudit mcp --port 8080

  # HTTP mode reachable from other hosts
  geoaudit mcp --port 8080 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.Flags().String("host", defaultMCPHost, "HTTP bind address")
	rootCmd.AddCommand(mcpCmd)
}

const defaultMCPHost = "127.0.0.1"

// mcpListenAddr joins host and port; an empty host means loopback.
func mcpListenAddr(host string, port int) string {
	if host == "" {
		host = defaultMCPHost
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	ports := &mcp.Ports{
		Audit:   a.audit,
		Context: a.context,
		History: a.history,
	}
	if a.llmConfigured {
		ports.Chat = a.chat
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := mcpListenAddr(host, port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
