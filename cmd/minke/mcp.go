package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/zx06/minke/internal/config"
	"github.com/zx06/minke/internal/errors"
	mcp_pkg "github.com/zx06/minke/internal/mcp"
	"github.com/zx06/minke/internal/secret"
)

// NewMCPCommand creates the MCP command group
func NewMCPCommand() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP (Model Context Protocol) server commands",
	}
	mcpCmd.AddCommand(newMCPServerCommand())
	return mcpCmd
}

type mcpServerOptions struct {
	transport        string
	transportSet     bool
	httpAddr         string
	httpAddrSet      bool
	httpAuthToken    string
	httpAuthTokenSet bool
}

type mcpServerResolved struct {
	transport     string
	httpAddr      string
	httpAuthToken string
}

// newMCPServerCommand creates the MCP server command
func newMCPServerCommand() *cobra.Command {
	opts := &mcpServerOptions{}
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the read-only MCP server for AI assistant integration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.transportSet = cmd.Flags().Changed("transport")
			opts.httpAddrSet = cmd.Flags().Changed("http-addr")
			opts.httpAuthTokenSet = cmd.Flags().Changed("http-auth-token")
			return runMCPServer(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.transport, "transport", mcp_pkg.TransportStdio, "MCP transport: stdio|streamable_http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", config.DefaultMCPHTTPAddr, "Streamable HTTP listen address")
	cmd.Flags().StringVar(&opts.httpAuthToken, "http-auth-token", "", "Streamable HTTP auth token (required for streamable_http)")
	return cmd
}

func runMCPServer(cmd *cobra.Command, opts *mcpServerOptions) error {
	resolved, xe := resolveMCPServerOptions(opts, GlobalConfig.Resolved.MCP, secretStore(GlobalConfig.Resolved.KeyringService))
	if xe != nil {
		return xe
	}

	ctx := cmdContext(cmd)
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	server, err := mcp_pkg.CreateServer(version, s.Registry)
	if err != nil {
		return errors.AsOrWrap(err)
	}

	logger := GlobalConfig.Logger
	switch resolved.transport {
	case mcp_pkg.TransportStdio:
		logger.Info("mcp server starting", "transport", resolved.transport, "servers", len(s.Registry.Servers()))
		return server.Run(ctx, &mcp.StdioTransport{})
	case mcp_pkg.TransportStreamableHTTP:
		handler, err := mcp_pkg.NewStreamableHTTPHandler(server, resolved.httpAuthToken)
		if err != nil {
			return errors.AsOrWrap(err)
		}
		return mcp_pkg.ServeHTTP(ctx, resolved.httpAddr, handler, logger)
	default:
		return errors.New(errors.CodeCfgInvalid, "unsupported mcp transport", map[string]any{"transport": resolved.transport})
	}
}

// resolveMCPServerOptions 合并 flag 与已解析配置（ENV 已并入 cfg）。
// token 均支持 keyring:<key>；flag 可直接给明文，配置与 ENV 中的明文需 allow_plaintext_token。
func resolveMCPServerOptions(opts *mcpServerOptions, cfg config.MCPConfig, store secret.Store) (mcpServerResolved, *errors.XError) {
	if opts == nil {
		opts = &mcpServerOptions{}
	}

	transport := firstNonEmpty(valueIfSet(opts.transportSet, opts.transport), cfg.Transport, mcp_pkg.TransportStdio)
	if transport != mcp_pkg.TransportStdio && transport != mcp_pkg.TransportStreamableHTTP {
		return mcpServerResolved{}, errors.New(errors.CodeCfgInvalid, "invalid mcp transport", map[string]any{"transport": transport})
	}

	httpAddr := firstNonEmpty(valueIfSet(opts.httpAddrSet, opts.httpAddr), cfg.HTTP.Addr, config.DefaultMCPHTTPAddr)

	authToken := valueIfSet(opts.httpAuthTokenSet, opts.httpAuthToken)
	if secret.IsKeyringRef(authToken) {
		tok, xe := mcp_pkg.ResolveAuthToken(authToken, true, store)
		if xe != nil {
			return mcpServerResolved{}, xe
		}
		authToken = tok
	}
	if authToken == "" && cfg.HTTP.AuthToken != "" && transport == mcp_pkg.TransportStreamableHTTP {
		tok, xe := mcp_pkg.ResolveAuthToken(cfg.HTTP.AuthToken, cfg.HTTP.AllowPlaintextToken, store)
		if xe != nil {
			return mcpServerResolved{}, xe
		}
		authToken = tok
	}
	if transport == mcp_pkg.TransportStreamableHTTP && authToken == "" {
		return mcpServerResolved{}, errors.New(errors.CodeCfgInvalid, "streamable http transport requires auth token", nil)
	}

	return mcpServerResolved{
		transport:     transport,
		httpAddr:      httpAddr,
		httpAuthToken: authToken,
	}, nil
}

func valueIfSet(set bool, value string) string {
	if !set {
		return ""
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
