package cmd

import (
	"context"
	"fmt"

	"github.com/agentic-research/familiar-registry/internal/graph"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <bundle-dir>",
	Short: "Serve the query surface as an MCP stdio server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(args[0])
		if err != nil {
			return err
		}

		s := server.NewMCPServer("familiar-registry", Version)

		s.AddTool(mcp.NewTool("resolve",
			mcp.WithDescription("Resolve an id, path, or title to a canonical schema id"),
			mcp.WithString("query", mcp.Required(), mcp.Description("id, file path, or title to resolve")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			query := req.GetString("query", "")
			id, ok := engine.Graph.Resolve(query)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("no schema resolves %q", query)), nil
			}
			return mcp.NewToolResultText(string(id)), nil
		})

		s.AddTool(mcp.NewTool("closure",
			mcp.WithDescription("Outgoing transitive closure of schema references from id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("canonical schema id")),
			mcp.WithNumber("max_depth", mcp.Description("0 for unlimited")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, ok := engine.Graph.Resolve(req.GetString("id", ""))
			if !ok {
				return mcp.NewToolResultError("unknown schema id"), nil
			}
			depth := int(req.GetFloat("max_depth", 0))
			return mcp.NewToolResultText(fmt.Sprintf("%v", engine.Graph.Closure(id, graph.Outgoing, depth))), nil
		})

		s.AddTool(mcp.NewTool("blast_radius",
			mcp.WithDescription("Everything that transitively depends on id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("canonical schema id")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, ok := engine.Graph.Resolve(req.GetString("id", ""))
			if !ok {
				return mcp.NewToolResultError("unknown schema id"), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("%v", engine.Graph.BlastRadius(id, nil))), nil
		})

		s.AddTool(mcp.NewTool("search",
			mcp.WithDescription("Fuzzy-search schema titles and file-name stems"),
			mcp.WithString("query", mcp.Required(), mcp.Description("search text")),
			mcp.WithNumber("limit", mcp.Description("max hits, default 10")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			limit := int(req.GetFloat("limit", 10))
			hits := engine.Graph.Search(req.GetString("query", ""), limit)
			return mcp.NewToolResultText(fmt.Sprintf("%v", hits)), nil
		})

		s.AddTool(mcp.NewTool("affected_artifacts",
			mcp.WithDescription("Generated artifacts that must regenerate if id changes"),
			mcp.WithString("id", mcp.Required(), mcp.Description("canonical schema id")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, ok := engine.Graph.Resolve(req.GetString("id", ""))
			if !ok {
				return mcp.NewToolResultError("unknown schema id"), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("%v", engine.Artifacts.AffectedArtifacts(engine.Graph, id))), nil
		})

		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
