package cmd

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/vdt/jetpants/pkg/host"
)

type mcpExecArgs struct {
	Machine string `json:"machine" jsonschema:"inventory name, alias or address of the machine"`
	Command string `json:"command" jsonschema:"shell command to run"`
}

type mcpPathArgs struct {
	Machine string `json:"machine" jsonschema:"inventory name, alias or address of the machine"`
	Path    string `json:"path" jsonschema:"absolute remote path"`
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve fleet operations as MCP tools over stdio",
	Long: `Expose exec, ls and du as Model Context Protocol tools so agent
frontends can drive the fleet through the same pooled executor the
CLI uses.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		server := mcp.NewServer(&mcp.Implementation{Name: "jetpants", Version: "2026.08.29"}, nil)

		mcp.AddTool(server, &mcp.Tool{
			Name:        "exec",
			Description: "Run a shell command on an administered machine",
		}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpExecArgs) (*mcp.CallToolResult, any, error) {
			out, err := a.resolveOne(args.Machine).Run(ctx, args.Command)
			if err != nil {
				return nil, nil, err
			}
			return textResult(out), nil, nil
		})

		mcp.AddTool(server, &mcp.Tool{
			Name:        "ls",
			Description: "List a remote directory as a name to size map; DIR marks subdirectories",
		}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpPathArgs) (*mcp.CallToolResult, host.DirectoryListing, error) {
			listing, err := a.resolveOne(args.Machine).ListDirectory(ctx, args.Path)
			if err != nil {
				return nil, nil, err
			}
			return textResult(fmt.Sprintf("%d entries", len(listing))), listing, nil
		})

		mcp.AddTool(server, &mcp.Tool{
			Name:        "du",
			Description: "Recursively sum the size of a remote directory tree in bytes",
		}, func(ctx context.Context, req *mcp.CallToolRequest, args mcpPathArgs) (*mcp.CallToolResult, any, error) {
			total, err := a.resolveOne(args.Machine).TotalSize(ctx, args.Path)
			if err != nil {
				return nil, nil, err
			}
			return textResult(fmt.Sprintf("%d", total)), nil, nil
		})

		return server.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
