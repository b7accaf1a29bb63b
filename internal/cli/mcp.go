package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	archivistmcp "github.com/valter-silva-au/archivist/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the archivist MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the archivist MCP server on stdio",
	Long: `Start the archivist MCP server on stdio transport.

The server exposes the archive as MCP tools that AI assistants can call:
build_archive, get_archive, get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ArchiveSvc == nil {
			return fmt.Errorf("archive service not initialized")
		}

		srv := archivistmcp.NewServer(ArchiveSvc, Config, MetricsCalc, appVersion)
		if Logger != nil {
			Logger.Info("serving MCP on stdio", "version", appVersion)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
