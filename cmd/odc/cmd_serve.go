package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
	"github.com/DiogoHD/LLM-and-ODC/internal/mcpserver"
	"github.com/DiogoHD/LLM-and-ODC/internal/store"
)

var serveFlags struct {
	dbPath  string
	noStore bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout offering strip_think, extract_defects
and score_defects. When the store DB exists, list_runs and get_run_scores are
offered as well.

The server exits when its parent process goes away.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.dbPath, "db", "", "Store DB path (default from config: db_path)")
	f.BoolVar(&serveFlags.noStore, "no-store", false, "Do not offer the run tools")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := logging.New("mcp")

	var runs store.Store
	if path := dbPath(serveFlags.dbPath); !serveFlags.noStore {
		if _, err := os.Stat(path); err == nil {
			st, err := store.Open(path)
			if err != nil {
				return err
			}
			defer st.Close()
			runs = st
		} else {
			logger.Info("no store found, run tools disabled", "db", path)
		}
	}

	srv := mcpserver.NewServer(version, runs)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, 2*time.Second, cancel)

	logger.Info("starting odc MCP server over stdio")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
