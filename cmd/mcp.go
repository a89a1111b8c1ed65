package cmd

import (
	"io"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bgdnvk/hrassist/internal/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the HR assistant as an MCP tool over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol; logs go to stderr only when debugging.
		var logOut io.Writer = io.Discard
		if viper.GetBool("debug") {
			logOut = cmd.ErrOrStderr()
		}
		a, err := buildApp(cmd.Context(), buildOptions{jsonLogs: true, logOutput: logOut})
		if err != nil {
			return err
		}
		defer a.Close()

		return mcpserver.ServeStdio(server.NewMCPServer(a.engine, version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
