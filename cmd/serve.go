package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bgdnvk/hrassist/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HR assistant HTTP API",
	Long: `Serve the chatbot API used by the HR portal:

  POST   /api/chatbot/ask
  GET    /api/chatbot/history
  DELETE /api/chatbot/context
  GET    /health
  GET    /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			viper.Set("server.addr", addr)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, buildOptions{jsonLogs: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		if a.verifier == nil {
			a.logger.Warn("auth.jwt_secret not set, every caller is anonymous")
		}

		sc := a.cfg.Server
		srv := server.New(server.Config{
			Addr:           sc.Addr,
			AllowedOrigins: sc.AllowedOrigins,
			RateLimit:      sc.RateLimit,
			RateBurst:      sc.RateBurst,
			ReadTimeout:    sc.ReadTimeout,
			WriteTimeout:   sc.WriteTimeout,
		}, a.engine, a.verifier, a.registry, a.logger)
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address, overrides server.addr")
}
