package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DifanaDAP/ai-reviewer/internal/api"
	"github.com/DifanaDAP/ai-reviewer/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the review engine.

Endpoints:
  GET  /health       health check
  POST /webhook      review a pull request from a webhook event
  POST /api/analyze  analyze a raw diff without posting`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	// The analyzer path serves raw diffs; posting credentials are only
	// validated when a webhook review actually runs.
	eng := buildEngine(cfg, cfg.PRNumber)

	review := func(ctx context.Context, prNumber int) error {
		_, err := buildEngine(cfg, prNumber).Run(ctx)
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	port, _ := cmd.Flags().GetInt("port")

	srv := api.NewServer(eng, review)
	return srv.Start(fmt.Sprintf("%s:%d", addr, port))
}
