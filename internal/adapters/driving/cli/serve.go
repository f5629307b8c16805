package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/geotech-hub/geoaudit/internal/adapters/driving/api"
	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

var (
	serveAddr    string
	serveStorage string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API:

  POST /api/v1/ai/parse-document   multipart upload, field "file"
  POST /api/v1/ai/chat             engineer chat
  POST /api/v1/ai/proposal         cost estimate
  GET  /api/v1/audits              recent audits for a client
  GET  /health

The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveStorage, "storage", "", "storage backend: memory or sqlite (overrides storage.backend)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger.SetTimestamps(true)

	a, err := newApp(func(s *domain.AuditSettings) {
		if serveAddr != "" {
			s.HTTPAddr = serveAddr
		}
		if serveStorage != "" {
			s.Storage = domain.StorageBackend(serveStorage)
		}
	})
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	server, err := api.NewServer(&api.Ports{
		Audit:    a.audit,
		Chat:     a.chat,
		Proposal: a.proposal,
		History:  a.history,
	}, a.settings.MaxUploadBytes(), api.WithTrustedProxy(a.settings.TrustProxy))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Storage: %s, upload limit %d MB, %d audits per %s",
		a.settings.Storage.Description(), a.settings.MaxUploadMB, a.settings.HourlyLimit, a.settings.QuotaWindow)
	return server.Run(ctx, a.settings.HTTPAddr)
}
