package cli

import (
	"jobanalyzer/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP relay for job analysis",
	Long: `Start an HTTP server that relays analysis requests to the model API.

Available endpoints:
- POST /api/analyze: Analyze a job posting against a resume
- OPTIONS /api/analyze: CORS preflight
- GET /health: Health check endpoint

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("allowed-origin", "", "Access-Control-Allow-Origin value (overrides config)")

	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.mode", "tls-mode")
	bindFlag("server.tls.certFile", "cert-file")
	bindFlag("server.tls.keyFile", "key-file")
	bindFlag("server.cors.allowedOrigin", "allowed-origin")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	serverCfg := server.ServerConfigFrom(cfg, Version)
	return server.NewServer(cfg, serverCfg, logger).Start()
}
