package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/catalogd/pkg/config"
	"github.com/cuemby/catalogd/pkg/facade"
	"github.com/cuemby/catalogd/pkg/log"
	"github.com/cuemby/catalogd/pkg/metastore"
	"github.com/cuemby/catalogd/pkg/policyreload"
	"github.com/cuemby/catalogd/pkg/reconciler"
	"github.com/cuemby/catalogd/pkg/security"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog cache facade server",
	Long: `serve starts the Update Reconciler, the periodic policy reloader, and
the facade's gRPC and HTTP health servers, then blocks until one of
those servers fails or the process receives SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("server-name", "server1", "This node's identity; selects the certificate directory written by 'cert init --server-name'")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	serverName, _ := cmd.Flags().GetString("server-name")

	logger := log.WithComponent("main")

	if _, err := os.Stat(cfg.Authorization.PolicyFile); os.IsNotExist(err) {
		return fmt.Errorf("policy file %s does not exist; create it before starting the server", cfg.Authorization.PolicyFile)
	}
	reloader, err := policyreload.New(cfg.Authorization.PolicyFile, cfg.PolicyReloadInterval)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}
	reloader.Start()
	defer reloader.Stop()

	rec := reconciler.NewReconciler()
	rec.Start()
	defer rec.Stop()

	metaClient, err := metastore.OpenBolt(cfg.MetaStoreDB)
	if err != nil {
		return fmt.Errorf("open metastore: %w", err)
	}
	pool := metastore.NewPool(metaClient, cfg.MetaStorePoolSize)
	defer pool.Close()

	f := facade.New(rec, reloader, cfg.Authorization.Enabled, pool, nil)

	certDir, err := security.GetCertDir("catalogd", serverName)
	if err != nil {
		return fmt.Errorf("resolve cert directory: %w", err)
	}
	if !security.CertExists(certDir) {
		return fmt.Errorf("no certificate at %s; run 'catalogd cert init --server-name %s' first", certDir, serverName)
	}

	server, err := facade.NewServer(f, certDir)
	if err != nil {
		return fmt.Errorf("build facade server: %w", err)
	}

	healthServer := facade.NewHealthServer(rec)

	errCh := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("starting facade gRPC server")
		if err := server.Start(cfg.ListenAddr); err != nil {
			errCh <- fmt.Errorf("facade server: %w", err)
		}
	}()
	go func() {
		logger.Info().Str("addr", cfg.HealthAddr).Msg("starting health HTTP server")
		if err := healthServer.Start(cfg.HealthAddr); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		server.Stop()
		return nil
	}
}
