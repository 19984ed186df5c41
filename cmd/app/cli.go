package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/broadcast"
	"github.com/shuliakovsky/proxy-sync/pkg/docs"
	"github.com/shuliakovsky/proxy-sync/pkg/events"
	"github.com/shuliakovsky/proxy-sync/pkg/health"
	"github.com/shuliakovsky/proxy-sync/pkg/registry"
	"github.com/shuliakovsky/proxy-sync/pkg/seeds"
	"github.com/shuliakovsky/proxy-sync/pkg/tracing"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "proxy-sync",
		Short:         "Proxy registry and data synchronization service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	serve := newServeCmd()
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			PrintVersion(cmd.OutOrStdout())
		},
	}
}

func newServeCmd() *cobra.Command {
	var (
		host, port, store, seedFile string
		peerTimeout                 time.Duration
		trace                       bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Host = host
			}
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("store") {
				cfg.StoreDriver = store
			}
			if flags.Changed("seed-file") {
				cfg.SeedFile = seedFile
			}
			if flags.Changed("peer-timeout") {
				cfg.PeerTimeout = peerTimeout
			}
			if flags.Changed("trace") {
				cfg.Tracing = trace
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "listen host (SERVER_HOST)")
	cmd.Flags().StringVar(&port, "port", "8080", "listen port (SERVER_PORT / PORT)")
	cmd.Flags().StringVar(&store, "store", "", "peer store: mongo|sqlite|memory (STORE_DRIVER)")
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "YAML file of peers enrolled at startup (SEED_FILE)")
	cmd.Flags().DurationVar(&peerTimeout, "peer-timeout", 10*time.Second, "timeout of the shared peer HTTP client (PEER_TIMEOUT)")
	cmd.Flags().BoolVar(&trace, "trace", false, "enable OpenTelemetry stdout tracing (TRACING)")
	return cmd
}

func run(cfg config) error {
	PrintVersion(os.Stdout)

	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg.Tracing)
	if err != nil {
		logger.Warn("tracing_setup_error", zap.Error(err))
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	store, err := initStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store_init_error", zap.Error(err))
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	client, err := broadcast.NewHTTPClient(cfg.PeerTimeout, cfg.PeerSocks5)
	if err != nil {
		logger.Error("peer_client_error", zap.Error(err))
		return err
	}

	reg := registry.New(store, logger)
	engine := broadcast.New(reg, client, logger)
	checker := health.New(engine, client, logger)
	enroller := registry.NewEnroller(reg, checker, logger)
	hub := events.NewHub()

	if cfg.SeedFile != "" {
		urls, err := seeds.LoadFile(cfg.SeedFile, logger)
		if err != nil {
			logger.Error("seed_load_error", zap.String("file", cfg.SeedFile), zap.Error(err))
			return err
		}
		added := seeds.Apply(ctx, enroller, urls, logger)
		logger.Info("seeds_applied", zap.Int("seeds", len(urls)), zap.Int("added", added))
	}

	docs.Configure(cfg.Host, cfg.Port)
	handler := registerRoutes(reg, enroller, engine, checker, hub, logger)
	if err := startServer(ctx, cfg.Host, cfg.Port, handler, logger); err != nil {
		logger.Error("Server down", zap.Error(err))
		return err
	}
	return nil
}
