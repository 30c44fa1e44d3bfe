package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"des-echo-server/internal/broadcast"
	"des-echo-server/internal/catalog"
	"des-echo-server/internal/config"
	"des-echo-server/internal/echo"
	"des-echo-server/internal/handlers"
	"des-echo-server/internal/logging"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "des-echo-server",
		Short:         "Serve registered mock responses and stream the traffic to observers",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New(), cmd.Flags())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			if err := logging.Init(cfg.LogDir, cfg.LogFile, cfg.LogLevel, cfg.LogJSON); err != nil {
				fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
				return err
			}
			if err := run(cmd.Context(), cfg); err != nil {
				log.WithError(err).Error("server stopped")
				return err
			}
			return nil
		},
	}
	config.InitFlags(cmd.Flags())
	return cmd
}

func openStore(cfg config.Config) (catalog.Store, error) {
	if cfg.Store == config.StoreMemory {
		return catalog.NewMemoryStore(), nil
	}
	return catalog.OpenSQLite(cfg.DSN)
}

func seedStore(ctx context.Context, store catalog.Store, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := catalog.Seed(ctx, store, f)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": file, "endpoints": n}).Info("seeded endpoint catalog")
	return nil
}

func run(ctx context.Context, cfg config.Config) error {
	log.WithFields(log.Fields{
		"listen":      cfg.Listen,
		"store":       cfg.Store,
		"echo-prefix": cfg.EchoPrefix,
	}).Debug("running with configuration")

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Seed != "" {
		if err := seedStore(ctx, store, cfg.Seed); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	registry := broadcast.NewRegistry()
	broadcaster := broadcast.New(registry, cfg.BroadcastQueue)
	coordinator := echo.NewCoordinator(store, broadcaster).WithCatalogTimeout(cfg.CatalogTimeout)

	server := &http.Server{
		Addr: cfg.Listen,
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Store:                store,
			Echo:                 coordinator,
			Registry:             registry,
			EchoPrefix:           cfg.EchoPrefix,
			ObserverWriteTimeout: cfg.ObserverWriteTimeout,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The broadcaster outlives the HTTP server so that records of the last
	// requests still reach the observers.
	deliverCtx, stopDelivery := context.WithCancel(context.Background())
	defer stopDelivery()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return broadcaster.Run(deliverCtx)
	})
	g.Go(func() error {
		log.WithField("address", cfg.Listen).Info("echo server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		stopDelivery()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if dropped := broadcaster.Dropped(); dropped > 0 {
		log.WithField("dropped", dropped).Warn("some transaction records were never delivered")
	}
	return nil
}
