package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	apihttp "github.com/GriffinCanCode/AgentOS/runtime/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/blueprint"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort   string
	serveStream string
	serveApps   string
	serveLaunch string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to the generation stream and serve the host API",
	Long: `Connect to the generation stream and serve the host API.

The root session receives generation events from the stream, installs each
generated app and runs its lifecycle hooks. The presentation layer reads the
installed spec and state over HTTP and forwards component events back.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Host.Port = servePort
		}
		if serveStream != "" {
			cfg.Stream.URL = serveStream
		}
		if serveApps != "" {
			cfg.Host.AppsDir = serveApps
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "host API port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveStream, "stream", "", "generation stream URL (overrides STREAM_URL)")
	serveCmd.Flags().StringVar(&serveApps, "apps", "", "prebuilt apps directory (overrides APPS_DIR)")
	serveCmd.Flags().StringVar(&serveLaunch, "launch", "", "catalog app to install in the root session at startup")
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := monitoring.NewMetrics()
	manager := session.NewManager(remoteDeps(cfg, logger, metrics))
	root := manager.Create()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		manager.CloseAll(closeCtx)
	}()

	catalog := blueprint.NewCatalog(logger.Logger)
	if _, _, err := catalog.Seed(cfg.Host.AppsDir); err != nil {
		logger.Warn("failed to seed apps", zap.String("dir", cfg.Host.AppsDir), zap.Error(err))
	}
	if serveLaunch != "" {
		doc, ok := catalog.Get(serveLaunch)
		if !ok {
			return fmt.Errorf("app %q not found in %s", serveLaunch, cfg.Host.AppsDir)
		}
		if err := root.Install(ctx, doc.AppID, doc.Spec); err != nil {
			return fmt.Errorf("launch %s: %w", serveLaunch, err)
		}
	}

	hub := apihttp.NewHub()
	router := apihttp.NewRouter(cfg, apihttp.NewHandlers(manager, root, hub, catalog, logger.Logger), metrics)
	handler, err := apihttp.Compress(router)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host.Host, cfg.Host.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting runtime",
		zap.String("addr", srv.Addr),
		zap.String("backend", cfg.Backend.URL),
		zap.String("stream", cfg.Stream.URL),
		zap.String("root_session", root.ID().String()),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Forward(ctx, root.Events())
		return nil
	})

	g.Go(func() error {
		streamLog := logger.ForSession(root.ID().String()).Named("stream")
		transport.Maintain(ctx, transport.Options{
			URL:              cfg.Stream.URL,
			HandshakeTimeout: cfg.Stream.HandshakeTimeout,
			PingInterval:     cfg.Stream.PingInterval,
			Logger:           streamLog,
		}, transport.Hooks{
			OnConnect: func(c *transport.Client) {
				root.Protocol().SetTransport(c)
			},
			OnDisconnect: func(error) {
				root.Protocol().SetTransport(nil)
			},
			OnFrame: func(data []byte) {
				if err := root.HandleFrame(ctx, data); err != nil {
					streamLog.Warn("frame rejected", zap.Error(err))
				}
			},
		})
		return nil
	})

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
