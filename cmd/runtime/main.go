package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/remote"
	"github.com/spf13/cobra"
)

var (
	backendURL string
	logLevel   string
	devLogs    bool
)

var rootCmd = &cobra.Command{
	Use:           "runtime",
	Short:         "Host generated apps",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "service gateway and orchestrator base URL (overrides BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&devLogs, "dev", false, "development logging")
	rootCmd.AddCommand(serveCmd, runCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logging.IsProduction() {
		cfg.Logging.Development = false
	}
	if backendURL != "" {
		cfg.Backend.URL = backendURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if devLogs {
		cfg.Logging.Development = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
}

// remoteDeps builds the clients shared by every session
func remoteDeps(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) session.Deps {
	backend := func(name string) *remote.Client {
		return remote.NewClient(remote.Options{
			Name:              name,
			BaseURL:           cfg.Backend.URL,
			Timeout:           cfg.Backend.Timeout,
			MaxRetries:        cfg.Backend.MaxRetries,
			TripOnServerError: true,
			Metrics:           metrics,
			Logger:            logger.ForComponent("remote"),
		})
	}
	passthrough := remote.NewClient(remote.Options{
		Name:              "http_tool",
		Timeout:           cfg.HTTPTools.Timeout,
		RequestsPerSecond: cfg.HTTPTools.RequestsPerSecond,
		Metrics:           metrics,
		Logger:            logger.ForComponent("remote"),
	})

	return session.Deps{
		Gateway:      remote.NewGateway(backend("gateway")),
		Orchestrator: remote.NewOrchestrator(backend("orchestrator")),
		HTTP:         remote.NewPassthrough(passthrough),
		Logger:       logger.Logger,
		Metrics:      metrics,
	}
}
