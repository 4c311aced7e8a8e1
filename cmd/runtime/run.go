package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/blueprint"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/spf13/cobra"
)

var (
	runSpec   string
	runEvents []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Install a local spec file and print its component tree",
	Long: `Install a local spec file (.json, .bp, .yaml, .yml or .toml) into a
fresh session, run its mount hooks, fire any --event component:event pairs in
order, then print the component tree with the resulting state.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		out, err := runFile(cmd.Context(), runSpec, runEvents, remoteDeps(cfg, logger, monitoring.NewMetrics()))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runSpec, "spec", "", "spec file to install")
	runCmd.Flags().StringArrayVar(&runEvents, "event", nil, "component:event to dispatch after mount (repeatable)")
	_ = runCmd.MarkFlagRequired("spec")
}

// runFile installs path into a new session and renders the result
func runFile(ctx context.Context, path string, events []string, deps session.Deps) (string, error) {
	doc, err := blueprint.Load(path)
	if err != nil {
		return "", err
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop().Logger
	}

	manager := session.NewManager(deps)
	s := manager.Create()
	defer manager.CloseAll(ctx)

	if err := s.Install(ctx, doc.AppID, doc.Spec); err != nil {
		return "", err
	}

	for _, ev := range events {
		componentID, event, ok := strings.Cut(ev, ":")
		if !ok {
			return "", fmt.Errorf("event %q must be component:event", ev)
		}
		if _, err := s.Dispatch(ctx, componentID, event, nil); err != nil {
			return "", err
		}
	}

	return renderTree(doc.AppID, doc.Spec, s.Store().Snapshot()), nil
}
