package tools

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
)

// AppProvider spawns, closes and lists apps through the orchestrator
type AppProvider struct {
	orchestrator Orchestrator
	notifier     Notifier
	appID        func() string
}

// NewAppProvider creates an app provider. appID reports the bound application.
func NewAppProvider(orchestrator Orchestrator, notifier Notifier, appID func() string) *AppProvider {
	return &AppProvider{orchestrator: orchestrator, notifier: notifier, appID: appID}
}

// Category returns app
func (a *AppProvider) Category() types.Category {
	return types.CategoryApp
}

// Handlers returns the app actions
func (a *AppProvider) Handlers() map[string]Handler {
	return map[string]Handler{
		"spawn": a.spawn,
		"close": a.close,
		"list":  a.list,
	}
}

func (a *AppProvider) spawn(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	if a.orchestrator == nil {
		return nil, fmt.Errorf("orchestrator not configured")
	}
	message := GetString(params, "request", GetString(params, "message", ""))
	if message == "" {
		return nil, fmt.Errorf("request parameter required")
	}

	resp, err := a.orchestrator.GenerateUI(ctx, message, a.appID())
	if err != nil {
		return nil, err
	}

	a.notifier.Notify(Notification{
		Kind:  NotifySpawn,
		AppID: resp.ID(),
		Spec:  resp.UISpec,
	})
	return resp.UISpec, nil
}

func (a *AppProvider) close(context.Context, map[string]interface{}) (interface{}, error) {
	a.notifier.Notify(Notification{Kind: NotifyClose, AppID: a.appID()})
	return true, nil
}

func (a *AppProvider) list(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	if a.orchestrator == nil {
		return nil, fmt.Errorf("orchestrator not configured")
	}
	list, err := a.orchestrator.ListApps(ctx)
	if err != nil {
		return nil, err
	}
	return list.Apps, nil
}
