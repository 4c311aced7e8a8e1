package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/go-resty/resty/v2"
)

// ErrGenerationFailed is returned when the orchestrator replies with an error field
var ErrGenerationFailed = errors.New("generation failed")

// Orchestrator talks to the app orchestrator of the generation service
type Orchestrator struct {
	client *Client
}

// NewOrchestrator creates an orchestrator client
func NewOrchestrator(client *Client) *Orchestrator {
	return &Orchestrator{client: client}
}

// GenerateUI requests a new app spec. parentID links the child to the
// spawning application and may be empty.
func (o *Orchestrator) GenerateUI(ctx context.Context, message, parentID string) (*types.UIResponse, error) {
	body := types.UIRequest{
		Message: message,
		Context: types.SpawnContext{ParentApplicationID: parentID},
	}

	resp, err := o.client.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).Post("/generate-ui")
	})
	if err != nil {
		return nil, fmt.Errorf("generate ui: %w", err)
	}

	var out types.UIResponse
	if err := Decode(resp, &out); err != nil {
		if resp.IsError() {
			return nil, fmt.Errorf("generate ui: orchestrator returned %s", resp.Status())
		}
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, out.Error)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("generate ui: orchestrator returned %s", resp.Status())
	}
	if out.UISpec == nil {
		return nil, fmt.Errorf("%w: reply has no ui_spec", ErrGenerationFailed)
	}
	out.UISpec.Normalize()
	return &out, nil
}

// ListApps returns the apps the orchestrator is running
func (o *Orchestrator) ListApps(ctx context.Context) (*types.AppList, error) {
	resp, err := o.client.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/apps")
	})
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list apps: orchestrator returned %s", resp.Status())
	}

	var out types.AppList
	if err := Decode(resp, &out); err != nil {
		return nil, err
	}
	if out.Apps == nil {
		out.Apps = []types.App{}
	}
	return &out, nil
}
