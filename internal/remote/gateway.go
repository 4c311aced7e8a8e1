package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/go-resty/resty/v2"
)

// ErrServiceFailed is returned when the gateway reports success=false
var ErrServiceFailed = errors.New("service call failed")

// Gateway executes remote-category tools
type Gateway struct {
	client *Client
}

// NewGateway creates a gateway backed by client
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

// Execute posts a tool invocation to /services/execute and returns its data
func (g *Gateway) Execute(ctx context.Context, req types.ExecuteRequest) (interface{}, error) {
	if req.Params == nil {
		req.Params = map[string]interface{}{}
	}

	resp, err := g.client.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post("/services/execute")
	})
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", req.ToolID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("execute %s: gateway returned %s", req.ToolID, resp.Status())
	}

	var result types.Result
	if err := Decode(resp, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		msg := "unknown error"
		if result.Error != nil && *result.Error != "" {
			msg = *result.Error
		}
		return nil, fmt.Errorf("%w: %s", ErrServiceFailed, msg)
	}
	return result.Data, nil
}
