package tools

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/state"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/timers"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrorKey is the state key holding the last tool failure
const ErrorKey = "error"

// Gateway executes remote-category tools
type Gateway interface {
	Execute(ctx context.Context, req types.ExecuteRequest) (interface{}, error)
}

// Orchestrator generates and lists apps
type Orchestrator interface {
	GenerateUI(ctx context.Context, message, parentID string) (*types.UIResponse, error)
	ListApps(ctx context.Context) (*types.AppList, error)
}

// Fetcher performs passthrough http requests
type Fetcher interface {
	Fetch(ctx context.Context, method, url string, headers map[string]string, body interface{}) (*resty.Response, error)
}

// Deps are the collaborators of an Executor. Only Store is required.
type Deps struct {
	Store        *state.Store
	Timers       *timers.Registry
	Gateway      Gateway
	Orchestrator Orchestrator
	HTTP         Fetcher
	Notifier     Notifier
	SessionID    string
	Logger       *zap.Logger
	Metrics      *monitoring.Metrics
}

// Executor dispatches tool ids to built-in handlers or the service gateway.
// Execute never returns an error: failures land in the store under ErrorKey.
type Executor struct {
	registry  *Registry
	store     *state.Store
	gateway   Gateway
	sessionID string
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	mu    sync.RWMutex
	appID string
}

// NewExecutor creates an executor with every built-in category registered
func NewExecutor(deps Deps) *Executor {
	if deps.Store == nil {
		deps.Store = state.NewStore()
	}
	if deps.Timers == nil {
		deps.Timers = timers.NewRegistry()
	}
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	e := &Executor{
		registry:  NewRegistry(),
		store:     deps.Store,
		gateway:   deps.Gateway,
		sessionID: deps.SessionID,
		logger:    deps.Logger.Named("tools"),
		metrics:   deps.Metrics,
	}

	providers := []Provider{
		NewCalcProvider(deps.Store),
		NewUIProvider(deps.Store),
		NewSystemProvider(deps.Notifier, e.logger),
		NewAppProvider(deps.Orchestrator, deps.Notifier, e.AppID),
		NewHTTPProvider(deps.HTTP),
		NewTimerProvider(deps.Store, deps.Timers, e),
	}
	for _, p := range providers {
		// Built-ins are never remote categories.
		_ = e.registry.Register(p)
	}
	return e
}

// Registry exposes the handler registry for extension
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Store returns the state store tools operate on
func (e *Executor) Store() *state.Store {
	return e.store
}

// BindApp sets the application id sent with remote calls
func (e *Executor) BindApp(appID string) {
	e.mu.Lock()
	e.appID = appID
	e.mu.Unlock()
}

// AppID returns the bound application id
func (e *Executor) AppID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appID
}

// Execute runs a tool and returns its result, or nil on failure or for
// unknown tools. It never panics.
func (e *Executor) Execute(ctx context.Context, toolID string, params map[string]interface{}) interface{} {
	result, _ := e.Run(ctx, toolID, params)
	return result
}

// Run is Execute that also reports the isolated failure. The failure has
// already been logged and stored; callers use it for bookkeeping only.
// Unknown tools are not failures.
func (e *Executor) Run(ctx context.Context, toolID string, params map[string]interface{}) (interface{}, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	start := time.Now()
	category, _, _ := SplitToolID(toolID)
	logger := e.logger.With(zap.String("tool_id", toolID), zap.String("session_id", e.sessionID))
	logger.Debug("executing tool")

	route := "builtin"
	if category.IsRemote() {
		route = "remote"
	}

	result, err := e.call(ctx, toolID, category, params)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrUnknownTool):
		logger.Warn("unknown tool", zap.Duration("elapsed", elapsed))
		e.metrics.RecordToolCall(string(category), "unknown", "ignored", elapsed)
		return nil, nil
	case err != nil:
		errorType := "error"
		var pe *panicError
		if errors.As(err, &pe) {
			errorType = "panic"
		}
		logger.Error("tool failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		e.store.Set(ErrorKey, fmt.Sprintf("Tool %s failed: %v", toolID, err))
		e.metrics.RecordToolCall(string(category), route, "error", elapsed)
		e.metrics.RecordToolError(string(category), errorType)
		return nil, err
	}

	logger.Debug("tool completed", zap.Duration("elapsed", elapsed))
	e.metrics.RecordToolCall(string(category), route, "success", elapsed)
	return result, nil
}

// ExecuteAsync runs Execute on its own goroutine. The channel receives
// exactly one value.
func (e *Executor) ExecuteAsync(ctx context.Context, toolID string, params map[string]interface{}) <-chan interface{} {
	out := make(chan interface{}, 1)
	go func() {
		out <- e.Execute(ctx, toolID, params)
	}()
	return out
}

type panicError struct {
	value interface{}
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func (e *Executor) call(ctx context.Context, toolID string, category types.Category, params map[string]interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
			e.logger.Debug("recovered tool panic", zap.ByteString("stack", err.(*panicError).stack))
		}
	}()

	if category.IsRemote() {
		if e.gateway == nil {
			return nil, fmt.Errorf("service gateway not configured")
		}
		return e.gateway.Execute(ctx, types.ExecuteRequest{
			ToolID:        toolID,
			Params:        params,
			ApplicationID: e.AppID(),
		})
	}

	h, err := e.registry.Resolve(toolID)
	if err != nil {
		return nil, err
	}
	return h(ctx, params)
}
