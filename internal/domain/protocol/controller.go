package protocol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/lifecycle"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/state"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/utils"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// AppIDKey is the state key holding the installed application id
const AppIDKey = "application_id"

// notConnectedMessage is shown when there is no stream to send on
const notConnectedMessage = "Not connected to server"

var (
	// ErrNotConnected is returned by Generate without a transport
	ErrNotConnected = errors.New("not connected")
	// ErrUnknownEvent is returned for event types the controller does not know
	ErrUnknownEvent = errors.New("unknown event type")
)

// Status is the generation state of a session
type Status string

const (
	StatusIdle       Status = "idle"
	StatusRequesting Status = "requesting"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Transport sends outbound messages on the generation stream
type Transport interface {
	Send(ctx context.Context, msg types.WSMessage) error
}

// Binder receives the installed application id
type Binder interface {
	BindApp(appID string)
}

// Canceler cancels session timers
type Canceler interface {
	CancelAll() int
}

// Deps are the collaborators of a Controller
type Deps struct {
	Store     *state.Store
	Timers    Canceler
	Executor  Binder
	Lifecycle *lifecycle.Controller
	Transport Transport
	Logger    *zap.Logger
	Metrics   *monitoring.Metrics
}

// Controller consumes generation events and installs generated apps.
//
// Events are expected from one goroutine in arrival order. Generate and
// the read accessors may be called from any goroutine.
type Controller struct {
	store     *state.Store
	timers    Canceler
	executor  Binder
	lifecycle *lifecycle.Controller
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	// installMu serializes installs; mu guards the fields below and is
	// never held while hooks run.
	installMu sync.Mutex

	mu        sync.RWMutex
	transport Transport
	status    Status
	requestID id.RequestID
	thoughts  []string
	preview   strings.Builder
	loading   bool
	err       string
	spec      *types.AppSpec
	appID     string
	onInstall []func(appID string, spec *types.AppSpec)
}

// NewController creates an idle controller
func NewController(deps Deps) *Controller {
	if deps.Store == nil {
		deps.Store = state.NewStore()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{
		store:     deps.Store,
		timers:    deps.Timers,
		executor:  deps.Executor,
		lifecycle: deps.Lifecycle,
		transport: deps.Transport,
		logger:    deps.Logger.Named("protocol"),
		metrics:   deps.Metrics,
		status:    StatusIdle,
	}
}

// SetTransport swaps the stream; nil marks the session disconnected
func (c *Controller) SetTransport(t Transport) {
	c.mu.Lock()
	c.transport = t
	c.mu.Unlock()
}

// OnInstall registers a callback run after every install
func (c *Controller) OnInstall(fn func(appID string, spec *types.AppSpec)) {
	c.mu.Lock()
	c.onInstall = append(c.onInstall, fn)
	c.mu.Unlock()
}

// Generate sends a generation request. The new request supersedes any
// outstanding one: late events tagged with an older request id are dropped.
func (c *Controller) Generate(ctx context.Context, message string, reqContext map[string]interface{}) (id.RequestID, error) {
	if err := utils.ValidateMessage(message); err != nil {
		return "", err
	}
	if err := utils.ValidateContext(reqContext); err != nil {
		return "", err
	}

	c.mu.Lock()
	transport := c.transport
	if transport == nil {
		c.failLocked(notConnectedMessage)
		c.mu.Unlock()
		c.metrics.RecordGeneration("not_connected")
		return "", ErrNotConnected
	}

	rid := id.NewRequestID()
	c.requestID = rid
	c.status = StatusRequesting
	c.thoughts = nil
	c.preview.Reset()
	c.loading = true
	c.err = ""
	c.mu.Unlock()

	msg := types.WSMessage{
		Type:      MessageGenerateUI,
		Message:   strings.TrimSpace(message),
		Context:   reqContext,
		RequestID: rid.String(),
	}
	if err := transport.Send(ctx, msg); err != nil {
		c.mu.Lock()
		if c.requestID == rid {
			c.failLocked(notConnectedMessage)
		}
		c.mu.Unlock()
		c.metrics.RecordGeneration("not_connected")
		return "", fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	c.logger.Info("generation requested", zap.String("request_id", rid.String()))
	return rid, nil
}

// Handle applies one inbound event
func (c *Controller) Handle(ctx context.Context, ev Event) error {
	if c.stale(ev) {
		c.logger.Debug("dropping stale event",
			zap.String("type", ev.Type),
			zap.String("request_id", ev.RequestID))
		c.metrics.RecordGeneration("stale")
		return nil
	}

	switch ev.Type {
	case EventGenerationStart:
		c.mu.Lock()
		c.status = StatusGenerating
		c.loading = true
		c.err = ""
		// A restart (fallback model) replaces the partial log
		c.thoughts = nil
		c.preview.Reset()
		if ev.Message != "" {
			c.thoughts = append(c.thoughts, ev.Message)
		}
		c.mu.Unlock()

	case EventThought:
		c.mu.Lock()
		if c.outstandingLocked() {
			c.thoughts = append(c.thoughts, ev.Content)
		}
		c.mu.Unlock()

	case EventToken:
		c.mu.Lock()
		if c.outstandingLocked() {
			c.preview.WriteString(ev.Content)
		}
		c.mu.Unlock()

	case EventUIGenerated:
		spec, err := decodeSpec(ev.UISpec)
		if err != nil {
			c.fail(err.Error())
			c.metrics.RecordGeneration("invalid_spec")
			return err
		}
		if err := c.Install(ctx, ev.ID(), spec); err != nil {
			c.metrics.RecordGeneration("invalid_spec")
			return err
		}

	case EventComplete:
		c.mu.Lock()
		c.loading = false
		if c.status != StatusFailed {
			c.status = StatusReady
		}
		c.mu.Unlock()
		c.metrics.RecordGeneration("success")

	case EventError:
		message := ev.Message
		if message == "" {
			message = ev.Content
		}
		c.fail(message)
		c.metrics.RecordGeneration("error")
		c.logger.Warn("generation failed", zap.String("error", message))

	case EventSystem:
		c.logger.Info("stream message", zap.String("message", ev.Message))

	case EventPong:
		c.logger.Debug("pong")

	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// Install makes spec the active app. The superseded app is unmounted
// before the store is cleared and the new app is mounted.
func (c *Controller) Install(ctx context.Context, appID string, spec *types.AppSpec) error {
	if err := utils.ValidateAppSpec(spec); err != nil {
		c.fail(err.Error())
		return err
	}
	spec.Normalize()

	c.installMu.Lock()
	defer c.installMu.Unlock()

	c.mu.RLock()
	previous := c.spec
	c.mu.RUnlock()

	if previous != nil && c.lifecycle != nil {
		c.lifecycle.Unmount(ctx, previous)
	}
	c.store.Clear()
	if c.timers != nil {
		if n := c.timers.CancelAll(); n > 0 {
			c.logger.Debug("cancelled timers of previous app", zap.Int("count", n))
		}
	}

	c.mu.Lock()
	c.spec = spec
	c.appID = appID
	callbacks := append([]func(string, *types.AppSpec){}, c.onInstall...)
	c.mu.Unlock()

	c.store.Set(AppIDKey, appID)
	if c.executor != nil {
		c.executor.BindApp(appID)
	}
	if c.lifecycle != nil {
		c.lifecycle.Mount(ctx, spec)
	}

	c.metrics.RecordInstall()
	c.logger.Info("app installed",
		zap.String("app_id", appID),
		zap.String("title", spec.Title),
		zap.Int("components", spec.Count()))

	for _, fn := range callbacks {
		fn(appID, spec)
	}
	return nil
}

// Teardown unmounts the active app and cancels its timers. The spec stays
// readable but no new install is expected afterwards.
func (c *Controller) Teardown(ctx context.Context) {
	c.installMu.Lock()
	defer c.installMu.Unlock()

	c.mu.RLock()
	current := c.spec
	c.mu.RUnlock()

	if current != nil && c.lifecycle != nil {
		c.lifecycle.Unmount(ctx, current)
	}
	if c.timers != nil {
		c.timers.CancelAll()
	}
}

// Spec returns the active spec and its application id
func (c *Controller) Spec() (*types.AppSpec, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spec, c.appID
}

// Status returns the generation status
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// RequestID returns the outstanding request id
func (c *Controller) RequestID() id.RequestID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.requestID
}

// UIState returns a copy of the generation progress
func (c *Controller) UIState() types.UIState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := types.UIState{
		Status:             string(c.status),
		GenerationThoughts: append([]string(nil), c.thoughts...),
		GenerationPreview:  c.preview.String(),
		IsLoading:          c.loading,
	}
	if c.err != "" {
		msg := c.err
		st.Error = &msg
	}
	return st
}

// stale reports events tagged for a request other than the outstanding one
func (c *Controller) stale(ev Event) bool {
	if ev.RequestID == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ev.RequestID != c.requestID.String()
}

func (c *Controller) outstandingLocked() bool {
	return c.status == StatusRequesting || c.status == StatusGenerating
}

func (c *Controller) fail(message string) {
	c.mu.Lock()
	c.failLocked(message)
	c.mu.Unlock()
}

func (c *Controller) failLocked(message string) {
	c.status = StatusFailed
	c.loading = false
	c.err = message
}

func decodeSpec(raw []byte) (*types.AppSpec, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: ui_generated without ui_spec", utils.ErrInvalidSpec)
	}
	if err := utils.ValidateSpecSize(raw); err != nil {
		return nil, err
	}
	var spec types.AppSpec
	if err := sonic.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSpec, err)
	}
	return &spec, nil
}
