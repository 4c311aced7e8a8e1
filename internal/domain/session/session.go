package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/lifecycle"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/protocol"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/state"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/timers"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/tools"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/utils"
	"go.uber.org/zap"
)

const (
	inboxSize  = 16
	eventsSize = 64
)

var (
	// ErrNoApp is returned when a session has nothing installed
	ErrNoApp = errors.New("no app installed")
	// ErrNoComponent is returned for unknown component ids
	ErrNoComponent = errors.New("component not found")
	// ErrNoBinding is returned when a component has no tool for an event
	ErrNoBinding = errors.New("no tool bound to event")
	// ErrClosed is returned by operations on a closed session
	ErrClosed = errors.New("session closed")
)

// message travels on a parent's inbox
type message struct {
	from         *Session
	notification tools.Notification
}

// Session is one live app host: its state store, timers, executor and
// controllers. Child sessions are spawned apps mounted inside it.
type Session struct {
	id        id.SessionID
	parent    *Session
	manager   *Manager
	store     *state.Store
	timers    *timers.Registry
	executor  *tools.Executor
	lifecycle *lifecycle.Controller
	protocol  *protocol.Controller
	logger    *zap.Logger
	metrics   *monitoring.Metrics
	createdAt time.Time

	inbox    chan message
	events   chan Event
	done     chan struct{}
	loopDone chan struct{}
	once     sync.Once

	mu       sync.RWMutex
	children map[id.SessionID]*Session
}

func newSession(m *Manager, parent *Session) *Session {
	sid := id.NewSessionID()
	logger := m.logger.With(zap.String("session_id", sid.String()))

	s := &Session{
		id:        sid,
		parent:    parent,
		manager:   m,
		store:     state.NewStore(),
		logger:    logger,
		metrics:   m.metrics,
		createdAt: time.Now(),
		inbox:     make(chan message, inboxSize),
		events:    make(chan Event, eventsSize),
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
		children:  make(map[id.SessionID]*Session),
	}

	s.timers = timers.NewRegistry(timers.WithMetrics(m.metrics), timers.WithLogger(logger))
	s.executor = tools.NewExecutor(tools.Deps{
		Store:        s.store,
		Timers:       s.timers,
		Gateway:      m.deps.Gateway,
		Orchestrator: m.deps.Orchestrator,
		HTTP:         m.deps.HTTP,
		Notifier:     s,
		SessionID:    sid.String(),
		Logger:       logger,
		Metrics:      m.metrics,
	})
	s.lifecycle = lifecycle.NewController(s.executor, logger, m.metrics)
	s.protocol = protocol.NewController(protocol.Deps{
		Store:     s.store,
		Timers:    s.timers,
		Executor:  s.executor,
		Lifecycle: s.lifecycle,
		Logger:    logger,
		Metrics:   m.metrics,
	})
	s.store.OnChange(func(n int) { m.metrics.SetStateKeys(sid.String(), n) })

	go s.loop()
	return s
}

// ID returns the session id
func (s *Session) ID() id.SessionID { return s.id }

// Parent returns the spawning session, or nil for a root session
func (s *Session) Parent() *Session { return s.parent }

// Store returns the component state
func (s *Session) Store() *state.Store { return s.store }

// Executor returns the tool executor
func (s *Session) Executor() *tools.Executor { return s.executor }

// Protocol returns the generation controller
func (s *Session) Protocol() *protocol.Controller { return s.protocol }

// Timers returns the timer registry
func (s *Session) Timers() *timers.Registry { return s.timers }

// Events delivers notifications for the presentation layer. Events are
// dropped when nobody drains the channel.
func (s *Session) Events() <-chan Event { return s.events }

// Children returns the spawned child sessions
func (s *Session) Children() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	return out
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Install makes spec the session's active app
func (s *Session) Install(ctx context.Context, appID string, spec *types.AppSpec) error {
	if s.Closed() {
		return ErrClosed
	}
	return s.protocol.Install(ctx, appID, spec)
}

// HandleFrame decodes and applies one stream frame
func (s *Session) HandleFrame(ctx context.Context, data []byte) error {
	if s.Closed() {
		return ErrClosed
	}
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		return err
	}
	return s.protocol.Handle(ctx, ev)
}

// Dispatch runs the tool bound to a component event
func (s *Session) Dispatch(ctx context.Context, componentID, event string, params map[string]interface{}) (interface{}, error) {
	if s.Closed() {
		return nil, ErrClosed
	}
	spec, _ := s.protocol.Spec()
	if spec == nil {
		return nil, ErrNoApp
	}
	component, ok := spec.Find(componentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoComponent, componentID)
	}
	toolID, ok := component.ToolFor(event)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoBinding, componentID, event)
	}
	return s.executor.Execute(ctx, toolID, params), nil
}

// Notify receives notifications from the session's tools
func (s *Session) Notify(n tools.Notification) {
	switch n.Kind {
	case tools.NotifySpawn:
		s.post(message{from: s, notification: n})
	case tools.NotifyClose:
		if s.parent != nil {
			s.parent.post(message{from: s, notification: n})
			return
		}
		s.publish(Event{Kind: n.Kind, SessionID: s.id, AppID: n.AppID})
	default:
		s.publish(Event{Kind: n.Kind, SessionID: s.id, AppID: n.AppID, Message: n.Message})
	}
}

// Snapshot captures the installed app, component state and children
func (s *Session) Snapshot() (*types.AppSnapshot, error) {
	spec, appID := s.protocol.Spec()
	snap := &types.AppSnapshot{
		ID:             appID,
		SessionID:      s.id.String(),
		UISpec:         spec,
		ComponentState: s.store.Snapshot(),
		CapturedAt:     time.Now(),
	}
	if s.parent != nil {
		pid := s.parent.id.String()
		snap.ParentID = &pid
	}
	if spec != nil {
		hash, err := utils.HashJSON(spec)
		if err != nil {
			return nil, fmt.Errorf("hash spec: %w", err)
		}
		snap.Hash = hash
		snap.Title = spec.Title
	}

	for _, child := range s.Children() {
		cs, err := child.Snapshot()
		if err != nil {
			return nil, err
		}
		snap.Children = append(snap.Children, *cs)
	}
	return snap, nil
}

// Close tears the session down: children first, then on_unmount hooks,
// then timers. Safe to call more than once.
func (s *Session) Close(ctx context.Context) {
	s.once.Do(func() {
		close(s.done)
		<-s.loopDone

		for _, child := range s.Children() {
			child.Close(ctx)
		}

		s.protocol.Teardown(ctx)
		s.timers.Close()

		if s.parent != nil {
			s.parent.removeChild(s.id)
		}
		s.manager.forget(s)
		s.logger.Info("session closed")
	})
}

// loop serves the inbox: spawn requests from this session's tools and
// close requests from its children.
func (s *Session) loop() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.inbox:
			s.handle(msg)
		}
	}
}

func (s *Session) handle(msg message) {
	ctx := context.Background()
	n := msg.notification

	switch n.Kind {
	case tools.NotifySpawn:
		child, err := s.spawnChild(ctx, n.AppID, n.Spec)
		if err != nil {
			s.logger.Warn("spawn failed", zap.String("app_id", n.AppID), zap.Error(err))
			s.store.Set(tools.ErrorKey, fmt.Sprintf("Spawn failed: %v", err))
			return
		}
		s.publish(Event{Kind: tools.NotifySpawn, SessionID: child.id, AppID: n.AppID, Spec: n.Spec})

	case tools.NotifyClose:
		if !s.hasChild(msg.from.id) {
			return
		}
		msg.from.Close(ctx)
		s.publish(Event{Kind: tools.NotifyClose, SessionID: msg.from.id, AppID: n.AppID})
	}
}

func (s *Session) spawnChild(ctx context.Context, appID string, spec *types.AppSpec) (*Session, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: spawn without spec", utils.ErrInvalidSpec)
	}
	child := s.manager.create(s)
	if err := child.Install(ctx, appID, spec); err != nil {
		child.Close(ctx)
		return nil, err
	}

	s.mu.Lock()
	s.children[child.id] = child
	s.mu.Unlock()
	return child, nil
}

func (s *Session) hasChild(cid id.SessionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.children[cid]
	return ok
}

func (s *Session) removeChild(cid id.SessionID) {
	s.mu.Lock()
	delete(s.children, cid)
	s.mu.Unlock()
}

// post delivers to this session's inbox unless it is closing
func (s *Session) post(msg message) {
	select {
	case s.inbox <- msg:
	case <-s.done:
	}
}

func (s *Session) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("event dropped, channel full", zap.String("kind", string(ev.Kind)))
	}
}
