package session

import (
	"context"
	"sort"
	"sync"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/tools"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/id"
	"go.uber.org/zap"
)

// Deps are the remote collaborators shared by every session
type Deps struct {
	Gateway      tools.Gateway
	Orchestrator tools.Orchestrator
	HTTP         tools.Fetcher
	Logger       *zap.Logger
	Metrics      *monitoring.Metrics
}

// Manager tracks every live session, roots and children
type Manager struct {
	sessions sync.Map
	deps     Deps
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewManager creates a session manager
func NewManager(deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{
		deps:    deps,
		logger:  deps.Logger.Named("session"),
		metrics: deps.Metrics,
	}
}

// Create starts a root session
func (m *Manager) Create() *Session {
	return m.create(nil)
}

func (m *Manager) create(parent *Session) *Session {
	s := newSession(m, parent)
	m.sessions.Store(s.id, s)
	m.metrics.AddSessions(1)

	fields := []zap.Field{zap.String("session_id", s.id.String())}
	if parent != nil {
		fields = append(fields, zap.String("parent_id", parent.id.String()))
	}
	m.logger.Info("session created", fields...)
	return s
}

// Get returns a live session
func (m *Manager) Get(sid id.SessionID) (*Session, bool) {
	v, ok := m.sessions.Load(sid)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// List returns live sessions ordered by creation
func (m *Manager) List() []*Session {
	var out []*Session
	m.sessions.Range(func(_, v interface{}) bool {
		out = append(out, v.(*Session))
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].createdAt.Before(out[j].createdAt)
	})
	return out
}

// Close closes a session and its children
func (m *Manager) Close(ctx context.Context, sid id.SessionID) bool {
	s, ok := m.Get(sid)
	if !ok {
		return false
	}
	s.Close(ctx)
	return true
}

// CloseAll closes every root session, which closes the children
func (m *Manager) CloseAll(ctx context.Context) {
	for _, s := range m.List() {
		if s.parent == nil {
			s.Close(ctx)
		}
	}
}

func (m *Manager) forget(s *Session) {
	if _, loaded := m.sessions.LoadAndDelete(s.id); loaded {
		m.metrics.AddSessions(-1)
		m.metrics.ForgetSession(s.id.String())
	}
}
