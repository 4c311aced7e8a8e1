package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/blueprint"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/protocol"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint
const Version = "0.3.0"

// Handlers serves the presentation-facing API for a set of sessions.
// Requests address the root session unless a "session" query param names
// another live session.
type Handlers struct {
	sessions *session.Manager
	root     *session.Session
	hub      *Hub
	catalog  *blueprint.Catalog
	logger   *zap.Logger
	started  time.Time
}

// NewHandlers creates a handler set
func NewHandlers(sessions *session.Manager, root *session.Session, hub *Hub, catalog *blueprint.Catalog, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = blueprint.NewCatalog(logger)
	}
	return &Handlers{
		sessions: sessions,
		root:     root,
		hub:      hub,
		catalog:  catalog,
		logger:   logger.Named("api"),
		started:  time.Now(),
	}
}

// EventRequest is a component event forwarded by the presentation layer
type EventRequest struct {
	ComponentID string                 `json:"component_id" binding:"required"`
	Event       string                 `json:"event" binding:"required"`
	Params      map[string]interface{} `json:"params"`
}

// ExecuteRequest runs a tool directly
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params"`
}

// GenerateRequest asks the generation service for a new app
type GenerateRequest struct {
	Message string                 `json:"message" binding:"required"`
	Context map[string]interface{} `json:"context"`
}

// StateRequest writes one state key
type StateRequest struct {
	Value interface{} `json:"value"`
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	_, appID := h.root.Protocol().Spec()
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"version":  Version,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"sessions": len(h.sessions.List()),
		"app_id":   appID,
		"protocol": h.root.Protocol().Status(),
	})
}

// ListSessions lists live sessions with their installed app
func (h *Handlers) ListSessions(c *gin.Context) {
	list := h.sessions.List()
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		_, appID := s.Protocol().Spec()
		entry := gin.H{"id": s.ID(), "app_id": appID}
		if p := s.Parent(); p != nil {
			entry["parent_id"] = p.ID()
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// GetSpec returns the installed spec and generation progress
func (h *Handlers) GetSpec(c *gin.Context) {
	s, ok := h.resolve(c)
	if !ok {
		return
	}
	spec, appID := s.Protocol().Spec()
	c.JSON(http.StatusOK, gin.H{
		"app_id":  appID,
		"ui_spec": spec,
		"ui":      s.Protocol().UIState(),
	})
}

// GetState returns every component state entry
func (h *Handlers) GetState(c *gin.Context) {
	s, ok := h.resolve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": s.Store().Snapshot()})
}

// SetState writes one component state entry
func (h *Handlers) SetState(c *gin.Context) {
	s, ok := h.resolve(c)
	if !ok {
		return
	}
	var req StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := c.Param("key")
	s.Store().Set(key, req.Value)
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

// DispatchEvent runs the tool bound to a component event
func (h *Handlers) DispatchEvent(c *gin.Context) {
	s, ok := h.resolve(c)
	if !ok {
		return
	}
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.Dispatch(c.Request.Context(), req.ComponentID, req.Event, req.Params)
	if err != nil {
		c.JSON(dispatchStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "error": s.Store().Get("error", nil)})
}

// Execute runs a tool by id
func (h *Handlers) Execute(c *gin.Context) {
	s, ok := h.resolve(c)
	if !ok {
		return
	}
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateToolID(req.ToolID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.Closed() {
		c.JSON(http.StatusGone, gin.H{"error": session.ErrClosed.Error()})
		return
	}

	result := s.Executor().Execute(c.Request.Context(), req.ToolID, req.Params)
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Generate sends a generation request on the stream
func (h *Handlers) Generate(c *gin.Context) {
	s, ok := h.resolve(c)
	if !ok {
		return
	}
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rid, err := s.Protocol().Generate(c.Request.Context(), req.Message, req.Context)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, protocol.ErrNotConnected) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"request_id": rid, "status": s.Protocol().Status()})
}

// Snapshot returns the session's app, state and children
func (h *Handlers) Snapshot(c *gin.Context) {
	s, ok := h.resolve(c)
	if !ok {
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ListCatalog lists prebuilt apps
func (h *Handlers) ListCatalog(c *gin.Context) {
	docs := h.catalog.List()
	out := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		out = append(out, gin.H{
			"id":         doc.AppID,
			"title":      doc.Spec.Title,
			"blueprint":  doc.Blueprint,
			"components": doc.Spec.Count(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"apps": out})
}

// LaunchApp installs a prebuilt app into a session
func (h *Handlers) LaunchApp(c *gin.Context) {
	s, ok := h.resolve(c)
	if !ok {
		return
	}
	doc, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}
	if err := s.Install(c.Request.Context(), doc.AppID, doc.Spec); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrClosed) {
			status = http.StatusGone
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("app launched", zap.String("app_id", doc.AppID), zap.String("session_id", s.ID().String()))
	c.JSON(http.StatusOK, gin.H{"app_id": doc.AppID, "ui_spec": doc.Spec})
}

// CloseSession closes a session and its children
func (h *Handlers) CloseSession(c *gin.Context) {
	sid := id.SessionID(c.Param("id"))
	if sid == h.root.ID() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot close the root session"})
		return
	}
	if !h.sessions.Close(c.Request.Context(), sid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": sid})
}

func (h *Handlers) resolve(c *gin.Context) (*session.Session, bool) {
	sid := c.Query("session")
	if sid == "" {
		return h.root, true
	}
	s, ok := h.sessions.Get(id.SessionID(sid))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func dispatchStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	case errors.Is(err, session.ErrNoApp):
		return http.StatusConflict
	default:
		return http.StatusNotFound
	}
}
