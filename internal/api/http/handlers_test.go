package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/blueprint"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent []types.WSMessage
}

func (f *fakeTransport) Send(_ context.Context, msg types.WSMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	router  *gin.Engine
	manager *session.Manager
	root    *session.Session
	hub     *Hub
	catalog *blueprint.Catalog
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics()
	manager := session.NewManager(session.Deps{Metrics: metrics})
	root := manager.Create()
	hub := NewHub()
	catalog := blueprint.NewCatalog(nil)
	catalog.Add(&blueprint.Document{AppID: "counter", Spec: counterSpec()})

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	router := NewRouter(cfg, NewHandlers(manager, root, hub, catalog, nil), metrics)

	t.Cleanup(func() { manager.CloseAll(context.Background()) })
	return &fixture{router: router, manager: manager, root: root, hub: hub, catalog: catalog}
}

func counterSpec() *types.AppSpec {
	return &types.AppSpec{
		Title: "Counter",
		Components: []types.UIComponent{
			{ID: "display", Type: types.ComponentText},
			{ID: "seven", Type: types.ComponentButton, OnEvent: map[string]string{"click": "calc.append_digit"}},
		},
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	f := setup(t)
	w, body := f.do(t, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["sessions"])
	assert.Equal(t, "idle", body["protocol"])
}

func TestSpecAndEvents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	w, _ := f.do(t, "POST", "/events", EventRequest{ComponentID: "seven", Event: "click"})
	assert.Equal(t, http.StatusConflict, w.Code, "no app installed yet")

	require.NoError(t, f.root.Install(ctx, "counter", counterSpec()))

	w, body := f.do(t, "GET", "/spec", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "counter", body["app_id"])
	spec := body["ui_spec"].(map[string]interface{})
	assert.Equal(t, "Counter", spec["title"])

	tests := []struct {
		name       string
		req        EventRequest
		wantStatus int
		wantResult interface{}
	}{
		{"bound event", EventRequest{ComponentID: "seven", Event: "click", Params: map[string]interface{}{"digit": "7"}}, http.StatusOK, "7"},
		{"appends", EventRequest{ComponentID: "seven", Event: "click", Params: map[string]interface{}{"digit": "3"}}, http.StatusOK, "73"},
		{"unknown component", EventRequest{ComponentID: "ghost", Event: "click"}, http.StatusNotFound, nil},
		{"unbound event", EventRequest{ComponentID: "display", Event: "click"}, http.StatusNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.do(t, "POST", "/events", tt.req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantResult != nil {
				assert.Equal(t, tt.wantResult, body["result"])
			}
		})
	}

	w, _ = f.do(t, "POST", "/events", map[string]string{"event": "click"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "component_id is required")
}

func TestState(t *testing.T) {
	f := setup(t)

	w, _ := f.do(t, "PUT", "/state/display", StateRequest{Value: "42"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", f.root.Store().Get("display", nil))

	w, body := f.do(t, "GET", "/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"display": "42"}, body["state"])

	w, _ = f.do(t, "GET", "/state?session=sess_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExecute(t *testing.T) {
	f := setup(t)

	w, body := f.do(t, "POST", "/execute", ExecuteRequest{ToolID: "calc.add", Params: map[string]interface{}{"a": 2, "b": 3}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), body["result"])

	w, body = f.do(t, "POST", "/execute", ExecuteRequest{ToolID: "nope.nothing"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["result"], "unknown tools are a no-op")

	w, _ = f.do(t, "POST", "/execute", ExecuteRequest{ToolID: "not a tool"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate(t *testing.T) {
	f := setup(t)

	w, body := f.do(t, "POST", "/generate", GenerateRequest{Message: "a calculator"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, body["error"], "not connected")

	transport := &fakeTransport{}
	f.root.Protocol().SetTransport(transport)

	w, body = f.do(t, "POST", "/generate", GenerateRequest{Message: "a calculator"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "requesting", body["status"])
	assert.NotEmpty(t, body["request_id"])

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "generate_ui", transport.sent[0].Type)
	assert.Equal(t, body["request_id"], transport.sent[0].RequestID)

	w, _ = f.do(t, "POST", "/generate", GenerateRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionsAndSnapshot(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.root.Install(context.Background(), "counter", counterSpec()))

	w, body := f.do(t, "GET", "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["sessions"], 1)

	w, body = f.do(t, "GET", "/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "counter", body["id"])
	assert.Len(t, body["hash"], 64)

	w, _ = f.do(t, "DELETE", "/sessions/"+f.root.ID().String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = f.do(t, "DELETE", "/sessions/sess_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalog(t *testing.T) {
	f := setup(t)

	w, body := f.do(t, "GET", "/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	apps := body["apps"].([]interface{})
	require.Len(t, apps, 1)
	assert.Equal(t, "counter", apps[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(2), apps[0].(map[string]interface{})["components"])

	w, _ = f.do(t, "POST", "/catalog/ghost/launch", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = f.do(t, "POST", "/catalog/counter/launch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "counter", body["app_id"])

	_, appID := f.root.Protocol().Spec()
	assert.Equal(t, "counter", appID)
	assert.Equal(t, "counter", f.root.Store().Get("application_id", nil))
}

func TestLaunchDoesNotShareCatalogSpec(t *testing.T) {
	f := setup(t)
	child := f.manager.Create()

	var wg sync.WaitGroup
	for _, path := range []string{"/catalog/counter/launch", "/catalog/counter/launch?session=" + child.ID().String()} {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			w, _ := f.do(t, "POST", path, nil)
			assert.Equal(t, http.StatusOK, w.Code)
		}(path)
	}
	wg.Wait()

	rootSpec, _ := f.root.Protocol().Spec()
	childSpec, _ := child.Protocol().Spec()
	require.NotNil(t, rootSpec)
	require.NotNil(t, childSpec)
	assert.NotSame(t, rootSpec, childSpec)
	assert.Equal(t, "app", rootSpec.Type)

	entry := f.catalog.List()[0]
	assert.Empty(t, entry.Spec.Type, "catalog entry is never normalized in place")
	assert.NotSame(t, entry.Spec, rootSpec)
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t)
	f.do(t, "GET", "/health", nil)

	w, _ := f.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `runtime_http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestNotificationsStream(t *testing.T) {
	f := setup(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.hub.Forward(ctx, f.root.Events())

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/notifications", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return f.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	f.root.Executor().Execute(ctx, "system.alert", map[string]interface{}{"message": "hello"})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, "event:alert", lines[0])
	assert.Contains(t, lines[1], `"message":"hello"`)
}

func TestHub(t *testing.T) {
	hub := NewHub()
	a, leaveA := hub.Subscribe()
	_, leaveB := hub.Subscribe()
	assert.Equal(t, 2, hub.Len())

	leaveB()
	leaveB()
	assert.Equal(t, 1, hub.Len())

	hub.Publish(session.Event{Kind: "alert", Message: "x"})
	ev := <-a
	assert.Equal(t, "x", ev.Message)
	leaveA()
	assert.Zero(t, hub.Len())
}
