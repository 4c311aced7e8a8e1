package tools

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/state"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/timers"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/remote"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSystemTools(t *testing.T) {
	notifier := &recordingNotifier{}
	e := NewExecutor(Deps{Store: state.NewStore(), Notifier: notifier})
	ctx := context.Background()

	assert.Equal(t, true, e.Execute(ctx, "system.alert", map[string]interface{}{"message": "saved"}))
	assert.Equal(t, true, e.Execute(ctx, "system.log", map[string]interface{}{"message": "hi", "level": "warn"}))
	assert.Equal(t, true, e.Execute(ctx, "system.log", map[string]interface{}{"message": "hi", "level": "fatal"}))
	assert.Equal(t, true, e.Execute(ctx, "system.log", map[string]interface{}{"message": "hi", "level": "bogus"}))

	require.Len(t, notifier.got, 1)
	assert.Equal(t, Notification{Kind: NotifyAlert, Message: "saved"}, notifier.got[0])
}

func TestAppSpawn(t *testing.T) {
	orch := &mockOrchestrator{}
	notifier := &recordingNotifier{}
	e := NewExecutor(Deps{Store: state.NewStore(), Orchestrator: orch, Notifier: notifier})
	e.BindApp("parent-1")

	spec := &types.AppSpec{Title: "Child"}
	orch.On("GenerateUI", mock.Anything, "make a timer", "parent-1").
		Return(&types.UIResponse{ApplicationID: "child-1", UISpec: spec}, nil)

	got := e.Execute(context.Background(), "app.spawn", map[string]interface{}{"request": "make a timer"})

	assert.Same(t, spec, got)
	require.Len(t, notifier.got, 1)
	assert.Equal(t, NotifySpawn, notifier.got[0].Kind)
	assert.Equal(t, "child-1", notifier.got[0].AppID)
	assert.Same(t, spec, notifier.got[0].Spec)
	orch.AssertExpectations(t)
}

func TestAppSpawnFailure(t *testing.T) {
	orch := &mockOrchestrator{}
	notifier := &recordingNotifier{}
	store := state.NewStore()
	e := NewExecutor(Deps{Store: store, Orchestrator: orch, Notifier: notifier})

	orch.On("GenerateUI", mock.Anything, "x", "").Return(nil, errors.New("generation failed: offline"))

	assert.Nil(t, e.Execute(context.Background(), "app.spawn", map[string]interface{}{"message": "x"}))
	assert.Empty(t, notifier.got)
	assert.Contains(t, store.Get(ErrorKey, ""), "offline")

	assert.Nil(t, e.Execute(context.Background(), "app.spawn", nil))
}

func TestAppCloseAndList(t *testing.T) {
	orch := &mockOrchestrator{}
	notifier := &recordingNotifier{}
	e := NewExecutor(Deps{Store: state.NewStore(), Orchestrator: orch, Notifier: notifier})
	e.BindApp("app-3")

	assert.Equal(t, true, e.Execute(context.Background(), "app.close", nil))
	assert.Equal(t, []Notification{{Kind: NotifyClose, AppID: "app-3"}}, notifier.got)

	apps := []types.App{{ID: "a"}, {ID: "b"}}
	orch.On("ListApps", mock.Anything).Return(&types.AppList{Apps: apps}, nil)
	assert.Equal(t, apps, e.Execute(context.Background(), "app.list", nil))
}

func TestHTTPTools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"ok":true}`)
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			io.WriteString(w, "<html><body><h1>Caf\xe9</h1><ul><li>one</li><li>two</li></ul><script>alert(1)</script></body></html>")
		case "/echo":
			body, _ := io.ReadAll(r.Body)
			w.Header()["Content-Type"] = nil
			w.WriteHeader(http.StatusCreated)
			w.Write(body)
		}
	}))
	defer srv.Close()

	fetcher := remote.NewPassthrough(remote.NewClient(remote.Options{Name: "http", Timeout: 2 * time.Second}))
	e := NewExecutor(Deps{Store: state.NewStore(), HTTP: fetcher})
	ctx := context.Background()

	got, ok := e.Execute(ctx, "http.get", map[string]interface{}{"url": srv.URL + "/json"}).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 200, got["status"])
	assert.Equal(t, `{"ok":true}`, got["body"])
	assert.Equal(t, "application/json", got["content_type"])

	got, ok = e.Execute(ctx, "http.post", map[string]interface{}{
		"url":  srv.URL + "/echo",
		"body": "<html><body>hi</body></html>",
	}).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 201, got["status"])
	assert.Contains(t, got["content_type"], "text/html")

	got, ok = e.Execute(ctx, "http.get", map[string]interface{}{
		"url":      srv.URL + "/page",
		"selector": "li",
		"sanitize": true,
	}).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "iso-8859-1", got["charset"])
	assert.Contains(t, got["body"], "Café")
	assert.NotContains(t, got["body"], "<script>")
	matches := got["matches"].([]map[string]interface{})
	require.Len(t, matches, 2)
	assert.Equal(t, "one", matches[0]["text"])
	assert.Equal(t, "two", matches[1]["text"])

	assert.Nil(t, e.Execute(ctx, "http.get", map[string]interface{}{}))
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
		wantBody    string
		wantCharset string
	}{
		{"utf8 undeclared", []byte("héllo"), "", "héllo", "utf-8"},
		{"utf8 declared", []byte("héllo"), "text/plain; charset=UTF-8", "héllo", "utf-8"},
		{"latin1 declared", []byte("h\xe9llo"), "text/plain; charset=ISO-8859-1", "héllo", "iso-8859-1"},
		{"unknown label", []byte("plain"), "text/plain; charset=x-bogus", "plain", "utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, cs := decodeBody(tt.body, tt.contentType)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantCharset, cs)
		})
	}
}

func TestTimerTools(t *testing.T) {
	store := state.NewStore()
	registry := timers.NewRegistry()
	defer registry.Close()
	e := NewExecutor(Deps{Store: store, Timers: registry})
	ctx := context.Background()

	handle, ok := e.Execute(ctx, "timer.set", map[string]interface{}{
		"delay":  5.0,
		"action": "ui.set_state",
		"params": map[string]interface{}{"key": "fired", "value": true},
	}).(string)
	require.True(t, ok)
	assert.Equal(t, handle, store.Get("timer_"+handle, nil))

	assert.Eventually(t, func() bool { return store.Get("fired", false) == true }, time.Second, time.Millisecond)
}

func TestTimerLongDurationsDoNotFireEarly(t *testing.T) {
	store := state.NewStore()
	registry := timers.NewRegistry()
	defer registry.Close()
	e := NewExecutor(Deps{Store: store, Timers: registry})
	ctx := context.Background()

	timeout := e.Execute(ctx, "timer.set", map[string]interface{}{
		"delay":  1e13,
		"action": "ui.set_state",
		"params": map[string]interface{}{"key": "fired", "value": true},
	})
	require.NotNil(t, timeout)
	interval := e.Execute(ctx, "timer.interval", map[string]interface{}{
		"interval": 1e300,
		"action":   "ui.append",
		"params":   map[string]interface{}{"key": "ticks", "value": "x"},
	})
	require.NotNil(t, interval)
	assert.Equal(t, 2, registry.Len())

	time.Sleep(5 * timers.MinInterval)
	assert.Nil(t, store.Get("fired", nil))
	assert.Nil(t, store.Get("ticks", nil))
}

func TestTimerRejectsNonFiniteDurations(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		key   string
		value interface{}
	}{
		{"nan delay", "timer.set", "delay", "NaN"},
		{"inf delay", "timer.set", "delay", "+Inf"},
		{"nan interval", "timer.interval", "interval", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := state.NewStore()
			registry := timers.NewRegistry()
			defer registry.Close()
			e := NewExecutor(Deps{Store: store, Timers: registry})

			out := e.Execute(context.Background(), tt.tool, map[string]interface{}{tt.key: tt.value, "action": "calc.clear"})
			assert.Nil(t, out)
			assert.Equal(t, 0, registry.Len())
			assert.NotNil(t, store.Get(ErrorKey, nil))
		})
	}
}

func TestMillis(t *testing.T) {
	tests := []struct {
		ms   float64
		want time.Duration
	}{
		{5, 5 * time.Millisecond},
		{0.5, 500 * time.Microsecond},
		{-10, 0},
		{1e13, time.Duration(math.MaxInt64)},
		{math.MaxFloat64, time.Duration(math.MaxInt64)},
		{-math.MaxFloat64, 0},
	}

	for _, tt := range tests {
		got, err := millis(tt.ms)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ms=%v", tt.ms)
	}
}

func TestTimerClearByKeyOrHandle(t *testing.T) {
	store := state.NewStore()
	registry := timers.NewRegistry()
	defer registry.Close()
	e := NewExecutor(Deps{Store: store, Timers: registry})
	ctx := context.Background()

	interval := e.Execute(ctx, "timer.interval", map[string]interface{}{
		"interval": 1000.0,
		"action":   "calc.append_digit",
		"params":   map[string]interface{}{"digit": "1"},
	}).(string)
	timeout := e.Execute(ctx, "timer.set", map[string]interface{}{"delay": 1000.0, "action": "calc.clear"}).(string)
	assert.Equal(t, 2, registry.Len())

	assert.Equal(t, true, e.Execute(ctx, "timer.clear", map[string]interface{}{"timer_id": "interval_" + interval}))
	assert.Equal(t, true, e.Execute(ctx, "timer.clear", map[string]interface{}{"timer_id": timeout}))
	assert.Equal(t, false, e.Execute(ctx, "timer.clear", map[string]interface{}{"timer_id": timeout}))

	assert.Equal(t, 0, registry.Len())
	_, ok := store.Lookup("interval_" + interval)
	assert.False(t, ok)
}

func TestTimerRejectsBadAction(t *testing.T) {
	store := state.NewStore()
	e := NewExecutor(Deps{Store: store})

	assert.Nil(t, e.Execute(context.Background(), "timer.set", map[string]interface{}{"delay": 1.0, "action": "not a tool"}))
	assert.Nil(t, e.Execute(context.Background(), "timer.set", map[string]interface{}{"delay": 1.0}))
	assert.NotNil(t, store.Get(ErrorKey, nil))
}
