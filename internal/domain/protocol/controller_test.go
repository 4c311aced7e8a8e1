package protocol

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/lifecycle"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/state"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/timers"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/tools"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent []types.WSMessage
	err  error
}

func (f *fakeTransport) Send(_ context.Context, msg types.WSMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	store     *state.Store
	timers    *timers.Registry
	executor  *tools.Executor
	transport *fakeTransport
	ctrl      *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := state.NewStore()
	registry := timers.NewRegistry()
	t.Cleanup(registry.Close)
	executor := tools.NewExecutor(tools.Deps{Store: store, Timers: registry})
	transport := &fakeTransport{}

	ctrl := NewController(Deps{
		Store:     store,
		Timers:    registry,
		Executor:  executor,
		Lifecycle: lifecycle.NewController(executor, nil, nil),
		Transport: transport,
	})
	return &fixture{store: store, timers: registry, executor: executor, transport: transport, ctrl: ctrl}
}

const calcSpec = `{"title":"Calc","components":[{"id":"display","type":"input"},{"id":"btn","type":"button","on_event":{"click":"calc.append_digit"}}]}`

func TestHappyPathScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rid, err := f.ctrl.Generate(ctx, "build a calculator", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusRequesting, f.ctrl.Status())

	events := []Event{
		{Type: EventGenerationStart},
		{Type: EventThought, Content: "step1"},
		{Type: EventThought, Content: "step2", RequestID: rid.String()},
		{Type: EventUIGenerated, AppID: "app-1", UISpec: []byte(calcSpec)},
	}
	for _, ev := range events {
		require.NoError(t, f.ctrl.Handle(ctx, ev))
	}

	st := f.ctrl.UIState()
	assert.True(t, st.IsLoading, "loading stays true until complete")

	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventComplete}))

	st = f.ctrl.UIState()
	assert.Equal(t, []string{"step1", "step2"}, st.GenerationThoughts)
	assert.False(t, st.IsLoading)
	assert.Nil(t, st.Error)
	assert.Equal(t, string(StatusReady), st.Status)

	spec, appID := f.ctrl.Spec()
	require.NotNil(t, spec)
	assert.Equal(t, "Calc", spec.Title)
	assert.Equal(t, "app-1", appID)
	assert.Equal(t, "app-1", f.store.Get(AppIDKey, nil))
	assert.Equal(t, "app-1", f.executor.AppID())
}

func TestErrorScenarioLeavesSpecUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventUIGenerated, ApplicationID: "old", UISpec: []byte(calcSpec)}))
	before, _ := f.ctrl.Spec()

	_, err := f.ctrl.Generate(ctx, "something else", nil)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventGenerationStart, Message: "Analyzing request..."}))
	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventError, Message: "boom"}))

	st := f.ctrl.UIState()
	assert.False(t, st.IsLoading)
	require.NotNil(t, st.Error)
	assert.Equal(t, "boom", *st.Error)
	assert.Equal(t, StatusFailed, f.ctrl.Status())

	after, appID := f.ctrl.Spec()
	assert.Same(t, before, after)
	assert.Equal(t, "old", appID)
}

func TestGenerationStartRestartsThoughtLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ctrl.Generate(ctx, "x", nil)
	require.NoError(t, err)
	f.ctrl.Handle(ctx, Event{Type: EventGenerationStart, Message: "Analyzing"})
	f.ctrl.Handle(ctx, Event{Type: EventThought, Content: "a"})
	f.ctrl.Handle(ctx, Event{Type: EventToken, Content: `{"ti`})
	f.ctrl.Handle(ctx, Event{Type: EventToken, Content: `tle"`})

	st := f.ctrl.UIState()
	assert.Equal(t, []string{"Analyzing", "a"}, st.GenerationThoughts)
	assert.Equal(t, `{"title"`, st.GenerationPreview)

	f.ctrl.Handle(ctx, Event{Type: EventGenerationStart, Message: "Retrying"})
	st = f.ctrl.UIState()
	assert.Equal(t, []string{"Retrying"}, st.GenerationThoughts)
	assert.Empty(t, st.GenerationPreview)
}

func TestThoughtsIgnoredWithoutOutstandingGeneration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventThought, Content: "stray"}))
	assert.Empty(t, f.ctrl.UIState().GenerationThoughts)
}

func TestStaleEventsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.ctrl.Generate(ctx, "first", nil)
	require.NoError(t, err)
	second, err := f.ctrl.Generate(ctx, "second", nil)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventGenerationStart, RequestID: second.String()}))
	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventThought, Content: "old", RequestID: first.String()}))
	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventUIGenerated, AppID: "stale", UISpec: []byte(calcSpec), RequestID: first.String()}))
	require.NoError(t, f.ctrl.Handle(ctx, Event{Type: EventThought, Content: "new", RequestID: second.String()}))

	assert.Equal(t, []string{"new"}, f.ctrl.UIState().GenerationThoughts)
	spec, _ := f.ctrl.Spec()
	assert.Nil(t, spec)

	require.Len(t, f.transport.sent, 2)
	assert.Equal(t, MessageGenerateUI, f.transport.sent[1].Type)
	assert.Equal(t, "second", f.transport.sent[1].Message)
	assert.Equal(t, second.String(), f.transport.sent[1].RequestID)
}

func TestGenerateWithoutTransport(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetTransport(nil)

	_, err := f.ctrl.Generate(context.Background(), "hello", nil)

	assert.ErrorIs(t, err, ErrNotConnected)
	st := f.ctrl.UIState()
	assert.Equal(t, string(StatusFailed), st.Status)
	assert.False(t, st.IsLoading)
	require.NotNil(t, st.Error)
	assert.Equal(t, "Not connected to server", *st.Error)
}

func TestGenerateSendFailure(t *testing.T) {
	f := newFixture(t)
	f.transport.err = errors.New("broken pipe")

	_, err := f.ctrl.Generate(context.Background(), "hello", nil)

	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, StatusFailed, f.ctrl.Status())
}

func TestGenerateValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Generate(context.Background(), "   ", nil)
	assert.Error(t, err)
	assert.Empty(t, f.transport.sent)
	assert.Equal(t, StatusIdle, f.ctrl.Status())
}

func TestInstallClearsPreviousStateBeforeMount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var keysAtMount []string
	f.executor.Registry().Handle("probe", "keys", func(context.Context, map[string]interface{}) (interface{}, error) {
		keysAtMount = f.store.Keys()
		return nil, nil
	})

	var order []string
	f.executor.Registry().Handle("probe", "unmount_a", func(context.Context, map[string]interface{}) (interface{}, error) {
		order = append(order, "unmount A")
		return nil, nil
	})
	f.executor.Registry().Handle("probe", "mount_b", func(context.Context, map[string]interface{}) (interface{}, error) {
		order = append(order, "mount B")
		return nil, nil
	})

	a := &types.AppSpec{Title: "A", LifecycleHooks: types.LifecycleHooks{OnUnmount: []string{"probe.unmount_a"}}}
	require.NoError(t, f.ctrl.Install(ctx, "a", a))
	f.store.Set("from-a", 1)
	f.store.Set("display", "123")
	fired := 0
	f.store.Subscribe("display", func(interface{}) { fired++ })

	b := &types.AppSpec{Title: "B", LifecycleHooks: types.LifecycleHooks{OnMount: []string{"probe.mount_b", "probe.keys"}}}
	require.NoError(t, f.ctrl.Install(ctx, "b", b))

	assert.Equal(t, []string{AppIDKey}, keysAtMount)
	assert.Equal(t, []string{"unmount A", "mount B"}, order)

	f.store.Set("display", "0")
	assert.Zero(t, fired, "listeners from A are gone")
}

func TestInstallCancelsTimers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Install(ctx, "a", &types.AppSpec{Title: "A"}))

	f.executor.Execute(ctx, "timer.interval", map[string]interface{}{"interval": 1000.0, "action": "calc.clear"})
	require.Equal(t, 1, f.timers.Len())

	require.NoError(t, f.ctrl.Install(ctx, "b", &types.AppSpec{Title: "B"}))
	assert.Equal(t, 0, f.timers.Len())
}

func TestInvalidSpecIsProtocolError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dup := `{"components":[{"id":"x","type":"text"},{"id":"x","type":"text"}]}`
	tests := []struct {
		name string
		raw  string
	}{
		{"duplicate ids", dup},
		{"missing spec", ""},
		{"not an object", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ctrl.Handle(ctx, Event{Type: EventUIGenerated, AppID: "x", UISpec: []byte(tt.raw)})
			assert.ErrorIs(t, err, utils.ErrInvalidSpec)
			assert.Equal(t, StatusFailed, f.ctrl.Status())
			spec, _ := f.ctrl.Spec()
			assert.Nil(t, spec)
		})
	}
}

func TestUnknownEvent(t *testing.T) {
	f := newFixture(t)
	err := f.ctrl.Handle(context.Background(), Event{Type: "teleport"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestTeardownRunsUnmountHooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	spec := &types.AppSpec{LifecycleHooks: types.LifecycleHooks{OnUnmount: []string{"ui.set_state"}}}
	require.NoError(t, f.ctrl.Install(ctx, "a", spec))
	f.executor.Execute(ctx, "timer.set", map[string]interface{}{"delay": 1000.0, "action": "calc.clear"})

	f.ctrl.Teardown(ctx)
	assert.Equal(t, 0, f.timers.Len())
	// ui.set_state without a key fails inside the hook and lands in the error key
	assert.NotNil(t, f.store.Get(tools.ErrorKey, nil))
}

func TestOnInstallCallback(t *testing.T) {
	f := newFixture(t)

	var got []string
	f.ctrl.OnInstall(func(appID string, spec *types.AppSpec) { got = append(got, appID+":"+spec.Title) })
	require.NoError(t, f.ctrl.Install(context.Background(), "a", &types.AppSpec{}))

	assert.Equal(t, []string{"a:Untitled App"}, got)
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"ui_generated","application_id":"a1","ui_spec":{"title":"T"},"timestamp":1}`))
	require.NoError(t, err)
	assert.Equal(t, EventUIGenerated, ev.Type)
	assert.Equal(t, "a1", ev.ID())
	assert.JSONEq(t, `{"title":"T"}`, string(ev.UISpec))

	ev, err = DecodeEvent([]byte(`{"type":"ui_generated","app_id":"a2"}`))
	require.NoError(t, err)
	assert.Equal(t, "a2", ev.ID())

	_, err = DecodeEvent([]byte(`{"content":"x"}`))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}
