package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/state"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/timers"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/utils"
)

const (
	timerKeyPrefix    = "timer_"
	intervalKeyPrefix = "interval_"
)

// toolRunner is the part of Executor timers call back into
type toolRunner interface {
	Execute(ctx context.Context, toolID string, params map[string]interface{}) interface{}
}

// TimerProvider schedules deferred tool invocations in the session registry
type TimerProvider struct {
	store    *state.Store
	registry *timers.Registry
	runner   toolRunner
}

// NewTimerProvider creates a timer provider
func NewTimerProvider(store *state.Store, registry *timers.Registry, runner toolRunner) *TimerProvider {
	return &TimerProvider{store: store, registry: registry, runner: runner}
}

// Category returns timer
func (t *TimerProvider) Category() types.Category {
	return types.CategoryTimer
}

// Handlers returns the timer actions
func (t *TimerProvider) Handlers() map[string]Handler {
	return map[string]Handler{
		"set":      t.set,
		"interval": t.interval,
		"clear":    t.clear,
	}
}

func (t *TimerProvider) set(_ context.Context, params map[string]interface{}) (interface{}, error) {
	delay, fire, err := t.prepare(params, "delay")
	if err != nil {
		return nil, err
	}
	handle := t.registry.After(delay, fire)
	if handle == "" {
		return nil, fmt.Errorf("timer registry closed")
	}
	t.store.Set(timerKeyPrefix+handle.String(), handle.String())
	return handle.String(), nil
}

func (t *TimerProvider) interval(_ context.Context, params map[string]interface{}) (interface{}, error) {
	period, fire, err := t.prepare(params, "interval")
	if err != nil {
		return nil, err
	}
	handle := t.registry.Every(period, fire)
	if handle == "" {
		return nil, fmt.Errorf("timer registry closed")
	}
	t.store.Set(intervalKeyPrefix+handle.String(), handle.String())
	return handle.String(), nil
}

// clear accepts a raw handle or a state key holding one, of either kind
func (t *TimerProvider) clear(_ context.Context, params map[string]interface{}) (interface{}, error) {
	ref, err := RequireString(params, "timer_id")
	if err != nil {
		return nil, err
	}

	handle := ref
	if v, ok := t.store.Lookup(ref); ok {
		handle = stringify(v)
	}
	handle = strings.TrimPrefix(strings.TrimPrefix(handle, timerKeyPrefix), intervalKeyPrefix)

	cancelled := t.registry.Cancel(id.TimerID(handle))
	t.store.Delete(timerKeyPrefix + handle)
	t.store.Delete(intervalKeyPrefix + handle)
	return cancelled, nil
}

func (t *TimerProvider) prepare(params map[string]interface{}, durationKey string) (time.Duration, func(), error) {
	ms, err := GetNumber(params, durationKey, 0)
	if err != nil {
		return 0, nil, err
	}
	d, err := millis(ms)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", durationKey, err)
	}
	action, err := RequireString(params, "action")
	if err != nil {
		return 0, nil, err
	}
	if err := utils.ValidateToolID(action); err != nil {
		return 0, nil, err
	}
	actionParams := GetMap(params, "params")

	fire := func() {
		t.runner.Execute(context.Background(), action, actionParams)
	}
	return d, fire, nil
}

// millis converts milliseconds to a Duration, saturating at the largest
// representable duration. Negative values become zero.
func millis(ms float64) (time.Duration, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return 0, fmt.Errorf("duration must be finite, got %v", ms)
	}
	ns := ms * float64(time.Millisecond)
	switch {
	case ns <= 0:
		return 0, nil
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64), nil
	}
	return time.Duration(ns), nil
}
