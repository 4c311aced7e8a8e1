package tools

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/state"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
)

const (
	TodosKey     = "todos"
	TaskInputKey = "task-input"
)

// UIProvider implements generic state tools and the todo list
type UIProvider struct {
	store *state.Store

	mu     sync.Mutex
	lastID int64
}

// NewUIProvider creates a ui provider
func NewUIProvider(store *state.Store) *UIProvider {
	return &UIProvider{store: store}
}

// Category returns ui
func (u *UIProvider) Category() types.Category {
	return types.CategoryUI
}

// Handlers returns the ui actions
func (u *UIProvider) Handlers() map[string]Handler {
	return map[string]Handler{
		"set_state":   u.setState,
		"get_state":   u.getState,
		"set":         u.setState,
		"get":         u.getState,
		"append":      u.appendText,
		"backspace":   u.backspace,
		"clear":       u.clear,
		"toggle":      u.toggle,
		"compute":     u.compute,
		"add_todo":    u.addTodo,
		"toggle_todo": u.toggleTodo,
		"remove_todo": u.removeTodo,
	}
}

func (u *UIProvider) setState(_ context.Context, params map[string]interface{}) (interface{}, error) {
	key, err := RequireString(params, "key")
	if err != nil {
		return nil, err
	}
	value := params["value"]
	u.store.Set(key, value)
	return value, nil
}

func (u *UIProvider) getState(_ context.Context, params map[string]interface{}) (interface{}, error) {
	key, err := RequireString(params, "key")
	if err != nil {
		return nil, err
	}
	return u.store.Get(key, params["default"]), nil
}

func (u *UIProvider) appendText(_ context.Context, params map[string]interface{}) (interface{}, error) {
	key := GetString(params, "key", DisplayKey)
	next := stringify(u.store.Get(key, "")) + GetString(params, "value", "")
	u.store.Set(key, next)
	return next, nil
}

func (u *UIProvider) backspace(_ context.Context, params map[string]interface{}) (interface{}, error) {
	key := GetString(params, "key", DisplayKey)
	current := stringify(u.store.Get(key, ""))
	if current != "" {
		_, size := utf8.DecodeLastRuneInString(current)
		current = current[:len(current)-size]
	}
	u.store.Set(key, current)
	return current, nil
}

func (u *UIProvider) clear(_ context.Context, params map[string]interface{}) (interface{}, error) {
	key := GetString(params, "key", DisplayKey)
	value, ok := params["default"]
	if !ok {
		value = ""
	}
	u.store.Set(key, value)
	return value, nil
}

func (u *UIProvider) toggle(_ context.Context, params map[string]interface{}) (interface{}, error) {
	key, err := RequireString(params, "key")
	if err != nil {
		return nil, err
	}
	current, _ := u.store.Get(key, false).(bool)
	u.store.Set(key, !current)
	return !current, nil
}

func (u *UIProvider) compute(_ context.Context, params map[string]interface{}) (interface{}, error) {
	return evaluateKey(u.store, GetString(params, "key", DisplayKey)), nil
}

func (u *UIProvider) addTodo(context.Context, map[string]interface{}) (interface{}, error) {
	text := strings.TrimSpace(stringify(u.store.Get(TaskInputKey, "")))
	if text == "" {
		return nil, nil
	}

	todos := u.todos()
	todos = append(todos, map[string]interface{}{
		"id":   u.nextID(),
		"text": text,
		"done": false,
	})
	u.store.Set(TodosKey, todos)
	u.store.Set(TaskInputKey, "")
	return todos, nil
}

func (u *UIProvider) toggleTodo(_ context.Context, params map[string]interface{}) (interface{}, error) {
	target, err := GetNumber(params, "id", -1)
	if err != nil {
		return nil, err
	}

	todos := u.todos()
	for i, item := range todos {
		todo, ok := item.(map[string]interface{})
		if !ok || !sameID(todo["id"], target) {
			continue
		}
		updated := make(map[string]interface{}, len(todo))
		for k, v := range todo {
			updated[k] = v
		}
		done, _ := todo["done"].(bool)
		updated["done"] = !done
		todos[i] = updated
		u.store.Set(TodosKey, todos)
		return todos, nil
	}
	return nil, nil
}

func (u *UIProvider) removeTodo(_ context.Context, params map[string]interface{}) (interface{}, error) {
	target, err := GetNumber(params, "id", -1)
	if err != nil {
		return nil, err
	}

	todos := u.todos()
	kept := todos[:0]
	for _, item := range todos {
		if todo, ok := item.(map[string]interface{}); ok && sameID(todo["id"], target) {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == len(todos) {
		return nil, nil
	}
	u.store.Set(TodosKey, kept)
	return kept, nil
}

// todos returns a copy of the stored list so listeners never see it mutate
func (u *UIProvider) todos() []interface{} {
	current, _ := u.store.Get(TodosKey, nil).([]interface{})
	return append(make([]interface{}, 0, len(current)+1), current...)
}

// nextID returns unix millis, bumped to stay unique within the session
func (u *UIProvider) nextID() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= u.lastID {
		id = u.lastID + 1
	}
	u.lastID = id
	return id
}

func sameID(v interface{}, target float64) bool {
	n, ok := toFloat(v)
	return ok && n == target
}
