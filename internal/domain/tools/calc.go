package tools

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/domain/state"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
)

// DisplayKey is the calculator display
const DisplayKey = "display"

// errorText is shown instead of a numeric result
const errorText = "Error"

// CalcProvider implements calculator tools over the display key
type CalcProvider struct {
	store *state.Store
}

// NewCalcProvider creates a calculator provider
func NewCalcProvider(store *state.Store) *CalcProvider {
	return &CalcProvider{store: store}
}

// Category returns calc
func (c *CalcProvider) Category() types.Category {
	return types.CategoryCalc
}

// Handlers returns the calc actions
func (c *CalcProvider) Handlers() map[string]Handler {
	return map[string]Handler{
		"add":          c.binary(func(a, b float64) interface{} { return a + b }),
		"subtract":     c.binary(func(a, b float64) interface{} { return a - b }),
		"multiply":     c.binary(func(a, b float64) interface{} { return a * b }),
		"divide":       c.binary(divide),
		"append_digit": c.appendDigit,
		"clear":        c.clear,
		"evaluate":     c.evaluate,
	}
}

func divide(a, b float64) interface{} {
	if b == 0 {
		return errorText
	}
	return a / b
}

func (c *CalcProvider) binary(op func(a, b float64) interface{}) Handler {
	return func(_ context.Context, params map[string]interface{}) (interface{}, error) {
		a, err := GetNumber(params, "a", 0)
		if err != nil {
			return nil, err
		}
		b, err := GetNumber(params, "b", 0)
		if err != nil {
			return nil, err
		}
		return op(a, b), nil
	}
}

func (c *CalcProvider) appendDigit(_ context.Context, params map[string]interface{}) (interface{}, error) {
	digit := GetString(params, "digit", GetString(params, "value", ""))
	current := stringify(c.store.Get(DisplayKey, "0"))
	if digit == "" {
		return current, nil
	}

	next := current + digit
	if current == "0" || current == errorText {
		next = digit
	}
	c.store.Set(DisplayKey, next)
	return next, nil
}

func (c *CalcProvider) clear(context.Context, map[string]interface{}) (interface{}, error) {
	c.store.Set(DisplayKey, "0")
	return "0", nil
}

func (c *CalcProvider) evaluate(context.Context, map[string]interface{}) (interface{}, error) {
	return evaluateKey(c.store, DisplayKey), nil
}

// evaluateKey replaces the expression stored at key by its result
func evaluateKey(store *state.Store, key string) string {
	out := errorText
	if v, err := Evaluate(stringify(store.Get(key, "0"))); err == nil {
		out = FormatNumber(v)
	}
	store.Set(key, out)
	return out
}
