package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
)

func TestValidateToolID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"calc.add", false},
		{"ui.set_state", false},
		{"storage.kv.get", false},
		{"", true},
		{"calc", true},
		{".add", true},
		{"calc add", true},
		{strings.Repeat("a", 130) + ".b", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateToolID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("build a todo app"))
	assert.Error(t, ValidateMessage("   "))
	assert.Error(t, ValidateMessage(strings.Repeat("x", MaxMessageSize+1)))
}

func TestValidateAppSpec(t *testing.T) {
	t.Run("nil spec", func(t *testing.T) {
		assert.ErrorIs(t, ValidateAppSpec(nil), ErrInvalidSpec)
	})

	t.Run("valid tree", func(t *testing.T) {
		spec := &types.AppSpec{Components: []types.UIComponent{
			{ID: "a", Type: types.ComponentContainer, Children: []types.UIComponent{
				{ID: "b", Type: types.ComponentText},
				{Type: types.ComponentText},
				{Type: types.ComponentText},
			}},
		}}
		assert.NoError(t, ValidateAppSpec(spec))
	})

	t.Run("duplicate ids", func(t *testing.T) {
		spec := &types.AppSpec{Components: []types.UIComponent{
			{ID: "a", Type: types.ComponentContainer, Children: []types.UIComponent{
				{ID: "a", Type: types.ComponentText},
			}},
		}}
		err := ValidateAppSpec(spec)
		assert.ErrorIs(t, err, ErrInvalidSpec)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("too deep", func(t *testing.T) {
		root := types.UIComponent{Type: types.ComponentContainer}
		for i := 0; i < MaxSpecDepth+1; i++ {
			root = types.UIComponent{Type: types.ComponentContainer, Children: []types.UIComponent{root}}
		}
		spec := &types.AppSpec{Components: []types.UIComponent{root}}
		assert.ErrorIs(t, ValidateAppSpec(spec), ErrInvalidSpec)
	})

	t.Run("too many hooks", func(t *testing.T) {
		hooks := make([]string, MaxHooksPerPhase+1)
		for i := range hooks {
			hooks[i] = "system.log"
		}
		spec := &types.AppSpec{LifecycleHooks: types.LifecycleHooks{OnMount: hooks}}
		assert.ErrorIs(t, ValidateAppSpec(spec), ErrInvalidSpec)
	})
}

func TestValidateSpecSize(t *testing.T) {
	assert.NoError(t, ValidateSpecSize([]byte(`{"title":"x"}`)))
	assert.ErrorIs(t, ValidateSpecSize(make([]byte, MaxUISpecSize+1)), ErrInvalidSpec)
}

func TestHashJSONDeterministic(t *testing.T) {
	a, err := HashJSON(map[string]interface{}{"b": 1, "a": 2})
	assert.NoError(t, err)
	b, err := HashJSON(map[string]interface{}{"a": 2, "b": 1})
	assert.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}
